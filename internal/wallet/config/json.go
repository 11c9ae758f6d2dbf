package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/asimjadoon/ledgerwallet/internal/flagx"
	"github.com/asimjadoon/ledgerwallet/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so JSON can specify them either as strings like "5s" or as
// integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	DatabasePath        string         `json:"database_path"`
	BalanceInterval     timex.Duration `json:"balance_interval"`
	HistoryInterval     timex.Duration `json:"history_interval"`
	ChainInterval       timex.Duration `json:"chain_interval"`
	HistoryLimit        int            `json:"history_limit"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	MinPasswordLen      int            `json:"min_password_len"`
	AdminUsername       string         `json:"admin_username"`
	AdminPasswordHash   string         `json:"admin_password_hash"`
}

// parseJson overlays Config with values loaded from a JSON file selected
// via -c or -config. Only fields present in the file override; panics on
// read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.BalanceInterval.Duration > 0 {
		cfg.BalanceInterval = time.Duration(jc.BalanceInterval.Duration)
	}
	if jc.HistoryInterval.Duration > 0 {
		cfg.HistoryInterval = time.Duration(jc.HistoryInterval.Duration)
	}
	if jc.ChainInterval.Duration > 0 {
		cfg.ChainInterval = time.Duration(jc.ChainInterval.Duration)
	}
	if jc.HistoryLimit > 0 {
		cfg.HistoryLimit = jc.HistoryLimit
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.MinPasswordLen > 0 {
		cfg.MinPasswordLen = jc.MinPasswordLen
	}
	if jc.AdminUsername != "" {
		cfg.AdminUsername = jc.AdminUsername
	}
	if jc.AdminPasswordHash != "" {
		cfg.AdminPasswordHash = jc.AdminPasswordHash
	}
}
