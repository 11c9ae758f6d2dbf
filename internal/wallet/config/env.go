package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envConfig is a DTO for environment overlay. Only set variables override
// the current values; zero values are skipped in the copy below.
type envConfig struct {
	ServerBaseURL       string        `envconfig:"SERVER_URL"`
	DatabasePath        string        `envconfig:"DB_PATH"`
	BalanceInterval     time.Duration `envconfig:"BALANCE_INTERVAL"`
	HistoryInterval     time.Duration `envconfig:"HISTORY_INTERVAL"`
	ChainInterval       time.Duration `envconfig:"CHAIN_INTERVAL"`
	HistoryLimit        int           `envconfig:"HISTORY_LIMIT"`
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
	MinPasswordLen      int           `envconfig:"MIN_PASSWORD_LEN"`
	AdminUsername       string        `envconfig:"ADMIN_USERNAME"`
	AdminPasswordHash   string        `envconfig:"ADMIN_PASSWORD_HASH"`
}

// parseEnv overlays Config with WALLET_* environment variables, e.g.
// WALLET_SERVER_URL or WALLET_BALANCE_INTERVAL=5s.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := envconfig.Process("wallet", &ec); err != nil {
		panic(err)
	}

	if ec.ServerBaseURL != "" {
		cfg.ServerBaseURL = ec.ServerBaseURL
	}
	if ec.DatabasePath != "" {
		cfg.DatabasePath = ec.DatabasePath
	}
	if ec.BalanceInterval > 0 {
		cfg.BalanceInterval = ec.BalanceInterval
	}
	if ec.HistoryInterval > 0 {
		cfg.HistoryInterval = ec.HistoryInterval
	}
	if ec.ChainInterval > 0 {
		cfg.ChainInterval = ec.ChainInterval
	}
	if ec.HistoryLimit > 0 {
		cfg.HistoryLimit = ec.HistoryLimit
	}
	if ec.OnlineCheckInterval > 0 {
		cfg.OnlineCheckInterval = ec.OnlineCheckInterval
	}
	if ec.MinPasswordLen > 0 {
		cfg.MinPasswordLen = ec.MinPasswordLen
	}
	if ec.AdminUsername != "" {
		cfg.AdminUsername = ec.AdminUsername
	}
	if ec.AdminPasswordHash != "" {
		cfg.AdminPasswordHash = ec.AdminPasswordHash
	}
}
