package config

import "time"

// Config holds runtime settings for the wallet CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the ledger service REST API.
//   - DatabasePath: path of the local sqlite file holding session state.
//   - BalanceInterval / HistoryInterval / ChainInterval: poll cadences of
//     the sync engine.
//   - HistoryLimit: how many history rows each poll requests.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - MinPasswordLen: signup password policy (the server enforces 8).
//   - AdminUsername / AdminPasswordHash: local admin credential; the hash is
//     bcrypt. Admin login stays disabled while the hash is empty.
type Config struct {
	ServerBaseURL       string
	DatabasePath        string
	BalanceInterval     time.Duration
	HistoryInterval     time.Duration
	ChainInterval       time.Duration
	HistoryLimit        int
	OnlineCheckInterval time.Duration
	MinPasswordLen      int
	AdminUsername       string
	AdminPasswordHash   string
}

// LoadDefaults populates c with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "wallet.db"
	c.BalanceInterval = 5 * time.Second
	c.HistoryInterval = 10 * time.Second
	c.ChainInterval = 10 * time.Second
	c.HistoryLimit = 50
	c.OnlineCheckInterval = 3 * time.Second
	c.MinPasswordLen = 8
	c.AdminUsername = "admin"
	c.AdminPasswordHash = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, an optional JSON file, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
