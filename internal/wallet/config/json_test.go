package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"wallet"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	withArgs(t)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerBaseURL)
}

func TestParseJson_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	body := `{
		"server_base_url": "http://ledger.internal:9000",
		"balance_interval": "2s",
		"history_interval": 15000000000,
		"admin_username": "root"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "http://ledger.internal:9000", c.ServerBaseURL)
	assert.Equal(t, 2*time.Second, c.BalanceInterval)
	assert.Equal(t, 15*time.Second, c.HistoryInterval, "integer nanoseconds are accepted")
	assert.Equal(t, "root", c.AdminUsername)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "wallet.db", c.DatabasePath)
	assert.Equal(t, 8, c.MinPasswordLen)
}

func TestParseJson_PanicsOnMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	assert.Panics(t, func() { parseJson(&c) })
}
