package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "synthetic", cfg.Feed.Provider)
	assert.Equal(t, time.Second, cfg.Feed.Interval)
	assert.Equal(t, 2*time.Second, cfg.Evaluator.Interval)
	assert.Equal(t, 1.0, cfg.Feed.Floor)
	assert.Contains(t, cfg.Feed.Symbols, "AAPL")
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"unknown provider", func(c *Config) { c.Feed.Provider = "yahoo" }, "feed.provider"},
		{"oanda without token", func(c *Config) { c.Feed.Provider = "oanda"; c.Oanda.AccountID = "101" }, "oanda.token is required"},
		{"oanda without account", func(c *Config) { c.Feed.Provider = "oanda"; c.Oanda.Token = "tok" }, "oanda.account_id is required"},
		{"oanda series too long", func(c *Config) {
			c.Feed.Provider = "oanda"
			c.Oanda.Token = "tok"
			c.Oanda.AccountID = "101"
			c.Oanda.SeriesCount = 6000
		}, "oanda.series_count"},
		{"oanda bad granularity", func(c *Config) {
			c.Feed.Provider = "oanda"
			c.Oanda.Token = "tok"
			c.Oanda.AccountID = "101"
			c.Oanda.Granularity = "W2"
		}, "oanda.granularity"},
		{"oanda lowercase granularity", func(c *Config) {
			c.Feed.Provider = "oanda"
			c.Oanda.Token = "tok"
			c.Oanda.AccountID = "101"
			c.Oanda.Granularity = "h1"
		}, ""},
		{"bad symbol", func(c *Config) { c.Feed.Symbols = []string{"AAPL", "NOT A SYMBOL"} }, "invalid symbol"},
		{"zero feed interval", func(c *Config) { c.Feed.Interval = 0 }, "feed.interval must be positive"},
		{"zero evaluator interval", func(c *Config) { c.Evaluator.Interval = 0 }, "evaluator.interval must be positive"},
		{"zero concurrency", func(c *Config) { c.Feed.Concurrency = 0 }, "feed.concurrency must be positive"},
		{"zero floor", func(c *Config) { c.Feed.Floor = 0 }, "feed.floor must be positive"},
		{"negative volatility", func(c *Config) { c.Feed.Volatility = -0.1 }, "feed.volatility"},
		{"zero series limit", func(c *Config) { c.Feed.SeriesLimit = 0 }, "feed.series_limit"},
		{"bad driver", func(c *Config) { c.Storage.Driver = "mysql" }, "storage.driver"},
		{"missing dsn", func(c *Config) { c.Storage.DSN = "" }, "storage.dsn is required"},
		{"missing addr", func(c *Config) { c.API.Addr = "" }, "api.addr is required"},
		{"nats without url", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "" }, "nats.url is required"},
		{"nats without subject", func(c *Config) { c.NATS.Enabled = true; c.NATS.Subject = "" }, "nats.subject is required"},
		{"bad cron spec", func(c *Config) { c.Schedule.SeriesReset = "every day" }, "schedule.series_reset"},
		{"empty cron spec disables the job", func(c *Config) { c.Schedule.SeriesReset = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Feed.Interval = 3 * time.Second
			cfg.Feed.Symbols = []string{"AAPL", "EUR_USD"}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))
			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Feed.Provider, loaded.Feed.Provider)
			assert.Equal(t, 3*time.Second, loaded.Feed.Interval)
			assert.Equal(t, cfg.Evaluator.Interval, loaded.Evaluator.Interval)
			assert.Equal(t, []string{"AAPL", "EUR_USD"}, loaded.Feed.Symbols)
			assert.Equal(t, cfg.Storage, loaded.Storage)
		})
	}
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("evaluator:\n  interval: 5s\nstorage:\n  dsn: /tmp/alerts.db\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Evaluator.Interval)
	assert.Equal(t, "/tmp/alerts.db", cfg.Storage.DSN)
	assert.Equal(t, "sqlite3", cfg.Storage.Driver)
	assert.Equal(t, time.Second, cfg.Feed.Interval)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  provider: yahoo\n"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("STOCKWATCH_FEED_INTERVAL", "250ms")
	t.Setenv("STOCKWATCH_EVALUATOR_INTERVAL", "not-a-duration")
	t.Setenv("STOCKWATCH_FEED_SYMBOLS", "aapl,btc")
	t.Setenv("STOCKWATCH_FEED_CONCURRENCY", "8")
	t.Setenv("STOCKWATCH_STORAGE_DSN", "/var/lib/stockwatch.db")
	t.Setenv("NATS_URL", "nats://broker:4222")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Feed.Interval)
	assert.Equal(t, 2*time.Second, cfg.Evaluator.Interval)
	assert.Equal(t, []string{"aapl", "btc"}, cfg.Feed.Symbols)
	assert.Equal(t, 8, cfg.Feed.Concurrency)
	assert.Equal(t, "/var/lib/stockwatch.db", cfg.Storage.DSN)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
}
