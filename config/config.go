package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/stockwatch/market"
	"github.com/rustyeddy/stockwatch/oanda"
)

// Config is the complete stockwatch configuration.
type Config struct {
	App       AppConfig       `json:"app" yaml:"app"`
	Feed      FeedConfig      `json:"feed" yaml:"feed"`
	Oanda     OandaConfig     `json:"oanda" yaml:"oanda"`
	Evaluator EvaluatorConfig `json:"evaluator" yaml:"evaluator"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	API       APIConfig       `json:"api" yaml:"api"`
	NATS      NATSConfig      `json:"nats" yaml:"nats"`
	Schedule  ScheduleConfig  `json:"schedule" yaml:"schedule"`
}

// AppConfig contains process-wide settings
type AppConfig struct {
	Name      string `json:"name" yaml:"name"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogPretty bool   `json:"log_pretty" yaml:"log_pretty"`
}

// FeedConfig controls the price refresher and its quote source
type FeedConfig struct {
	Provider    string        `json:"provider" yaml:"provider"` // "synthetic" or "oanda"
	Symbols     []string      `json:"symbols" yaml:"symbols"`
	Interval    time.Duration `json:"interval" yaml:"interval"`
	Concurrency int           `json:"concurrency" yaml:"concurrency"`
	Floor       float64       `json:"floor" yaml:"floor"`
	Volatility  float64       `json:"volatility" yaml:"volatility"`
	SeriesLimit int           `json:"series_limit" yaml:"series_limit"`
	Seed        int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// OandaConfig is only read when feed.provider is "oanda"
type OandaConfig struct {
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	AccountID   string        `json:"account_id" yaml:"account_id"`
	Token       string        `json:"token,omitempty" yaml:"token,omitempty"`
	SeriesCount int           `json:"series_count" yaml:"series_count"`
	Granularity string        `json:"granularity" yaml:"granularity"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

type EvaluatorConfig struct {
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// StorageConfig selects the journal driver
type StorageConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite3" or "postgres"
	DSN    string `json:"dsn" yaml:"dsn"`
}

type APIConfig struct {
	Addr        string   `json:"addr" yaml:"addr"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

type NATSConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	URL     string `json:"url" yaml:"url"`
	Subject string `json:"subject" yaml:"subject"`
}

// ScheduleConfig holds cron specs for housekeeping jobs
type ScheduleConfig struct {
	SeriesReset string `json:"series_reset" yaml:"series_reset"`
}

// LoadFromFile loads configuration from a file (YAML or JSON), applies
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		if err = json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	OverrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load is LoadFromFile when path is set, otherwise the defaults with
// environment overrides.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	cfg := Default()
	OverrideFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// OverrideFromEnv replaces settings with STOCKWATCH_* environment variables
// when they are set. Unparseable numeric values are ignored.
func OverrideFromEnv(c *Config) {
	if v := os.Getenv("STOCKWATCH_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("STOCKWATCH_FEED_PROVIDER"); v != "" {
		c.Feed.Provider = v
	}
	if v := os.Getenv("STOCKWATCH_FEED_SYMBOLS"); v != "" {
		c.Feed.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("STOCKWATCH_FEED_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Feed.Interval = d
		}
	}
	if v := os.Getenv("STOCKWATCH_EVALUATOR_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Evaluator.Interval = d
		}
	}
	if v := os.Getenv("STOCKWATCH_FEED_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Feed.Concurrency = n
		}
	}
	if v := os.Getenv("STOCKWATCH_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("STOCKWATCH_STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("STOCKWATCH_API_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("OANDA_TOKEN"); v != "" {
		c.Oanda.Token = v
	}
	if v := os.Getenv("OANDA_ACCOUNT_ID"); v != "" {
		c.Oanda.AccountID = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
		c.NATS.Enabled = true
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Feed.Provider {
	case "synthetic":
	case "oanda":
		if c.Oanda.Token == "" {
			return fmt.Errorf("oanda.token is required for the oanda provider")
		}
		if c.Oanda.AccountID == "" {
			return fmt.Errorf("oanda.account_id is required for the oanda provider")
		}
		if c.Oanda.SeriesCount < 0 || c.Oanda.SeriesCount > 5000 {
			return fmt.Errorf("oanda.series_count must be between 0 and 5000")
		}
		if _, err := oanda.ParseGranularity(c.Oanda.Granularity); err != nil {
			return fmt.Errorf("oanda.granularity: %w", err)
		}
	default:
		return fmt.Errorf("feed.provider must be 'synthetic' or 'oanda'")
	}
	for _, s := range c.Feed.Symbols {
		if !market.ValidSymbol(market.NormalizeSymbol(s)) {
			return fmt.Errorf("feed.symbols: invalid symbol %q", s)
		}
	}
	if c.Feed.Interval <= 0 {
		return fmt.Errorf("feed.interval must be positive")
	}
	if c.Evaluator.Interval <= 0 {
		return fmt.Errorf("evaluator.interval must be positive")
	}
	if c.Feed.Concurrency <= 0 {
		return fmt.Errorf("feed.concurrency must be positive")
	}
	if c.Feed.Floor <= 0 {
		return fmt.Errorf("feed.floor must be positive")
	}
	if c.Feed.Volatility < 0 {
		return fmt.Errorf("feed.volatility must not be negative")
	}
	if c.Feed.SeriesLimit <= 0 {
		return fmt.Errorf("feed.series_limit must be positive")
	}
	if c.Storage.Driver != "sqlite3" && c.Storage.Driver != "postgres" {
		return fmt.Errorf("storage.driver must be 'sqlite3' or 'postgres'")
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if c.API.Addr == "" {
		return fmt.Errorf("api.addr is required")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats is enabled")
	}
	if c.NATS.Enabled && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats is enabled")
	}
	if c.Schedule.SeriesReset != "" {
		if _, err := cron.ParseStandard(c.Schedule.SeriesReset); err != nil {
			return fmt.Errorf("schedule.series_reset: %w", err)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "stockwatch",
			LogLevel: "info",
		},
		Feed: FeedConfig{
			Provider:    "synthetic",
			Symbols:     market.DefaultSymbols(),
			Interval:    time.Second,
			Concurrency: 4,
			Floor:       market.DefaultFloor,
			Volatility:  0.001,
			SeriesLimit: 500,
		},
		Oanda: OandaConfig{
			BaseURL:     "https://api-fxpractice.oanda.com",
			SeriesCount: 60,
			Granularity: "M1",
			Timeout:     10 * time.Second,
		},
		Evaluator: EvaluatorConfig{
			Interval: 2 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "./stockwatch.db",
		},
		API: APIConfig{
			Addr:        ":8000",
			CORSOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "stockwatch.alerts",
		},
		Schedule: ScheduleConfig{
			SeriesReset: "0 0 * * *",
		},
	}
}
