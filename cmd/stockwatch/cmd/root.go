package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockwatch/config"
	"github.com/rustyeddy/stockwatch/internal/logging"
)

var (
	cfgFile  string
	dbDSN    string
	logLevel string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stockwatch",
	Short: "Price watcher with edge-triggered threshold alerts",
	Long: `Stockwatch polls prices for a watchlist of instruments and records an
alert event each time a rule's condition goes from false to true.

It provides:
  - serve      run the refresher, the evaluator and the HTTP API
  - rules      create, list and delete alert rules
  - watchlist  manage the tracked symbols
  - events     show recorded alert events
  - prices     fetch one round of quotes from the configured feed`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if dbDSN != "" {
			cfg.Storage.DSN = dbDSN
		}
		if logLevel != "" {
			cfg.App.LogLevel = logLevel
		}
		log = logging.New(cfg.App.LogLevel, cfg.App.LogPretty)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "storage DSN, overrides storage.dsn")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides app.log_level")
}
