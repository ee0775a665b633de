package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/stockwatch/alert"
	"github.com/rustyeddy/stockwatch/api"
	"github.com/rustyeddy/stockwatch/engine"
	"github.com/rustyeddy/stockwatch/notify"
	"github.com/rustyeddy/stockwatch/pricing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the price refresher, alert evaluator and HTTP API",
	Long: `Start the alerting engine and the admin API. Prices refresh every
feed.interval and rules are evaluated every evaluator.interval until the
process receives SIGINT or SIGTERM.

Example:
  stockwatch serve --config stockwatch.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveNoAPI bool

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoAPI, "no-api", false, "run the engine without the HTTP API")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cache := pricing.NewCache(cfg.Feed.SeriesLimit)
	src, refreshOpts := quoteSource(cfg)
	refreshOpts = append(refreshOpts,
		pricing.WithTracker(store),
		pricing.WithRefreshLogger(log.With().Str("component", "refresher").Logger()),
	)
	refresher := pricing.NewRefresher(cache, src, refreshOpts...)

	hub := notify.NewHub(notify.DefaultBuffer, log)
	sinks := notify.Fanout{hub}
	if cfg.NATS.Enabled {
		nc, err := notify.Connect(cfg.NATS.URL, log)
		if err != nil {
			return err
		}
		defer nc.Drain()
		sinks = append(sinks, notify.NewNATS(nc, cfg.NATS.Subject, log))
	}

	evaluator := alert.NewEvaluator(store, store, cache,
		alert.WithInterval(cfg.Evaluator.Interval),
		alert.WithNotifier(sinks),
		alert.WithLogger(log.With().Str("component", "evaluator").Logger()),
	)

	eng := engine.New(cache, refresher, evaluator, log)
	if err := eng.ScheduleSeriesReset(cfg.Schedule.SeriesReset); err != nil {
		return err
	}

	log.Info().
		Str("provider", cfg.Feed.Provider).
		Str("storage", cfg.Storage.Driver).
		Strs("symbols", cfg.Feed.Symbols).
		Msg("starting stockwatch")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	if !serveNoAPI {
		srv := api.NewServer(cfg.API.Addr, cfg.API.CORSOrigins, newService(cfg, store, cache), hub, log)
		g.Go(func() error { return srv.Run(gctx) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
