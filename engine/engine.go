// Package engine runs the price refresher, the alert evaluator and the
// housekeeping schedule as one unit with a shared shutdown.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/stockwatch/alert"
	"github.com/rustyeddy/stockwatch/pricing"
)

// Engine owns the two polling loops. The refresher is the only writer of
// the cache and the evaluator only reads it; they never wait on each other.
type Engine struct {
	cache     *pricing.Cache
	refresher *pricing.Refresher
	evaluator *alert.Evaluator
	cron      *cron.Cron
	log       zerolog.Logger
}

func New(cache *pricing.Cache, refresher *pricing.Refresher, evaluator *alert.Evaluator, log zerolog.Logger) *Engine {
	cl := cronLogger{log: log.With().Str("component", "cron").Logger()}
	return &Engine{
		cache:     cache,
		refresher: refresher,
		evaluator: evaluator,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Schedule adds a housekeeping job on a standard five-field cron spec.
func (e *Engine) Schedule(name, spec string, job func()) error {
	_, err := e.cron.AddFunc(spec, func() {
		e.log.Info().Str("job", name).Msg("running scheduled job")
		job()
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	return nil
}

// ScheduleSeriesReset clears the intraday series on spec, typically daily.
// An empty spec schedules nothing.
func (e *Engine) ScheduleSeriesReset(spec string) error {
	if spec == "" {
		return nil
	}
	return e.Schedule("series-reset", spec, e.cache.ResetSeries)
}

// Jobs returns the number of scheduled housekeeping jobs.
func (e *Engine) Jobs() int { return len(e.cron.Entries()) }

// Run blocks until ctx is canceled. Each loop finishes the symbol or rule it
// is working on, and Run waits for a running housekeeping job, before
// returning. A clean shutdown returns nil.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.refresher.Run(gctx) })
	g.Go(func() error { return e.evaluator.Run(gctx) })

	e.cron.Start()
	e.log.Info().
		Dur("refresh_interval", e.refresher.Interval()).
		Dur("evaluate_interval", e.evaluator.Interval()).
		Int("jobs", e.Jobs()).
		Msg("engine started")

	err := g.Wait()
	<-e.cron.Stop().Done()
	e.log.Info().Msg("engine stopped")

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
