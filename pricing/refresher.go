package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/stockwatch/internal/metrics"
	"github.com/rustyeddy/stockwatch/market"
)

const (
	// DefaultInterval is the refresh cadence used when none is configured.
	DefaultInterval = time.Second
	// DefaultConcurrency bounds in-flight fetches per cycle.
	DefaultConcurrency = 4
)

// Refresher keeps a Cache current for every tracked symbol.
//
// Each cycle recomputes the tracked set, fetches every symbol and stores the
// successes. A failed symbol keeps its previous cached value.
type Refresher struct {
	cache       *Cache
	source      QuoteSource
	tracker     SymbolTracker
	defaults    []string
	interval    time.Duration
	concurrency int
	clamp       bool
	floor       float64
	log         zerolog.Logger
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithDefaults sets the static symbols that are always tracked.
func WithDefaults(symbols []string) RefresherOption {
	return func(r *Refresher) { r.defaults = market.NormalizeSymbols(symbols) }
}

// WithTracker adds a dynamic symbol source, typically the watchlist and rule store.
func WithTracker(t SymbolTracker) RefresherOption {
	return func(r *Refresher) { r.tracker = t }
}

// WithRefreshInterval overrides DefaultInterval.
func WithRefreshInterval(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithConcurrency overrides DefaultConcurrency.
func WithConcurrency(n int) RefresherOption {
	return func(r *Refresher) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithClamp raises prices below floor to floor instead of discarding them.
// Use it for synthetic feeds only.
func WithClamp(floor float64) RefresherOption {
	return func(r *Refresher) {
		r.clamp = true
		r.floor = floor
	}
}

// WithRefreshLogger sets the logger.
func WithRefreshLogger(log zerolog.Logger) RefresherOption {
	return func(r *Refresher) { r.log = log }
}

func NewRefresher(cache *Cache, source QuoteSource, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		cache:       cache,
		source:      source,
		interval:    DefaultInterval,
		concurrency: DefaultConcurrency,
		floor:       market.DefaultFloor,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Interval returns the configured cadence.
func (r *Refresher) Interval() time.Duration { return r.interval }

// Run refreshes once immediately and then once per interval until ctx is
// canceled.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.interval).Int("concurrency", r.concurrency).Msg("price refresher started")
	r.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("price refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Tracked returns the union of the defaults and the tracker's symbols. A
// tracker failure falls back to the defaults.
func (r *Refresher) Tracked(ctx context.Context) []string {
	symbols := append([]string(nil), r.defaults...)
	if r.tracker != nil {
		dyn, err := r.tracker.TrackedSymbols(ctx)
		if err != nil {
			r.log.Warn().Err(err).Msg("read tracked symbols failed, refreshing defaults only")
		} else {
			symbols = append(symbols, dyn...)
		}
	}
	return market.NormalizeSymbols(symbols)
}

// Refresh runs one cycle and returns how many symbols were updated.
func (r *Refresher) Refresh(ctx context.Context) int {
	symbols := r.Tracked(ctx)
	metrics.TrackedSymbols.Set(float64(len(symbols)))

	results := make([]bool, len(symbols))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, sym := range symbols {
		// stop handing out symbols once shutdown starts
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = r.refreshOne(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	updated := 0
	for _, ok := range results {
		if ok {
			updated++
		}
	}
	metrics.RefreshCyclesTotal.Inc()
	r.log.Debug().Int("tracked", len(symbols)).Int("updated", updated).Msg("refresh cycle done")
	return updated
}

func (r *Refresher) refreshOne(ctx context.Context, symbol string) bool {
	q, err := r.source.Fetch(ctx, symbol)
	if err == nil {
		q, err = r.normalize(symbol, q)
	}
	if err != nil {
		metrics.QuoteFetchesTotal.WithLabelValues(symbol, "error").Inc()
		r.log.Warn().Err(err).Str("symbol", symbol).Msg("quote fetch failed, keeping cached price")
		return false
	}

	r.cache.Set(q)
	metrics.QuoteFetchesTotal.WithLabelValues(symbol, "ok").Inc()
	return true
}

// normalize applies the numeric policy: two decimals, never zero or negative.
func (r *Refresher) normalize(symbol string, q Quote) (Quote, error) {
	q.Symbol = symbol
	if q.Time.IsZero() {
		q.Time = time.Now().UTC()
	}

	if r.clamp {
		q.Price = market.ClampPrice(q.Price, r.floor)
	} else {
		if !market.ValidPrice(q.Price) {
			return Quote{}, fmt.Errorf("%s quoted %v: %w", symbol, q.Price, ErrNonPositivePrice)
		}
		q.Price = market.RoundPrice(q.Price)
		if !market.ValidPrice(q.Price) {
			return Quote{}, fmt.Errorf("%s quoted %v: %w", symbol, q.Price, ErrNonPositivePrice)
		}
	}

	if len(q.Series) > 0 {
		series := make([]Sample, 0, len(q.Series))
		for _, s := range q.Series {
			if !market.ValidPrice(s.Price) {
				continue
			}
			s.Price = market.RoundPrice(s.Price)
			if market.ValidPrice(s.Price) {
				series = append(series, s)
			}
		}
		q.Series = series
	}
	return q, nil
}
