package alert

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/stockwatch/internal/metrics"
)

// DefaultInterval is the evaluation cadence used when none is configured.
const DefaultInterval = 2 * time.Second

// Evaluator runs the edge-triggered state machine for every rule.
//
// The state map is only touched by the goroutine calling Evaluate, so a
// single Run loop needs no locking. A rule seen for the first time records
// its condition as a baseline and never fires on that tick.
type Evaluator struct {
	rules    RuleLister
	events   EventAppender
	prices   PriceReader
	notifier Notifier
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	state map[int64]bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithNotifier attaches a best-effort sink for recorded events.
func WithNotifier(n Notifier) Option {
	return func(e *Evaluator) { e.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEvaluator(rules RuleLister, events EventAppender, prices PriceReader, opts ...Option) *Evaluator {
	e := &Evaluator{
		rules:    rules,
		events:   events,
		prices:   prices,
		interval: DefaultInterval,
		log:      zerolog.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
		state:    make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Interval returns the configured cadence.
func (e *Evaluator) Interval() time.Duration { return e.interval }

// Run evaluates once per interval until ctx is canceled. A cycle in
// progress when ctx is canceled stops before its next rule.
func (e *Evaluator) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.log.Info().Dur("interval", e.interval).Msg("alert evaluator started")
	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("alert evaluator stopped")
			return ctx.Err()
		case <-ticker.C:
			_, _ = e.Evaluate(ctx)
		}
	}
}

// Evaluate runs one cycle and returns the events recorded in it. An error
// means the rule list could not be read and the cycle was skipped.
func (e *Evaluator) Evaluate(ctx context.Context) ([]Event, error) {
	rules, err := e.rules.ListRules(ctx)
	if err != nil {
		metrics.EvaluationCyclesTotal.WithLabelValues("skipped").Inc()
		e.log.Warn().Err(err).Msg("list rules failed, skipping evaluation cycle")
		return nil, err
	}

	live := make(map[int64]struct{}, len(rules))
	for _, r := range rules {
		live[r.ID] = struct{}{}
	}

	var fired []Event
	for _, r := range rules {
		if ctx.Err() != nil {
			break
		}
		if ev, ok := e.step(ctx, r); ok {
			fired = append(fired, ev)
		}
	}

	e.prune(live)
	metrics.EvaluationCyclesTotal.WithLabelValues("completed").Inc()
	metrics.EvaluationStateSize.Set(float64(len(e.state)))
	return fired, nil
}

// step applies one rule's transition. It returns the recorded event when the
// rule fired.
func (e *Evaluator) step(ctx context.Context, r Rule) (Event, bool) {
	price, ok := e.prices.Price(r.Symbol)
	if !ok {
		return Event{}, false
	}

	cond := r.Condition(price)
	prev, seen := e.state[r.ID]
	switch {
	case !seen:
		e.state[r.ID] = cond
		e.log.Debug().Int64("rule_id", r.ID).Bool("condition", cond).Msg("baseline recorded")
		return Event{}, false
	case !cond:
		e.state[r.ID] = false
		return Event{}, false
	case prev:
		return Event{}, false
	}

	ev, err := e.events.AppendEvent(ctx, Event{
		RuleID:      r.ID,
		Symbol:      r.Symbol,
		Direction:   r.Direction,
		Threshold:   r.Threshold,
		Price:       price,
		TriggeredAt: e.now(),
	})
	if err != nil {
		// left false so the crossing fires again next cycle
		metrics.EventWriteFailuresTotal.Inc()
		e.log.Warn().Err(err).Int64("rule_id", r.ID).Str("symbol", r.Symbol).Msg("record event failed, will retry")
		return Event{}, false
	}
	e.state[r.ID] = true

	metrics.AlertsFiredTotal.WithLabelValues(r.Symbol, string(r.Direction)).Inc()
	e.log.Info().
		Int64("rule_id", r.ID).
		Int64("event_id", ev.ID).
		Str("symbol", r.Symbol).
		Str("direction", string(r.Direction)).
		Float64("threshold", r.Threshold).
		Float64("price", price).
		Msg("rule triggered")

	if e.notifier != nil {
		e.notifier.Notify(ctx, ev)
	}
	return ev, true
}

func (e *Evaluator) prune(live map[int64]struct{}) {
	for id := range e.state {
		if _, ok := live[id]; !ok {
			delete(e.state, id)
		}
	}
}

// lastCondition exposes the state table to tests in this package.
func (e *Evaluator) lastCondition(id int64) (bool, bool) {
	v, ok := e.state[id]
	return v, ok
}
