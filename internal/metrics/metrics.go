// Package metrics registers the process-wide prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuoteFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockwatch_quote_fetches_total", Help: "Quote fetches by symbol and result"},
		[]string{"symbol", "result"},
	)
	RefreshCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "stockwatch_refresh_cycles_total", Help: "Completed price refresh cycles"},
	)
	TrackedSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "stockwatch_tracked_symbols", Help: "Symbols tracked in the last refresh cycle"},
	)
	EvaluationCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockwatch_evaluation_cycles_total", Help: "Evaluation cycles by result"},
		[]string{"result"},
	)
	AlertsFiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockwatch_alerts_fired_total", Help: "Alert events recorded"},
		[]string{"symbol", "direction"},
	)
	EventWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "stockwatch_event_write_failures_total", Help: "Event appends that failed and will be retried"},
	)
	EvaluationStateSize = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "stockwatch_evaluation_state_size", Help: "Rules with a known last condition"},
	)
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockwatch_notifications_total", Help: "Outbound notifications by sink and result"},
		[]string{"sink", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		QuoteFetchesTotal,
		RefreshCyclesTotal,
		TrackedSymbols,
		EvaluationCyclesTotal,
		AlertsFiredTotal,
		EventWriteFailuresTotal,
		EvaluationStateSize,
		NotificationsTotal,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
