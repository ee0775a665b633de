package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRegistered(t *testing.T) {
	AlertsFiredTotal.WithLabelValues("AAPL", "above").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var total float64
	found := false
	for _, mf := range mfs {
		if mf.GetName() != "stockwatch_alerts_fired_total" {
			continue
		}
		found = true
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	assert.True(t, found)
	assert.GreaterOrEqual(t, total, 1.0)
}

func TestHandlerServesExposition(t *testing.T) {
	RefreshCyclesTotal.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "stockwatch_refresh_cycles_total"))
}
