package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSettlement(t *testing.T) {
	m := New()

	m.ObserveSettlement(OutcomeOK, 3)
	m.ObserveSettlement(OutcomeOK, 0)
	m.ObserveSettlement(OutcomeMissingRate, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Settlements.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Settlements.WithLabelValues(OutcomeMissingRate)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Transfers))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RateFetches.WithLabelValues("static", "ok").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tripsplit_rate_fetch_total{outcome="ok",provider="static"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
