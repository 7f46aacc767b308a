package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripsplit/internal/calculator"
)

func TestCoinbaseProvider_Rates(t *testing.T) {
	response := `{
		"data": {
			"currency": "INR",
			"rates": {
				"USD": "0.0114",
				"EUR": "0.0105",
				"BAD": "not-a-number",
				"ZERO": "0"
			}
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/v2/exchange-rates", req.URL.Path)
		assert.Equal(t, "INR", req.URL.Query().Get("currency"))
		rw.Write([]byte(response))
	}))
	defer server.Close()

	rates, err := NewCoinbase(server.URL+"/").Rates(context.Background(), "inr")
	require.NoError(t, err)
	assert.Equal(t, "INR", rates.Reference)
	assert.InDelta(t, 0.0114, rates.Table["USD"], 1e-12)
	assert.InDelta(t, 0.0105, rates.Table["EUR"], 1e-12)
	assert.NotContains(t, rates.Table, "BAD")
	assert.NotContains(t, rates.Table, "ZERO")

	inr, err := calculator.ToReference(20, "USD", rates)
	require.NoError(t, err)
	assert.InDelta(t, 1754.39, inr, 0.01)
}

func TestCoinbaseProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(rw http.ResponseWriter, _ *http.Request) {
			rw.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed json", func(rw http.ResponseWriter, _ *http.Request) {
			rw.Write([]byte(`{"data":`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewCoinbase(server.URL).Rates(context.Background(), "INR")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		_, err := NewCoinbase(server.URL).Rates(context.Background(), "INR")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestStaticProvider(t *testing.T) {
	p := NewStatic("inr", map[string]float64{"usd": 0.0114})

	rates, err := p.Rates(context.Background(), "INR")
	require.NoError(t, err)
	assert.Equal(t, "INR", rates.Reference)
	assert.Equal(t, 0.0114, rates.Table["USD"])

	_, err = p.Rates(context.Background(), "USD")
	assert.ErrorIs(t, err, ErrUnavailable)
}

type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (c *countingProvider) Rates(_ context.Context, reference string) (calculator.Rates, error) {
	c.calls.Add(1)
	if c.err != nil {
		return calculator.Rates{}, c.err
	}
	return calculator.NewRates(reference, map[string]float64{"USD": 0.0114}), nil
}

func TestCachedProvider(t *testing.T) {
	t.Run("caches per reference", func(t *testing.T) {
		next := &countingProvider{}
		cached := NewCached(next, 4, time.Hour)
		ctx := context.Background()

		for range 3 {
			rates, err := cached.Rates(ctx, "inr")
			require.NoError(t, err)
			assert.Equal(t, "INR", rates.Reference)
		}
		assert.Equal(t, int32(1), next.calls.Load())

		_, err := cached.Rates(ctx, "USD")
		require.NoError(t, err)
		assert.Equal(t, int32(2), next.calls.Load())
	})

	t.Run("expires", func(t *testing.T) {
		next := &countingProvider{}
		cached := NewCached(next, 4, 10*time.Millisecond)

		_, err := cached.Rates(context.Background(), "INR")
		require.NoError(t, err)
		time.Sleep(50 * time.Millisecond)
		_, err = cached.Rates(context.Background(), "INR")
		require.NoError(t, err)
		assert.Equal(t, int32(2), next.calls.Load())
	})

	t.Run("does not cache failures", func(t *testing.T) {
		next := &countingProvider{err: errors.New("boom")}
		cached := NewCached(next, 4, time.Hour)

		for range 2 {
			_, err := cached.Rates(context.Background(), "INR")
			assert.Error(t, err)
		}
		assert.Equal(t, int32(2), next.calls.Load())
	})
}

func TestWithMetrics(t *testing.T) {
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "fetches"}, []string{"provider", "outcome"})

	ok := WithMetrics(&countingProvider{}, "static", fetches)
	_, err := ok.Rates(context.Background(), "INR")
	require.NoError(t, err)

	failing := WithMetrics(&countingProvider{err: ErrUnavailable}, "coinbase", fetches)
	_, err = failing.Rates(context.Background(), "INR")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(fetches.WithLabelValues("static", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(fetches.WithLabelValues("coinbase", "error")))
}
