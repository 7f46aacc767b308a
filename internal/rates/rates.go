// Package rates supplies exchange-rate tables for the settlement calculator.
//
// Every provider returns rates relative to a reference currency: the table
// entry for a currency is the number of its units worth one reference unit,
// the same convention the Coinbase exchange-rates endpoint uses.
package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/tripsplit/internal/calculator"
)

// ErrUnavailable is returned (wrapped) when rates cannot be obtained.
var ErrUnavailable = errors.New("exchange rates unavailable")

// Provider returns the current rate table for a reference currency.
type Provider interface {
	Rates(ctx context.Context, reference string) (calculator.Rates, error)
}

// StaticProvider serves a fixed table configured at startup.
type StaticProvider struct {
	reference string
	table     map[string]float64
}

// NewStatic returns a provider for a fixed table relative to reference.
func NewStatic(reference string, table map[string]float64) *StaticProvider {
	upper := make(map[string]float64, len(table))
	for code, rate := range table {
		upper[strings.ToUpper(code)] = rate
	}
	return &StaticProvider{reference: strings.ToUpper(reference), table: upper}
}

// Rates returns the configured table. Only the configured reference is supported.
func (p *StaticProvider) Rates(_ context.Context, reference string) (calculator.Rates, error) {
	if !strings.EqualFold(reference, p.reference) {
		return calculator.Rates{}, fmt.Errorf("static rates are relative to %s, not %s: %w",
			p.reference, reference, ErrUnavailable)
	}
	return calculator.NewRates(p.reference, p.table), nil
}

// instrumented counts fetches of the wrapped provider by outcome.
type instrumented struct {
	next    Provider
	name    string
	fetches *prometheus.CounterVec
}

// WithMetrics decorates p so every call increments fetches{provider=name, outcome}.
func WithMetrics(p Provider, name string, fetches *prometheus.CounterVec) Provider {
	return &instrumented{next: p, name: name, fetches: fetches}
}

func (i *instrumented) Rates(ctx context.Context, reference string) (calculator.Rates, error) {
	rates, err := i.next.Rates(ctx, reference)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.fetches.WithLabelValues(i.name, outcome).Inc()
	return rates, err
}
