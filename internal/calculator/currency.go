package calculator

import (
	"errors"
	"fmt"
)

// DefaultReferenceCurrency is the currency balances are computed in when the
// caller does not choose one.
const DefaultReferenceCurrency = "INR"

// ErrEmptyGroup is returned when a share has to be computed for a participant
// group with no members.
var ErrEmptyGroup = errors.New("participant group has no members")

// MissingRateError reports a currency that has no usable entry in the rate table.
type MissingRateError struct {
	Currency  string
	Reference string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("the %s to %s exchange rate is unavailable", e.Currency, e.Reference)
}

// Rates is a read-only rate table relative to a reference currency.
// Table[c] is the number of units of c worth one unit of Reference.
type Rates struct {
	Reference string
	Table     map[string]float64
}

// NewRates returns a rate table for the given reference currency.
func NewRates(reference string, table map[string]float64) Rates {
	if reference == "" {
		reference = DefaultReferenceCurrency
	}
	return Rates{Reference: reference, Table: table}
}

func (r Rates) rate(currency string) (float64, error) {
	rate, ok := r.Table[currency]
	if !ok || rate <= 0 {
		return 0, &MissingRateError{Currency: currency, Reference: r.Reference}
	}
	return rate, nil
}

// ToReference converts amount from currency into the reference currency.
func ToReference(amount float64, currency string, rates Rates) (float64, error) {
	if currency == rates.Reference {
		return amount, nil
	}
	rate, err := rates.rate(currency)
	if err != nil {
		return 0, err
	}
	return amount / rate, nil
}

// FromReference converts a reference-currency amount into target.
// It is the inverse of ToReference for every currency in the table.
func FromReference(amount float64, target string, rates Rates) (float64, error) {
	if target == rates.Reference {
		return amount, nil
	}
	rate, err := rates.rate(target)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}
