package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NameResolver maps a participant id to a display name.
type NameResolver func(id string) string

// NamesFromMap resolves names from a lookup table, falling back to the id.
func NamesFromMap(names map[string]string) NameResolver {
	return func(id string) string {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return id
	}
}

// Transfer is one settling payment expressed in the display currency.
type Transfer struct {
	From     string          // Debtor
	To       string          // Creditor
	Currency string
	Amount   decimal.Decimal // Rounded to two decimal places
}

// Transfers converts every edge of the graph into the display currency.
// An empty display currency means the reference currency.
func Transfers(graph DebtGraph, rates Rates, displayCurrency string) ([]Transfer, error) {
	if displayCurrency == "" {
		displayCurrency = rates.Reference
	}

	var transfers []Transfer
	for _, edge := range graph.Edges() {
		amount, err := FromReference(edge.Amount, displayCurrency, rates)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, Transfer{
			From:     edge.Debtor,
			To:       edge.Creditor,
			Currency: displayCurrency,
			Amount:   decimal.NewFromFloat(amount).Round(2),
		})
	}
	return transfers, nil
}

// FormatMessages renders the graph as "<debtor> needs to give <CUR> <amount> to <creditor>".
func FormatMessages(graph DebtGraph, names NameResolver, rates Rates, displayCurrency string) ([]string, error) {
	transfers, err := Transfers(graph, rates, displayCurrency)
	if err != nil {
		return nil, err
	}
	return Messages(transfers, names), nil
}

// Messages renders already converted transfers.
func Messages(transfers []Transfer, names NameResolver) []string {
	if names == nil {
		names = NamesFromMap(nil)
	}
	messages := make([]string, 0, len(transfers))
	for _, t := range transfers {
		messages = append(messages, fmt.Sprintf("%s needs to give %s %s to %s",
			names(t.From), t.Currency, t.Amount.StringFixed(2), names(t.To)))
	}
	return messages
}
