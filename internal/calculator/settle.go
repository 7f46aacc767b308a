package calculator

import "fmt"

// Result is the outcome of a settlement run.
type Result struct {
	Graph     DebtGraph  // Netted debts in the reference currency
	Transfers []Transfer // Graph edges in the display currency
	Messages  []string
}

// Settle computes the netted debt graph for a set of expenses using the greedy matcher.
func Settle(expenses []Expense, rates Rates) (DebtGraph, error) {
	return SettleWith(GreedyMatcher, expenses, rates)
}

// SettleWith is Settle with a caller-chosen matcher.
//
// Expenses are grouped by participant set, each group is balanced and matched
// on its own, and the per-group graphs are merged and netted. Nothing is
// returned unless every group succeeds.
func SettleWith(match Matcher, expenses []Expense, rates Rates) (DebtGraph, error) {
	groups := Partition(expenses)
	graphs := make([]DebtGraph, 0, len(groups))
	for _, group := range groups {
		balances, err := ComputeBalances(group, rates)
		if err != nil {
			return nil, fmt.Errorf("failed to compute balances for %v: %w", []string(group.Key), err)
		}
		graphs = append(graphs, match(balances))
	}
	return Net(Merge(graphs...)), nil
}

// SettleAndFormat settles the expenses and renders the result in displayCurrency.
func SettleAndFormat(expenses []Expense, rates Rates, names NameResolver, displayCurrency string) (*Result, error) {
	graph, err := Settle(expenses, rates)
	if err != nil {
		return nil, err
	}
	transfers, err := Transfers(graph, rates, displayCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to convert transfers: %w", err)
	}
	return &Result{
		Graph:     graph,
		Transfers: transfers,
		Messages:  Messages(transfers, names),
	}, nil
}
