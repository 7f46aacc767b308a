package calculator

import (
	"maps"
	"slices"
)

// DebtGraph maps creditor -> debtor -> amount the debtor owes the creditor,
// in the reference currency.
type DebtGraph map[string]map[string]float64

// Edge is a single directed debt.
type Edge struct {
	Creditor string
	Debtor   string
	Amount   float64
}

// NewDebtGraph returns an empty graph.
func NewDebtGraph() DebtGraph {
	return make(DebtGraph)
}

// add accumulates amount onto the creditor<-debtor edge. Self-loops and
// non-positive amounts are ignored.
func (g DebtGraph) add(creditor, debtor string, amount float64) {
	if creditor == debtor || amount <= epsilon {
		return
	}
	if g[creditor] == nil {
		g[creditor] = make(map[string]float64)
	}
	g[creditor][debtor] += amount
}

// Amount returns what debtor owes creditor, or zero.
func (g DebtGraph) Amount(creditor, debtor string) float64 {
	return g[creditor][debtor]
}

// Edges lists every edge, creditors ascending then debtors ascending.
func (g DebtGraph) Edges() []Edge {
	var edges []Edge
	for _, creditor := range slices.Sorted(maps.Keys(g)) {
		for _, debtor := range slices.Sorted(maps.Keys(g[creditor])) {
			edges = append(edges, Edge{Creditor: creditor, Debtor: debtor, Amount: g[creditor][debtor]})
		}
	}
	return edges
}

// Len returns the number of edges.
func (g DebtGraph) Len() int {
	n := 0
	for _, debtors := range g {
		n += len(debtors)
	}
	return n
}

// Merge sums the edges of every graph into a new graph.
func Merge(graphs ...DebtGraph) DebtGraph {
	merged := NewDebtGraph()
	for _, graph := range graphs {
		for _, edge := range graph.Edges() {
			merged.add(edge.Creditor, edge.Debtor, edge.Amount)
		}
	}
	return merged
}

// Net collapses opposite debts between the same two people into a single edge
// in the direction of the larger amount, valued at the difference. Equal debts
// cancel out. The input graph is left untouched.
func Net(graph DebtGraph) DebtGraph {
	netted := NewDebtGraph()
	for _, edge := range graph.Edges() {
		reverse := graph.Amount(edge.Debtor, edge.Creditor)
		diff := edge.Amount - reverse
		if diff > epsilon {
			netted.add(edge.Creditor, edge.Debtor, diff)
		}
	}
	return netted
}
