package calculator

import (
	"cmp"
	"maps"
	"slices"
)

// Matcher turns one group's balances into the transfers that settle them.
type Matcher func(balances map[string]Balance) DebtGraph

type position struct {
	id     string
	amount float64
}

// splitPositions separates receivers (net > 0) from givers (net < 0), both
// as positive amounts, in ascending id order.
func splitPositions(balances map[string]Balance) (receivers, givers []position) {
	for _, id := range slices.Sorted(maps.Keys(balances)) {
		net := balances[id].Net
		switch {
		case net > epsilon:
			receivers = append(receivers, position{id: id, amount: net})
		case net < -epsilon:
			givers = append(givers, position{id: id, amount: -net})
		}
	}
	return receivers, givers
}

// MatchDebts settles one group with the greedy matcher.
func MatchDebts(balances map[string]Balance) DebtGraph {
	return GreedyMatcher(balances)
}

// GreedyMatcher walks receivers in ascending id order and, for each one, takes
// from givers in ascending id order until the receiver is made whole.
// It satisfies every balance but does not guarantee the fewest transfers.
func GreedyMatcher(balances map[string]Balance) DebtGraph {
	receivers, givers := splitPositions(balances)
	debts := NewDebtGraph()

	g := 0
	for _, receiver := range receivers {
		remaining := receiver.amount
		for remaining > epsilon && g < len(givers) {
			amount := min(remaining, givers[g].amount)
			debts.add(receiver.id, givers[g].id, amount)
			remaining -= amount
			givers[g].amount -= amount
			if givers[g].amount <= epsilon {
				g++
			}
		}
	}
	return debts
}

// MinCashFlowMatcher repeatedly settles the largest receiver against the largest
// giver. It usually produces fewer transfers than GreedyMatcher.
// Ties are broken by ascending id.
func MinCashFlowMatcher(balances map[string]Balance) DebtGraph {
	receivers, givers := splitPositions(balances)
	debts := NewDebtGraph()

	byAmount := func(a, b position) int {
		if c := cmp.Compare(b.amount, a.amount); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	}

	for len(receivers) > 0 && len(givers) > 0 {
		slices.SortFunc(receivers, byAmount)
		slices.SortFunc(givers, byAmount)

		amount := min(receivers[0].amount, givers[0].amount)
		debts.add(receivers[0].id, givers[0].id, amount)
		receivers[0].amount -= amount
		givers[0].amount -= amount

		if receivers[0].amount <= epsilon {
			receivers = receivers[1:]
		}
		if givers[0].amount <= epsilon {
			givers = givers[1:]
		}
	}
	return debts
}
