package calculator

import (
	"slices"
	"strings"
)

// Payment is one contribution towards an expense.
type Payment struct {
	Currency string
	Amount   float64
	PayerID  string
}

// Expense is the minimal view of an expense the settlement engine needs.
type Expense struct {
	ID           string
	Participants []string
	Payments     []Payment
}

// ParticipantKey is the sorted, deduplicated set of people an expense is split between.
type ParticipantKey []string

// NewParticipantKey canonicalizes a participant list. The input is not modified.
func NewParticipantKey(participants []string) ParticipantKey {
	key := slices.Clone(participants)
	slices.Sort(key)
	return ParticipantKey(slices.Compact(key))
}

// String encodes the key so it can be used as a map key.
func (k ParticipantKey) String() string {
	return strings.Join(k, "\x1f")
}

// ExpenseGroup holds every expense split between the same set of people.
type ExpenseGroup struct {
	Key      ParticipantKey
	Expenses []Expense
}

// Partition groups expenses by their participant key.
// Expenses without participants are skipped. Groups come back in ascending key
// order and keep the input order of their expenses.
func Partition(expenses []Expense) []ExpenseGroup {
	index := make(map[string]int)
	var groups []ExpenseGroup

	for _, expense := range expenses {
		if len(expense.Participants) == 0 {
			continue
		}
		key := NewParticipantKey(expense.Participants)
		i, ok := index[key.String()]
		if !ok {
			i = len(groups)
			index[key.String()] = i
			groups = append(groups, ExpenseGroup{Key: key})
		}
		groups[i].Expenses = append(groups[i].Expenses, expense)
	}

	slices.SortFunc(groups, func(a, b ExpenseGroup) int {
		return slices.Compare(a.Key, b.Key)
	})
	return groups
}
