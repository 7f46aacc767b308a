package calculator

import (
	"slices"
	"testing"
)

func TestNewParticipantKey(t *testing.T) {
	a := NewParticipantKey([]string{"U3", "U1", "U2"})
	b := NewParticipantKey([]string{"U2", "U3", "U1", "U1"})

	if a.String() != b.String() {
		t.Errorf("keys differ: %v vs %v", a, b)
	}
	if !slices.Equal(a, ParticipantKey{"U1", "U2", "U3"}) {
		t.Errorf("key = %v, want [U1 U2 U3]", a)
	}
}

func TestNewParticipantKey_DoesNotMutateInput(t *testing.T) {
	input := []string{"U2", "U1"}
	NewParticipantKey(input)
	if !slices.Equal(input, []string{"U2", "U1"}) {
		t.Errorf("input was modified: %v", input)
	}
}

func TestPartition(t *testing.T) {
	expenses := []Expense{
		{ID: "e1", Participants: []string{"U1", "U2", "U3"}},
		{ID: "e2", Participants: []string{"U3", "U1"}},
		{ID: "e3", Participants: nil},
		{ID: "e4", Participants: []string{"U3", "U2", "U1"}},
	}

	groups := Partition(expenses)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// Ascending key order: [U1 U2 U3] < [U1 U3]
	if !slices.Equal(groups[0].Key, ParticipantKey{"U1", "U2", "U3"}) {
		t.Errorf("group 0 key = %v", groups[0].Key)
	}
	if got := expenseIDs(groups[0].Expenses); !slices.Equal(got, []string{"e1", "e4"}) {
		t.Errorf("group 0 expenses = %v, want [e1 e4]", got)
	}
	if !slices.Equal(groups[1].Key, ParticipantKey{"U1", "U3"}) {
		t.Errorf("group 1 key = %v", groups[1].Key)
	}
	if got := expenseIDs(groups[1].Expenses); !slices.Equal(got, []string{"e2"}) {
		t.Errorf("group 1 expenses = %v, want [e2]", got)
	}
}

func TestPartition_Empty(t *testing.T) {
	if groups := Partition(nil); len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func expenseIDs(expenses []Expense) []string {
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	return ids
}
