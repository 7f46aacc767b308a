package calculator

import "fmt"

// epsilon absorbs floating point noise when comparing amounts to zero.
const epsilon = 1e-9

// Balance is one participant's position within a participant group,
// in the reference currency.
type Balance struct {
	Paid  float64 // Sum of this participant's payments
	Share float64 // Equal share of the group total
	Net   float64 // Paid - Share. Positive = owed money, Negative = owes money
}

// ComputeBalances computes every group member's net position for one expense group.
//
// Algorithm:
//   - Every payment is converted to the reference currency and credited to its payer,
//     even when the payer is not one of the expense's participants
//   - share = group total / number of people in the key
//   - net = paid - share for every member of the key, including members who paid nothing
func ComputeBalances(group ExpenseGroup, rates Rates) (map[string]Balance, error) {
	if len(group.Key) == 0 {
		return nil, ErrEmptyGroup
	}

	paid := make(map[string]float64)
	total := 0.0
	for _, expense := range group.Expenses {
		for _, payment := range expense.Payments {
			amount, err := ToReference(payment.Amount, payment.Currency, rates)
			if err != nil {
				return nil, fmt.Errorf("expense %s: %w", expense.ID, err)
			}
			paid[payment.PayerID] += amount
			total += amount
		}
	}

	share := total / float64(len(group.Key))
	balances := make(map[string]Balance, len(group.Key))
	for _, member := range group.Key {
		balances[member] = Balance{
			Paid:  paid[member],
			Share: share,
			Net:   paid[member] - share,
		}
	}
	return balances, nil
}
