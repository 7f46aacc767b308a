package models

// PaymentMode describes how a payment was made.
type PaymentMode string

const (
	PaymentModeCash       PaymentMode = "Cash"
	PaymentModeUPI        PaymentMode = "UPI"
	PaymentModeCard       PaymentMode = "Card"
	PaymentModeNetBanking PaymentMode = "NetBanking"
)

// Expense is something paid for during a trip, split equally between its participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip this expense belongs to.
	TripID string

	// Description is a short human-readable label (e.g., "Dinner day 1").
	Description string

	// Participants are the user IDs the expense is split between.
	Participants []string

	// Payments are the contributions made towards this expense.
	Payments []Payment

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64
}

// Payment is one contribution towards an expense.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// ExpenseID is the expense this payment belongs to.
	ExpenseID string

	// PayerID is the user who paid. Usually, but not necessarily, a participant.
	PayerID string

	// Currency is the ISO 4217 code the payment was made in.
	Currency string

	// Amount is the amount paid, in Currency.
	Amount float64

	// Mode is how the payment was made.
	Mode PaymentMode

	// PaidAt is the Unix timestamp of the payment, zero if unknown.
	PaidAt int64

	// Notes is an optional free-form remark.
	Notes string
}
