// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tripsplit/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned (wrapped) when a unique field is already taken.
var ErrConflict = errors.New("already exists")

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to user. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// Store defines the interface for trip and expense storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore

	// CreateTrip persists a new trip. trip.ID and trip.CreatedAt are populated by the store.
	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTripsByMember returns the trips a user belongs to.
	ListTripsByMember(ctx context.Context, userID string) ([]*models.Trip, error)

	// AddTripMember is idempotent. RemoveTripMember returns ErrNotFound for a non-member.
	AddTripMember(ctx context.Context, tripID, userID string) error
	RemoveTripMember(ctx context.Context, tripID, userID string) error

	// CreateExpense persists an expense with its participants and payments in one transaction.
	// IDs and timestamps left empty are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// GetExpensesByIDs returns expenses in the order of ids, each at most once.
	// Unknown IDs are an error.
	GetExpensesByIDs(ctx context.Context, ids []string) ([]*models.Expense, error)

	// ListExpensesByTrip returns a trip's expenses, oldest first.
	ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense along with its participants and payments.
	DeleteExpense(ctx context.Context, expenseID string) error

	AddPayment(ctx context.Context, payment *models.Payment) error
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	DeletePayment(ctx context.Context, paymentID string) error

	// Close releases any resources held by the store.
	Close() error
}
