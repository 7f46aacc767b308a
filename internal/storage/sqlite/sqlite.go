// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateTrip persists a new trip with its members.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO trips (id, title, start_date, end_date, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		trip.ID, trip.Title, trip.StartDate, nullString(trip.EndDate), trip.CreatedBy, trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	for _, member := range trip.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO trip_members (trip_id, user_id) VALUES (?, ?)",
			trip.ID, member,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateExpense persists a new expense with its participants and payments.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, trip_id, description, created_at) VALUES (?, ?, ?, ?)",
		expense.ID, nullString(expense.TripID), expense.Description, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, participant := range expense.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO expense_participants (expense_id, user_id, position) VALUES (?, ?, ?)",
			expense.ID, participant, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i := range expense.Payments {
		payment := &expense.Payments[i]
		payment.ExpenseID = expense.ID
		if err := insertPayment(ctx, tx, payment); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddPayment attaches a payment to an existing expense.
func (s *SQLiteStore) AddPayment(ctx context.Context, payment *models.Payment) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM expenses WHERE id = ?", payment.ExpenseID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("expense %s: %w", payment.ExpenseID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}
	return insertPayment(ctx, s.db, payment)
}

// UpdatePayment overwrites the payer, amount and details of an existing payment.
// The expense a payment belongs to never changes.
func (s *SQLiteStore) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.Mode == "" {
		payment.Mode = models.PaymentModeCash
	}
	payment.Currency = strings.ToUpper(payment.Currency)

	result, err := s.db.ExecContext(ctx,
		`UPDATE payments SET payer_id = ?, currency = ?, amount = ?, mode = ?, paid_at = ?, notes = ?
		 WHERE id = ?`,
		payment.PayerID, payment.Currency, payment.Amount, payment.Mode, payment.PaidAt,
		nullString(payment.Notes), payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireAffected(result, "payment", payment.ID)
}

// DeleteExpense removes an expense. Participants and payments go with it.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(result, "expense", expenseID)
}

// DeletePayment removes a payment by ID.
func (s *SQLiteStore) DeletePayment(ctx context.Context, paymentID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return requireAffected(result, "payment", paymentID)
}

// GetExpense retrieves an expense by ID, including participants and payments.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := s.GetExpensesByIDs(ctx, []string{expenseID})
	if err != nil {
		return nil, err
	}
	return expenses[0], nil
}

// GetExpensesByIDs retrieves several expenses in the order of ids.
// A repeated id yields its expense once, at its first position.
func (s *SQLiteStore) GetExpensesByIDs(ctx context.Context, ids []string) ([]*models.Expense, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	query := "SELECT id, trip_id, description, created_at FROM expenses WHERE id IN (?" +
		repeatPlaceholder(len(ids)-1) + ")"
	found, err := s.queryExpenses(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Expense, len(found))
	for _, expense := range found {
		byID[expense.ID] = expense
	}
	expenses := make([]*models.Expense, 0, len(ids))
	for _, id := range ids {
		expense, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

// ListExpensesByTrip retrieves every expense of a trip, oldest first.
func (s *SQLiteStore) ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT id, trip_id, description, created_at FROM expenses WHERE trip_id = ? ORDER BY created_at, id",
		tripID,
	)
}

// queryExpenses runs an expense query and loads participants and payments for each row.
func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var tripID sql.NullString
		if err := rows.Scan(&expense.ID, &tripID, &expense.Description, &expense.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.TripID = tripID.String
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadParticipants(ctx, expense); err != nil {
			return nil, err
		}
		if err := s.loadPayments(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM expense_participants WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var participant string
		if err := rows.Scan(&participant); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		expense.Participants = append(expense.Participants, participant)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadPayments(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expense_id, payer_id, currency, amount, mode, paid_at, notes
		 FROM payments WHERE expense_id = ? ORDER BY rowid`,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payment models.Payment
		var notes sql.NullString
		if err := rows.Scan(&payment.ID, &payment.ExpenseID, &payment.PayerID, &payment.Currency,
			&payment.Amount, &payment.Mode, &payment.PaidAt, &notes); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		payment.Notes = notes.String
		expense.Payments = append(expense.Payments, payment)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payments: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertPayment(ctx context.Context, db execer, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.Mode == "" {
		payment.Mode = models.PaymentModeCash
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO payments (id, expense_id, payer_id, currency, amount, mode, paid_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.ExpenseID, payment.PayerID, strings.ToUpper(payment.Currency),
		payment.Amount, payment.Mode, payment.PaidAt, nullString(payment.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	payment.Currency = strings.ToUpper(payment.Currency)
	return nil
}

// nullString stores empty strings as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// requireAffected turns a statement that touched no rows into ErrNotFound.
func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

// uniqueIDs drops repeated ids, keeping the first occurrence of each.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique
}
