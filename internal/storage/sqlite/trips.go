package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

const tripColumns = "t.id, t.title, t.start_date, t.end_date, t.created_by, t.created_at"

// GetTrip retrieves a trip by ID, including its members.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := scanTrip(s.db.QueryRowContext(ctx,
		"SELECT "+tripColumns+" FROM trips t WHERE t.id = ?", tripID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if err := s.loadMembers(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// ListTripsByMember returns every trip the user belongs to, most recent start first.
func (s *SQLiteStore) ListTripsByMember(ctx context.Context, userID string) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tripColumns+` FROM trips t
		 JOIN trip_members m ON m.trip_id = t.id
		 WHERE m.user_id = ?
		 ORDER BY t.start_date DESC, t.created_at DESC, t.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	for _, trip := range trips {
		if err := s.loadMembers(ctx, trip); err != nil {
			return nil, err
		}
	}
	return trips, nil
}

// AddTripMember adds a user to a trip. Adding an existing member is a no-op.
func (s *SQLiteStore) AddTripMember(ctx context.Context, tripID, userID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM trips WHERE id = ?", tripID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check trip existence: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO trip_members (trip_id, user_id) VALUES (?, ?)",
		tripID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add trip member: %w", err)
	}
	return nil
}

// RemoveTripMember removes a user from a trip.
func (s *SQLiteStore) RemoveTripMember(ctx context.Context, tripID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM trip_members WHERE trip_id = ? AND user_id = ?",
		tripID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove trip member: %w", err)
	}
	return requireAffected(result, "trip member", userID)
}

func scanTrip(row scanner) (*models.Trip, error) {
	trip := &models.Trip{}
	var endDate sql.NullString
	if err := row.Scan(&trip.ID, &trip.Title, &trip.StartDate, &endDate, &trip.CreatedBy, &trip.CreatedAt); err != nil {
		return nil, err
	}
	trip.EndDate = endDate.String
	return trip, nil
}

func (s *SQLiteStore) loadMembers(ctx context.Context, trip *models.Trip) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM trip_members WHERE trip_id = ? ORDER BY user_id",
		trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get trip members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return fmt.Errorf("failed to scan trip member: %w", err)
		}
		trip.Members = append(trip.Members, member)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate trip members: %w", err)
	}
	return nil
}
