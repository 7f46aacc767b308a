package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the unique login name, also shown in settlement messages.
	Username string

	// FullName is the user's full name.
	FullName string

	// Email is the user's email address (unique).
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Currency is the preferred currency for displaying settlements.
	Currency string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64
}

// NewUser builds a user with a fresh ID and creation time.
func NewUser(username, fullName, email, passwordHash, currency string) *User {
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		Currency:     currency,
		CreatedAt:    time.Now().Unix(),
	}
}
