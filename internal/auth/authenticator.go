package auth

import (
	"context"

	"github.com/mmynk/tripsplit/internal/models"
)

// Registration carries the profile fields of a new account.
type Registration struct {
	Username string
	FullName string
	Email    string

	// Currency is the preferred display currency. Empty means the reference currency.
	Currency string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given profile and credential.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, reg Registration, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
