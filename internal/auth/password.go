package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrUserExists         = errors.New("username or email already registered")
)

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage         storage.UserStore
	defaultCurrency string
	cost            int
}

// Option configures a PasswordAuthenticator.
type Option func(*PasswordAuthenticator)

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(a *PasswordAuthenticator) { a.cost = cost }
}

// NewPasswordAuthenticator creates a new password-based authenticator.
// defaultCurrency is stored for users who register without a preferred currency.
func NewPasswordAuthenticator(storage storage.UserStore, defaultCurrency string, opts ...Option) *PasswordAuthenticator {
	a := &PasswordAuthenticator{
		storage:         storage,
		defaultCurrency: defaultCurrency,
		cost:            bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, reg Registration, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	currency := strings.ToUpper(reg.Currency)
	if currency == "" {
		currency = a.defaultCurrency
	}
	user := models.NewUser(reg.Username, reg.FullName, reg.Email, string(hashedPassword), currency)

	// Uniqueness is enforced by the store
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the username and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
