package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tripsplit/internal/auth"
	"github.com/mmynk/tripsplit/internal/metrics"
	"github.com/mmynk/tripsplit/internal/middleware"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/rates"
	"github.com/mmynk/tripsplit/internal/storage/sqlite"
)

const testUserHeader = "X-Test-User"

// testAuthInterceptor trusts the user id sent in testUserHeader.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if userID := req.Header().Get(testUserHeader); userID != "" {
				ctx = middleware.WithUser(ctx, userID, "")
			}
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	store      *sqlite.SQLiteStore
	metrics    *metrics.Metrics
	auth       *AuthServiceClient
	trips      *TripServiceClient
	settlement *SettlementServiceClient
	jwt        *auth.JWTManager

	// Registered users, by username
	users map[string]*models.User
}

func newTestEnv(t *testing.T, provider rates.Provider) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	env := &testEnv{
		store:   store,
		metrics: metrics.New(),
		jwt:     auth.NewJWTManager("test-secret", time.Hour),
		users:   make(map[string]*models.User),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authenticator := auth.NewPasswordAuthenticator(store, "INR", auth.WithCost(bcrypt.MinCost))
	interceptors := connect.WithInterceptors(testAuthInterceptor())

	mux := http.NewServeMux()
	mux.Handle(NewAuthServiceHandler(NewAuthService(authenticator, env.jwt, logger)))
	mux.Handle(NewTripServiceHandler(NewTripService(store), interceptors))
	mux.Handle(NewSettlementServiceHandler(NewSettlementService(store, provider, "INR", env.metrics), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	env.auth = NewAuthServiceClient(server.Client(), server.URL)
	env.trips = NewTripServiceClient(server.Client(), server.URL)
	env.settlement = NewSettlementServiceClient(server.Client(), server.URL)

	for _, u := range []struct{ name, currency string }{
		{"kartik", "INR"},
		{"suman", "USD"},
		{"nishtha", "INR"},
		{"outsider", "INR"},
	} {
		user := models.NewUser(u.name, u.name, u.name+"@example.com", "x", u.currency)
		require.NoError(t, store.CreateUser(context.Background(), user))
		env.users[u.name] = user
	}
	return env
}

// id returns the user id of a registered test user.
func (e *testEnv) id(username string) string {
	return e.users[username].ID
}

// as builds a request authenticated as the given test user.
func as[T any](e *testEnv, username string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, e.id(username))
	return req
}

func testRatesProvider() rates.Provider {
	return rates.NewStatic("INR", map[string]float64{
		"USD": 0.0114,
		"EUR": 0.0105,
	})
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "error: %v", err)
}
