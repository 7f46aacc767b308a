package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/tripsplit/internal/auth"
	"github.com/mmynk/tripsplit/internal/config"
	"github.com/mmynk/tripsplit/internal/metrics"
	"github.com/mmynk/tripsplit/internal/middleware"
	"github.com/mmynk/tripsplit/internal/rates"
	"github.com/mmynk/tripsplit/internal/service"
	"github.com/mmynk/tripsplit/internal/storage/sqlite"
	"github.com/mmynk/tripsplit/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	m := metrics.New()
	provider := newRatesProvider(cfg, m)

	handler, err := newRouter(cfg, store, provider, m)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: ":" + cfg.Port,
		// Wrap with h2c for HTTP/2 without TLS (required for Connect)
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "reference_currency", cfg.ReferenceCurrency)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRatesProvider builds the configured provider, cached and instrumented.
func newRatesProvider(cfg *config.Config, m *metrics.Metrics) rates.Provider {
	var provider rates.Provider
	switch cfg.RatesProvider {
	case "static":
		provider = rates.NewStatic(cfg.ReferenceCurrency, cfg.StaticRates)
	default:
		provider = rates.NewCoinbase(cfg.RatesURL)
	}
	provider = rates.WithMetrics(provider, cfg.RatesProvider, m.RateFetches)
	slog.Info("Exchange rates configured", "provider", cfg.RatesProvider, "ttl", cfg.RatesTTL)
	return rates.NewCached(provider, cfg.RatesCacheSize, cfg.RatesTTL)
}

func newRouter(cfg *config.Config, store *sqlite.SQLiteStore, provider rates.Provider, m *metrics.Metrics) (http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}
	// Forwarded headers are client-controlled unless a trusted proxy sets them.
	ipLimiter := limiter.New(memory.NewStore(), rate,
		limiter.WithTrustForwardHeader(cfg.TrustForwardHeader))

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiryDuration)
	authenticator := auth.NewPasswordAuthenticator(store, cfg.ReferenceCurrency)

	common := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m.RPCDuration),
	)
	// RequireAuth wraps the logger so log lines carry the caller's user id.
	authed := connect.WithInterceptors(
		middleware.MetricsInterceptor(m.RPCDuration),
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(),
	)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(ipLimiter))

		path, h := service.NewAuthServiceHandler(
			service.NewAuthService(authenticator, jwtManager, slog.Default()), common)
		r.Mount(path, h)

		path, h = service.NewTripServiceHandler(service.NewTripService(store), authed)
		r.Mount(path, h)

		path, h = service.NewSettlementServiceHandler(
			service.NewSettlementService(store, provider, cfg.ReferenceCurrency, m), authed)
		r.Mount(path, h)
	})

	return r, nil
}
