// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const insecureJWTSecret = "dev-secret-change-in-production"

// Config holds application configuration.
type Config struct {
	Port   string
	DBPath string

	LogLevel  string
	LogFormat string // "text" (tint) or "json"

	JWTSecret         string
	JWTExpiryDuration time.Duration

	// ReferenceCurrency is the currency every amount is normalized to.
	ReferenceCurrency string

	RatesProvider  string // "coinbase" or "static"
	RatesURL       string
	RatesTTL       time.Duration
	RatesCacheSize int

	// StaticRates maps currency code to units per one reference unit.
	StaticRates map[string]float64

	// RateLimit uses the limiter format, e.g. "100-M".
	RateLimit string

	// TrustForwardHeader keys the rate limit on X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustForwardHeader bool
}

// Load reads configuration from environment variables and a .env file if present.
func Load() (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", "data/tripsplit.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY_DURATION", "24h")
	v.SetDefault("REFERENCE_CURRENCY", "INR")
	v.SetDefault("RATES_PROVIDER", "coinbase")
	v.SetDefault("RATES_URL", "https://api.coinbase.com")
	v.SetDefault("RATES_TTL", "1h")
	v.SetDefault("RATES_CACHE_SIZE", 16)
	v.SetDefault("STATIC_RATES", "")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("TRUST_FORWARD_HEADER", false)
	v.AutomaticEnv()

	cfg := &Config{
		Port:              v.GetString("PORT"),
		DBPath:            v.GetString("DB_PATH"),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:         strings.ToLower(v.GetString("LOG_FORMAT")),
		JWTSecret:         v.GetString("JWT_SECRET"),
		ReferenceCurrency: strings.ToUpper(v.GetString("REFERENCE_CURRENCY")),
		RatesProvider:     strings.ToLower(v.GetString("RATES_PROVIDER")),
		RatesURL:          strings.TrimRight(v.GetString("RATES_URL"), "/"),
		RatesCacheSize:    v.GetInt("RATES_CACHE_SIZE"),
		RateLimit:         v.GetString("RATE_LIMIT"),

		TrustForwardHeader: v.GetBool("TRUST_FORWARD_HEADER"),
	}

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using an insecure development key")
		cfg.JWTSecret = insecureJWTSecret
	}

	var err error
	if cfg.JWTExpiryDuration, err = time.ParseDuration(v.GetString("JWT_EXPIRY_DURATION")); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_DURATION: %w", err)
	}
	if cfg.RatesTTL, err = time.ParseDuration(v.GetString("RATES_TTL")); err != nil {
		return nil, fmt.Errorf("invalid RATES_TTL: %w", err)
	}
	if cfg.StaticRates, err = ParseRates(v.GetString("STATIC_RATES")); err != nil {
		return nil, fmt.Errorf("invalid STATIC_RATES: %w", err)
	}

	switch cfg.RatesProvider {
	case "coinbase", "static":
	default:
		return nil, fmt.Errorf("unknown RATES_PROVIDER %q", cfg.RatesProvider)
	}
	if len(cfg.ReferenceCurrency) != 3 {
		return nil, fmt.Errorf("invalid REFERENCE_CURRENCY %q", cfg.ReferenceCurrency)
	}

	return cfg, nil
}

// ParseRates parses a comma-separated list of CODE=RATE pairs.
// Rates are parsed as decimals so values like "0.0114" keep their written precision.
func ParseRates(s string) (map[string]float64, error) {
	rates := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", code)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate.InexactFloat64()
	}
	return rates, nil
}
