package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
)

// CoinbaseURL is the public Coinbase API base URL.
const CoinbaseURL = "https://api.coinbase.com"

// CoinbaseProvider loads rates from the Coinbase exchange-rates endpoint.
type CoinbaseProvider struct {
	baseURL string
	client  *http.Client
}

// NewCoinbase returns a provider calling baseURL, e.g. CoinbaseURL.
func NewCoinbase(baseURL string) *CoinbaseProvider {
	return &CoinbaseProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type coinbaseResponse struct {
	Data struct {
		Currency string            `json:"currency"`
		Rates    map[string]string `json:"rates"` // currency code to decimal string
	} `json:"data"`
}

// Rates fetches the table for reference. Rates that do not parse or are not
// positive are skipped, so the calculator reports them as missing.
func (p *CoinbaseProvider) Rates(ctx context.Context, reference string) (calculator.Rates, error) {
	reference = strings.ToUpper(reference)
	endpoint := fmt.Sprintf("%s/v2/exchange-rates?currency=%s", p.baseURL, url.QueryEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return calculator.Rates{}, fmt.Errorf("building coinbase request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return calculator.Rates{}, fmt.Errorf("coinbase api: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return calculator.Rates{}, fmt.Errorf("coinbase api: status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var body coinbaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return calculator.Rates{}, fmt.Errorf("decoding coinbase response: %v: %w", err, ErrUnavailable)
	}

	table := make(map[string]float64, len(body.Data.Rates))
	for code, value := range body.Data.Rates {
		rate, err := decimal.NewFromString(value)
		if err != nil || !rate.IsPositive() {
			slog.Debug("Skipping unusable coinbase rate", "currency", code, "value", value)
			continue
		}
		table[strings.ToUpper(code)] = rate.InexactFloat64()
	}

	slog.Debug("Fetched coinbase rates", "reference", reference, "count", len(table))
	return calculator.NewRates(reference, table), nil
}
