// Package exchangerate provides the currency exchange rate upstream gateway.
package exchangerate

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"findash/internal/core"
	"findash/internal/httpclient"
)

const (
	providerName = "exchangerate-api"

	// Keyed tier: 1,500 requests/month on the free plan.
	defaultKeyedBaseURL = "https://v6.exchangerate-api.com/v6"
	// Public tier used when no API key is configured.
	defaultFreeBaseURL = "https://api.exchangerate-api.com/v4"

	requestTimeout = 10 * time.Second
)

// targetCurrencies is the set of currencies extracted from the upstream
// payload for the live path.
var targetCurrencies = []string{"EUR", "GBP", "JPY", "CAD", "AUD", "CHF"}

// Client implements core.RatesProvider against exchangerate-api.com.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// New creates a rates client. An empty apiKey selects the public tier.
func New(apiKey string) *Client {
	baseURL := defaultFreeBaseURL
	if apiKey != "" {
		baseURL = defaultKeyedBaseURL
	}
	return &Client{
		httpClient: httpclient.NewWithTimeout(requestTimeout),
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

func (c *Client) ratesURL(base string) string {
	if c.apiKey != "" {
		return c.baseURL + "/" + c.apiKey + "/latest/" + base
	}
	return c.baseURL + "/latest/" + base
}

// FetchRates fetches the latest rates for the given base currency. Every
// failure mode maps onto a classified *core.UpstreamError; no retries.
func (c *Client) FetchRates(ctx context.Context, base string) ([]core.ExchangeRate, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ratesURL(base), nil)
	if err != nil {
		return nil, core.NewUnavailableError(providerName, "failed to create request", err)
	}
	req.Header.Set("User-Agent", "Finance-Dashboard/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewUnavailableError(providerName, "request failed", err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUnavailableError(providerName, "failed to read response", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, core.NewRateLimitedError(providerName, "rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.NewUnavailableError(providerName, "unexpected status "+resp.Status, nil)
	}

	upstream := gjson.GetBytes(body, "rates")
	if !upstream.Exists() || !upstream.IsObject() {
		return nil, core.NewUnavailableError(providerName, "malformed payload: missing rates", nil)
	}

	now := time.Now()
	rates := make([]core.ExchangeRate, 0, len(targetCurrencies))
	for _, currency := range targetCurrencies {
		r := upstream.Get(currency)
		if !r.Exists() {
			continue
		}
		rates = append(rates, core.ExchangeRate{
			Currency: currency,
			Rate:     r.Float(),
			// The provider does not report daily movement on this
			// endpoint; a synthetic value in [-1, 1) stands in.
			Change24h:   rand.Float64()*2 - 1,
			LastUpdated: now,
		})
	}

	if len(rates) == 0 {
		return nil, core.NewUnavailableError(providerName, "no target currencies in payload", nil)
	}
	return rates, nil
}
