// Package alphavantage provides the stock quote upstream gateway.
package alphavantage

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"findash/internal/core"
	"findash/internal/httpclient"
)

const (
	providerName = "alphavantage"

	defaultBaseURL = "https://www.alphavantage.co"

	// demoKey is Alpha Vantage's public demonstration key, used when no
	// credential is configured. Free tier: 5 requests/minute, 500/day.
	demoKey = "demo"

	requestTimeout = 15 * time.Second
)

// Client implements core.QuotesProvider against the Alpha Vantage
// GLOBAL_QUOTE endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// New creates a quotes client. An empty apiKey selects the demo tier.
func New(apiKey string) *Client {
	if apiKey == "" {
		apiKey = demoKey
	}
	return &Client{
		httpClient: httpclient.NewWithTimeout(requestTimeout),
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}
}

// FetchQuote fetches a quote for the given symbol. Alpha Vantage signals
// failures inside a 200 response, so classification inspects the payload:
// an "Error Message" field means the symbol was rejected, a "Note" field
// means the free tier was throttled, and a missing "Global Quote" object
// means no data is available.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (core.StockQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return core.StockQuote{}, core.NewUnavailableError(providerName, "failed to create request", err)
	}
	req.Header.Set("User-Agent", "Finance-Dashboard/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.StockQuote{}, core.NewUnavailableError(providerName, "request failed", err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.StockQuote{}, core.NewUnavailableError(providerName, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return core.StockQuote{}, core.NewUnavailableError(providerName, "unexpected status "+resp.Status, nil)
	}

	if gjson.GetBytes(body, "Error Message").Exists() {
		return core.StockQuote{}, core.NewInvalidSymbolError(providerName, symbol)
	}
	if gjson.GetBytes(body, "Note").Exists() {
		return core.StockQuote{}, core.NewRateLimitedError(providerName, "API rate limit exceeded")
	}

	quote := gjson.GetBytes(body, "Global Quote")
	if !quote.Exists() || len(quote.Map()) == 0 {
		return core.StockQuote{}, core.NewUnavailableError(providerName, "no stock data available", nil)
	}

	upstreamSymbol := quote.Get(`01\. symbol`).String()
	if upstreamSymbol == "" {
		upstreamSymbol = symbol
	}

	return core.StockQuote{
		Symbol: upstreamSymbol,
		// This endpoint does not carry the company name.
		Name:          symbol + " Inc.",
		CurrentPrice:  quote.Get(`05\. price`).Float(),
		PreviousClose: quote.Get(`08\. previous close`).Float(),
		Change:        quote.Get(`09\. change`).Float(),
		ChangePercent: parsePercent(quote.Get(`10\. change percent`).String()),
		Volume:        quote.Get(`06\. volume`).Int(),
		LastUpdated:   time.Now(),
	}, nil
}

// parsePercent parses values like "1.47%" into 1.47.
func parsePercent(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0
	}
	return f
}
