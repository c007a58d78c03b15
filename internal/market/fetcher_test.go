package market

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"findash/internal/cache"
	"findash/internal/core"
	"findash/internal/observability"
)

type stubRates struct {
	rates []core.ExchangeRate
	err   error
	calls int
}

func (s *stubRates) FetchRates(ctx context.Context, base string) ([]core.ExchangeRate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rates, nil
}

type stubQuotes struct {
	quote core.StockQuote
	err   error
	calls int
}

func (s *stubQuotes) FetchQuote(ctx context.Context, symbol string) (core.StockQuote, error) {
	s.calls++
	if s.err != nil {
		return core.StockQuote{}, s.err
	}
	return s.quote, nil
}

func newTestFetcher(t *testing.T, rates *stubRates, quotes *stubQuotes) (*Fetcher, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore(cache.MemoryOptions{SweepInterval: -1})
	t.Cleanup(func() { store.Close() })

	return NewFetcher(store, rates, quotes, observability.NewNopMetrics()), store
}

func liveRates() []core.ExchangeRate {
	now := time.Now()
	return []core.ExchangeRate{
		{Currency: "EUR", Rate: 0.91, LastUpdated: now},
		{Currency: "GBP", Rate: 0.78, LastUpdated: now},
		{Currency: "JPY", Rate: 151.2, LastUpdated: now},
		{Currency: "CAD", Rate: 1.36, LastUpdated: now},
		{Currency: "AUD", Rate: 1.52, LastUpdated: now},
		{Currency: "CHF", Rate: 0.88, LastUpdated: now},
	}
}

func TestKeyConstruction(t *testing.T) {
	if RatesKey("USD") != RatesKey("USD") {
		t.Error("same parameters must yield identical keys")
	}
	if RatesKey("USD") == RatesKey("EUR") {
		t.Error("different base currencies must yield different keys")
	}
	if RatesKey("USD") != "exchange_rates_USD" {
		t.Errorf("RatesKey = %q", RatesKey("USD"))
	}
	if QuoteKey("AAPL") != "stock_AAPL" {
		t.Errorf("QuoteKey = %q", QuoteKey("AAPL"))
	}
	if RatesKey("AAPL") == QuoteKey("AAPL") {
		t.Error("distinct resource kinds must not collide")
	}
}

func TestExchangeRatesCacheHitSkipsUpstream(t *testing.T) {
	rates := &stubRates{rates: liveRates()}
	f, _ := newTestFetcher(t, rates, &stubQuotes{})
	ctx := context.Background()

	first, err := f.ExchangeRates(ctx, "USD")
	if err != nil {
		t.Fatalf("ExchangeRates: %v", err)
	}
	second, err := f.ExchangeRates(ctx, "USD")
	if err != nil {
		t.Fatalf("ExchangeRates: %v", err)
	}

	if rates.calls != 1 {
		t.Errorf("upstream called %d times, want 1 (second call should hit cache)", rates.calls)
	}
	if len(first) != len(second) {
		t.Errorf("cache round-trip changed rate count: %d vs %d", len(first), len(second))
	}
}

func TestExchangeRatesSuccessPopulatesCache(t *testing.T) {
	f, store := newTestFetcher(t, &stubRates{rates: liveRates()}, &stubQuotes{})

	if _, err := f.ExchangeRates(context.Background(), "USD"); err != nil {
		t.Fatalf("ExchangeRates: %v", err)
	}

	if !store.Has("exchange_rates_USD") {
		t.Error("successful fetch should populate the cache")
	}
	// Rates cache for an hour regardless of market state.
	remaining := time.Until(store.ExpiryTime("exchange_rates_USD"))
	if remaining < 59*time.Minute || remaining > 61*time.Minute {
		t.Errorf("rates TTL = %v, want ~1h", remaining)
	}
}

func TestStaleFallbackPreferredOverSynthetic(t *testing.T) {
	rates := &stubRates{err: core.NewUnavailableError("exchangerate-api", "down", nil)}
	f, store := newTestFetcher(t, rates, &stubQuotes{})

	// Seed an already-expired entry that the sweep has not evicted yet.
	stale := []core.ExchangeRate{{Currency: "EUR", Rate: 0.9999}}
	data, _ := json.Marshal(stale)
	store.Set("exchange_rates_USD", data, time.Nanosecond)
	time.Sleep(time.Millisecond)

	got, err := f.ExchangeRates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("ExchangeRates: %v", err)
	}
	if len(got) != 1 || got[0].Rate != 0.9999 {
		t.Errorf("expected the stale value, got %+v", got)
	}
}

func TestSyntheticRatesWhenNothingCached(t *testing.T) {
	rates := &stubRates{err: core.NewUnavailableError("exchangerate-api", "down", nil)}
	f, _ := newTestFetcher(t, rates, &stubQuotes{})

	got, err := f.ExchangeRates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("ExchangeRates: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("synthetic set has %d currencies, want 4", len(got))
	}
	if got[0].Currency != "EUR" {
		t.Errorf("first synthetic currency = %q, want EUR", got[0].Currency)
	}
}

func TestInvalidSymbolServesPlaceholder(t *testing.T) {
	quotes := &stubQuotes{err: core.NewInvalidSymbolError("alphavantage", "INVALID")}
	f, _ := newTestFetcher(t, &stubRates{}, quotes)

	got, err := f.StockQuote(context.Background(), "INVALID")
	if err != nil {
		t.Fatalf("StockQuote: %v", err)
	}
	if got.Symbol != "INVALID" {
		t.Errorf("symbol = %q, want INVALID", got.Symbol)
	}
	if got.CurrentPrice <= 0 {
		t.Errorf("placeholder price = %v, want positive", got.CurrentPrice)
	}
}

func TestStaleQuotePreferredOverPlaceholder(t *testing.T) {
	quotes := &stubQuotes{err: core.NewRateLimitedError("alphavantage", "throttled")}
	f, store := newTestFetcher(t, &stubRates{}, quotes)

	stale := core.StockQuote{Symbol: "AAPL", CurrentPrice: 175.43}
	data, _ := json.Marshal(stale)
	store.Set("stock_AAPL", data, time.Nanosecond)
	time.Sleep(time.Millisecond)

	got, err := f.StockQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("StockQuote: %v", err)
	}
	if got.CurrentPrice != 175.43 {
		t.Errorf("expected stale quote, got %+v", got)
	}
}

func TestQuoteTTLPolicy(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want time.Duration
	}{
		{
			name: "weekday during market hours",
			at:   time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC), // Monday
			want: quoteTTLMarketHours,
		},
		{
			name: "weekday after close",
			at:   time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC),
			want: quoteTTLClosed,
		},
		{
			name: "weekday before open",
			at:   time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC),
			want: quoteTTLClosed,
		},
		{
			name: "saturday midday",
			at:   time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC),
			want: quoteTTLClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFetcher(t, &stubRates{}, &stubQuotes{})
			f.now = func() time.Time { return tt.at }

			if got := f.quoteTTL(); got != tt.want {
				t.Errorf("quoteTTL at %v = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestPortfolioFetchesAllSymbols(t *testing.T) {
	quotes := &stubQuotes{quote: core.StockQuote{Symbol: "X", CurrentPrice: 10}}
	f, _ := newTestFetcher(t, &stubRates{}, quotes)

	got, err := f.Portfolio(context.Background(), []string{"AAPL", "GOOGL", "MSFT"})
	if err != nil {
		t.Fatalf("Portfolio: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d quotes, want 3", len(got))
	}
}

func TestPortfolioDropsFailedSymbols(t *testing.T) {
	f, _ := newTestFetcher(t, &stubRates{}, &stubQuotes{})

	// Force symbol B's whole pipeline to fail; the batch must drop it
	// and still return A.
	f.fetchQuote = func(ctx context.Context, symbol string) (core.StockQuote, error) {
		if symbol == "B" {
			return core.StockQuote{}, core.NewUnavailableError("alphavantage", "forced failure", nil)
		}
		return core.StockQuote{Symbol: symbol, CurrentPrice: 1}, nil
	}

	got, err := f.Portfolio(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("Portfolio: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "A" {
		t.Errorf("got %+v, want only A", got)
	}
}

func TestInvalidateScopes(t *testing.T) {
	f, store := newTestFetcher(t, &stubRates{}, &stubQuotes{})

	store.Set("exchange_rates_USD", []byte("[]"), time.Minute)
	store.Set("stock_AAPL", []byte("{}"), time.Minute)

	f.InvalidateRates()
	if store.Has("exchange_rates_USD") {
		t.Error("rates entry should be gone")
	}
	if !store.Has("stock_AAPL") {
		t.Error("quote entry should survive rates invalidation")
	}

	f.InvalidateQuotes()
	if store.Has("stock_AAPL") {
		t.Error("quote entry should be gone")
	}
}
