package core

import "context"

// MarketData is the surface the HTTP handlers consume. The fetch
// orchestrator guarantees that every call produces schema-valid data
// (live, stale, or placeholder); returned errors are defensive only.
type MarketData interface {
	// ExchangeRates returns rates for the given base currency.
	ExchangeRates(ctx context.Context, base string) ([]ExchangeRate, error)

	// StockQuote returns a single quote for the given symbol.
	StockQuote(ctx context.Context, symbol string) (StockQuote, error)

	// Portfolio fetches quotes for all symbols in parallel. A symbol whose
	// fetch fails is dropped from the result rather than failing the batch.
	Portfolio(ctx context.Context, symbols []string) ([]StockQuote, error)

	// InvalidateRates forces a refresh of all cached exchange rates.
	InvalidateRates()

	// InvalidateQuotes forces a refresh of all cached stock quotes.
	InvalidateQuotes()
}

// RatesProvider fetches currency exchange rates from an upstream source.
type RatesProvider interface {
	FetchRates(ctx context.Context, base string) ([]ExchangeRate, error)
}

// QuotesProvider fetches stock quotes from an upstream source.
type QuotesProvider interface {
	FetchQuote(ctx context.Context, symbol string) (StockQuote, error)
}
