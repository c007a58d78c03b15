// Package market implements the cache-aside fetch protocol for market data:
// cache lookup, upstream call, stale fallback, synthetic fallback. Every
// request terminates successfully with live, stale, or placeholder data.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"findash/internal/cache"
	"findash/internal/core"
	"findash/internal/observability"
)

const (
	// ratesTTL applies to exchange rate entries unconditionally.
	ratesTTL = time.Hour

	// quoteTTLMarketHours applies to quotes while the market is open;
	// quoteTTLClosed applies outside the trading window.
	quoteTTLMarketHours = 5 * time.Minute
	quoteTTLClosed      = time.Hour
)

// Fetcher implements core.MarketData on top of a cache.Store and the two
// upstream providers.
type Fetcher struct {
	store   cache.Store
	rates   core.RatesProvider
	quotes  core.QuotesProvider
	metrics *observability.Metrics

	// now is injectable for TTL-policy tests.
	now func() time.Time

	// fetchQuote is the per-symbol pipeline used by Portfolio; replaced
	// in tests to exercise the batch drop-on-failure path.
	fetchQuote func(ctx context.Context, symbol string) (core.StockQuote, error)
}

// NewFetcher wires a Fetcher. The store is owned by the caller; the
// Fetcher never closes it.
func NewFetcher(store cache.Store, rates core.RatesProvider, quotes core.QuotesProvider, metrics *observability.Metrics) *Fetcher {
	f := &Fetcher{
		store:   store,
		rates:   rates,
		quotes:  quotes,
		metrics: metrics,
		now:     time.Now,
	}
	f.fetchQuote = f.StockQuote
	return f
}

// ExchangeRates returns rates for the base currency, preferring a fresh
// cache entry, then the upstream, then a stale entry, then a synthetic set.
func (f *Fetcher) ExchangeRates(ctx context.Context, base string) ([]core.ExchangeRate, error) {
	key := RatesKey(base)

	if data, ok := f.store.Get(key); ok {
		f.metrics.CacheHits.Inc()
		var rates []core.ExchangeRate
		if err := json.Unmarshal(data, &rates); err == nil {
			return rates, nil
		}
		slog.Warn("discarding corrupt cache entry", "key", key)
	} else {
		f.metrics.CacheMisses.Inc()
	}

	rates, err := f.rates.FetchRates(ctx, base)
	if err == nil {
		f.metrics.UpstreamRequests.WithLabelValues("exchangerate", observability.OutcomeSuccess).Inc()
		f.cachePut(key, rates, ratesTTL)
		slog.Info("fetched exchange rates", "base", base, "currencies", len(rates))
		return rates, nil
	}

	f.recordUpstreamFailure("exchangerate", err)
	slog.Warn("exchange rate fetch failed", "base", base, "error", err)

	if data, ok := f.store.GetStale(key); ok {
		var stale []core.ExchangeRate
		if jsonErr := json.Unmarshal(data, &stale); jsonErr == nil {
			f.metrics.Fallbacks.WithLabelValues(observability.FallbackStale).Inc()
			slog.Warn("serving stale exchange rates", "base", base)
			return stale, nil
		}
	}

	f.metrics.Fallbacks.WithLabelValues(observability.FallbackSynthetic).Inc()
	slog.Warn("serving synthetic exchange rates", "base", base)
	return syntheticRates(f.now()), nil
}

// StockQuote returns a quote for the symbol via the same four-step protocol.
func (f *Fetcher) StockQuote(ctx context.Context, symbol string) (core.StockQuote, error) {
	key := QuoteKey(symbol)

	if data, ok := f.store.Get(key); ok {
		f.metrics.CacheHits.Inc()
		var quote core.StockQuote
		if err := json.Unmarshal(data, &quote); err == nil {
			return quote, nil
		}
		slog.Warn("discarding corrupt cache entry", "key", key)
	} else {
		f.metrics.CacheMisses.Inc()
	}

	quote, err := f.quotes.FetchQuote(ctx, symbol)
	if err == nil {
		f.metrics.UpstreamRequests.WithLabelValues("alphavantage", observability.OutcomeSuccess).Inc()
		f.cachePut(key, quote, f.quoteTTL())
		slog.Info("fetched stock quote", "symbol", symbol, "price", quote.CurrentPrice)
		return quote, nil
	}

	f.recordUpstreamFailure("alphavantage", err)
	slog.Warn("stock quote fetch failed", "symbol", symbol, "error", err)

	if data, ok := f.store.GetStale(key); ok {
		var stale core.StockQuote
		if jsonErr := json.Unmarshal(data, &stale); jsonErr == nil {
			f.metrics.Fallbacks.WithLabelValues(observability.FallbackStale).Inc()
			slog.Warn("serving stale stock quote", "symbol", symbol)
			return stale, nil
		}
	}

	f.metrics.Fallbacks.WithLabelValues(observability.FallbackSynthetic).Inc()
	slog.Warn("serving synthetic stock quote", "symbol", symbol)
	return syntheticQuote(symbol, f.now()), nil
}

// Portfolio fetches all symbols in parallel. The single-symbol pipeline is
// designed never to fail, but a failed leg is still dropped defensively
// rather than failing the batch.
func (f *Fetcher) Portfolio(ctx context.Context, symbols []string) ([]core.StockQuote, error) {
	results := make([]*core.StockQuote, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			quote, err := f.fetchQuote(ctx, symbol)
			if err != nil {
				slog.Warn("dropping symbol from portfolio", "symbol", symbol, "error", err)
				return
			}
			results[i] = &quote
		}(i, symbol)
	}
	wg.Wait()

	quotes := make([]core.StockQuote, 0, len(symbols))
	for _, q := range results {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	return quotes, nil
}

// InvalidateRates force-expires every cached exchange rate entry.
func (f *Fetcher) InvalidateRates() {
	f.store.Invalidate(ratesKeyPrefix)
	f.syncKeyGauge()
}

// InvalidateQuotes force-expires every cached stock quote entry.
func (f *Fetcher) InvalidateQuotes() {
	f.store.Invalidate(quoteKeyPrefix)
	f.syncKeyGauge()
}

// quoteTTL returns the stock quote TTL for the current wall-clock time:
// short during market hours, long otherwise. Market hours are approximated
// as weekday local hours 9 through 16, with no timezone or holiday
// awareness (a documented simplification, not a bug).
func (f *Fetcher) quoteTTL() time.Duration {
	if isMarketHours(f.now()) {
		return quoteTTLMarketHours
	}
	return quoteTTLClosed
}

func isMarketHours(t time.Time) bool {
	day := t.Weekday()
	hour := t.Hour()
	return day >= time.Monday && day <= time.Friday && hour >= 9 && hour <= 16
}

// cachePut marshals v and writes it through to the store. Failures are
// logged and swallowed: a cache problem must never break the fetch path.
func (f *Fetcher) cachePut(key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal cache value", "key", key, "error", err)
		return
	}
	f.store.Set(key, data, ttl)
	f.syncKeyGauge()
}

func (f *Fetcher) syncKeyGauge() {
	f.metrics.CacheKeys.Set(float64(f.store.Stats().Keys))
}

func (f *Fetcher) recordUpstreamFailure(provider string, err error) {
	outcome := observability.OutcomeUnavailable
	var upErr *core.UpstreamError
	if errors.As(err, &upErr) {
		switch upErr.Kind {
		case core.KindInvalidSymbol:
			outcome = observability.OutcomeInvalid
		case core.KindRateLimited:
			outcome = observability.OutcomeRateLimited
		}
	}
	f.metrics.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
}
