package market

import (
	"math/rand/v2"
	"time"

	"findash/internal/core"
)

// syntheticRates is the placeholder rate set served when neither the
// upstream nor a stale cache entry can produce data. Kept at the original
// four currencies even though the live path targets six; existing clients
// expect this shape.
func syntheticRates(now time.Time) []core.ExchangeRate {
	return []core.ExchangeRate{
		{Currency: "EUR", Rate: 0.8456, Change24h: -0.12, LastUpdated: now},
		{Currency: "GBP", Rate: 0.7834, Change24h: 0.08, LastUpdated: now},
		{Currency: "JPY", Rate: 149.23, Change24h: -0.34, LastUpdated: now},
		{Currency: "CAD", Rate: 1.3456, Change24h: 0.15, LastUpdated: now},
	}
}

// syntheticQuote builds a randomized but schema-valid placeholder quote
// for the requested symbol. The price is always positive.
func syntheticQuote(symbol string, now time.Time) core.StockQuote {
	return core.StockQuote{
		Symbol:        symbol,
		Name:          symbol + " Inc.",
		CurrentPrice:  rand.Float64()*200 + 50,
		PreviousClose: rand.Float64()*200 + 50,
		Change:        (rand.Float64() - 0.5) * 10,
		ChangePercent: (rand.Float64() - 0.5) * 5,
		Volume:        rand.Int64N(10_000_000),
		LastUpdated:   now,
	}
}
