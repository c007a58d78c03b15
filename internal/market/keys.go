package market

const (
	ratesKeyPrefix = "exchange_rates_"
	quoteKeyPrefix = "stock_"
)

// RatesKey builds the cache key for exchange rates with the given base
// currency. Key construction is a pure function of the resource identity
// so repeated requests collide on the same entry.
func RatesKey(base string) string {
	return ratesKeyPrefix + base
}

// QuoteKey builds the cache key for a stock quote.
func QuoteKey(symbol string) string {
	return quoteKeyPrefix + symbol
}
