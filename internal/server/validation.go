package server

import (
	"errors"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"findash/internal/core"
	"findash/internal/transactions"
)

// supportedCurrencies are the base currencies the rate endpoint accepts.
var supportedCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CAD": true, "AUD": true, "CHF": true, "CNY": true,
}

// symbolPattern matches 1-5 uppercase letters.
var symbolPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

func validCurrency(code string) bool {
	return supportedCurrencies[code]
}

func validSymbol(symbol string) bool {
	return symbolPattern.MatchString(symbol)
}

// dateLayouts accepted by the transaction date filters.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("invalid date: " + s)
}

// parseTransactionFilter validates the query parameters and builds the
// explicit filter struct. Unknown enum values are rejected here, before
// the transaction store is consulted.
func parseTransactionFilter(c echo.Context) (transactions.Filter, error) {
	var f transactions.Filter

	if category := c.QueryParam("category"); category != "" {
		if !core.ValidCategory(category) {
			return f, errors.New("unknown transaction category: " + category)
		}
		f.Category = core.TransactionCategory(category)
	}

	if typ := c.QueryParam("type"); typ != "" {
		if !core.ValidType(typ) {
			return f, errors.New("unknown transaction type: " + typ)
		}
		f.Type = core.TransactionType(typ)
	}

	f.Search = c.QueryParam("search")

	if from := c.QueryParam("dateFrom"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			return f, err
		}
		f.DateFrom = t
	}

	if to := c.QueryParam("dateTo"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			return f, err
		}
		f.DateTo = t
	}

	return f, nil
}
