package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"findash/internal/core"
	"findash/internal/transactions"
)

// TransactionSource is the transaction collaborator the handlers consume.
type TransactionSource interface {
	List(transactions.Filter) []core.Transaction
	Summary() core.FinancialSummary
}

// recentTransactionCount is how many ledger entries the dashboard shows.
const recentTransactionCount = 10

// Handler holds the HTTP handlers.
type Handler struct {
	market  core.MarketData
	txns    TransactionSource
	started time.Time
}

// NewHandler creates a new handler with the given collaborators.
func NewHandler(market core.MarketData, txns TransactionSource) *Handler {
	return &Handler{
		market:  market,
		txns:    txns,
		started: time.Now(),
	}
}

// Health handles GET /health.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, core.OK(map[string]any{
		"message": "Finance Dashboard API is running",
		"uptime":  time.Since(h.started).Seconds(),
	}))
}

// Index handles GET /api.
func (h *Handler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, core.OK(map[string]any{
		"message": "Finance Dashboard API v1.0",
		"endpoints": []string{
			"GET /health - Health check",
			"GET /api/dashboard - Dashboard data",
			"GET /api/exchange-rates?base=USD - Currency exchange rates",
			"GET /api/portfolio?symbols=AAPL,GOOGL - Portfolio data",
			"GET /api/stock/:symbol - Individual stock data",
			"GET /api/transactions?category=&search= - Transaction history",
		},
	}))
}

// ExchangeRates handles GET /api/exchange-rates?base=<CUR>.
func (h *Handler) ExchangeRates(c echo.Context) error {
	base := strings.ToUpper(strings.TrimSpace(c.QueryParam("base")))
	if base == "" {
		base = "USD"
	}
	if !validCurrency(base) {
		return c.JSON(http.StatusBadRequest, core.Fail(
			core.CodeValidationError, "unsupported base currency: "+base,
		))
	}

	rates, err := h.market.ExchangeRates(c.Request().Context(), base)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, core.OK(rates))
}

// Stock handles GET /api/stock/:symbol.
func (h *Handler) Stock(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if !validSymbol(symbol) {
		return c.JSON(http.StatusBadRequest, core.Fail(
			core.CodeValidationError, "invalid stock symbol: "+c.Param("symbol"),
		))
	}

	quote, err := h.market.StockQuote(c.Request().Context(), symbol)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, core.OK(quote))
}

// Portfolio handles GET /api/portfolio?symbols=A,B,C.
func (h *Handler) Portfolio(c echo.Context) error {
	raw := c.QueryParam("symbols")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, core.Fail(
			core.CodeMissingSymbols,
			"Stock symbols are required. Use ?symbols=AAPL,GOOGL,MSFT",
		))
	}

	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return c.JSON(http.StatusBadRequest, core.Fail(
			core.CodeMissingSymbols,
			"Stock symbols are required. Use ?symbols=AAPL,GOOGL,MSFT",
		))
	}

	quotes, err := h.market.Portfolio(c.Request().Context(), symbols)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, core.OK(quotes))
}

// Transactions handles GET /api/transactions with the recognized filters.
func (h *Handler) Transactions(c echo.Context) error {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, core.Fail(core.CodeValidationError, err.Error()))
	}

	return c.JSON(http.StatusOK, core.OK(h.txns.List(filter)))
}

// Dashboard handles GET /api/dashboard: exchange rates and the transaction
// summary fetched concurrently, plus the most recent ledger entries.
func (h *Handler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		wg    sync.WaitGroup
		rates []core.ExchangeRate
		txns  []core.Transaction
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rates, _ = h.market.ExchangeRates(ctx, "USD")
	}()
	go func() {
		defer wg.Done()
		txns = h.txns.List(transactions.Filter{})
	}()
	wg.Wait()

	recent := txns
	if len(recent) > recentTransactionCount {
		recent = recent[:recentTransactionCount]
	}

	return c.JSON(http.StatusOK, core.OK(core.DashboardData{
		Summary:            h.txns.Summary(),
		ExchangeRates:      rates,
		RecentTransactions: recent,
	}))
}

// CacheInvalidate handles POST /api/cache/invalidate?scope=rates|quotes,
// forcing a refresh of a resource family.
func (h *Handler) CacheInvalidate(c echo.Context) error {
	scope := c.QueryParam("scope")
	switch scope {
	case "rates":
		h.market.InvalidateRates()
	case "quotes":
		h.market.InvalidateQuotes()
	default:
		return c.JSON(http.StatusBadRequest, core.Fail(
			core.CodeValidationError, "scope must be 'rates' or 'quotes'",
		))
	}

	return c.JSON(http.StatusOK, core.OK(map[string]string{"invalidated": scope}))
}
