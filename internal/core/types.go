// Package core provides shared types and interfaces for the finance dashboard API.
package core

import "time"

// ExchangeRate is a single currency rate relative to a base currency.
type ExchangeRate struct {
	Currency    string    `json:"currency"`
	Rate        float64   `json:"rate"`
	Change24h   float64   `json:"change24h"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// StockQuote is a single equity quote.
type StockQuote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	CurrentPrice  float64   `json:"currentPrice"`
	PreviousClose float64   `json:"previousClose"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// TransactionType classifies the direction of a transaction.
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// TransactionCategory is the closed set of spending categories.
type TransactionCategory string

const (
	CategoryFood          TransactionCategory = "food"
	CategoryTransport     TransactionCategory = "transport"
	CategoryEntertainment TransactionCategory = "entertainment"
	CategoryUtilities     TransactionCategory = "utilities"
	CategorySalary        TransactionCategory = "salary"
	CategoryInvestment    TransactionCategory = "investment"
	CategoryOther         TransactionCategory = "other"
)

// ValidType reports whether s is a recognized transaction type.
func ValidType(s string) bool {
	switch TransactionType(s) {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// ValidCategory reports whether s is a recognized transaction category.
func ValidCategory(s string) bool {
	switch TransactionCategory(s) {
	case CategoryFood, CategoryTransport, CategoryEntertainment,
		CategoryUtilities, CategorySalary, CategoryInvestment, CategoryOther:
		return true
	}
	return false
}

// Transaction is a single ledger entry. Amounts are signed: expenses are negative.
type Transaction struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	Date        time.Time           `json:"date"`
	Amount      float64             `json:"amount"`
	Description string              `json:"description"`
	Category    TransactionCategory `json:"category"`
	Type        TransactionType     `json:"type"`
	Currency    string              `json:"currency"`
}

// FinancialSummary holds the derived totals shown on the dashboard.
type FinancialSummary struct {
	TotalBalance    float64   `json:"totalBalance"`
	PortfolioValue  float64   `json:"portfolioValue"`
	MonthlyIncome   float64   `json:"monthlyIncome"`
	MonthlyExpenses float64   `json:"monthlyExpenses"`
	MonthlyChange   float64   `json:"monthlyChange"`
	Currency        string    `json:"currency"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// DashboardData is the aggregate payload for GET /api/dashboard.
type DashboardData struct {
	Summary            FinancialSummary `json:"summary"`
	ExchangeRates      []ExchangeRate   `json:"exchangeRates"`
	RecentTransactions []Transaction    `json:"recentTransactions"`
}

// APIError is the error half of the response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// APIResponse is the uniform envelope returned by every endpoint.
type APIResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OK wraps data in a successful envelope.
func OK(data any) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Fail builds a failed envelope with the given error code and message.
func Fail(code, message string) APIResponse {
	return APIResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message},
		Timestamp: time.Now(),
	}
}
