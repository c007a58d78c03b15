// Package transactions serves the static mock transaction table. There is
// no real transaction source: records are hard-coded and filtered in
// memory, never persisted or mutated.
package transactions

import (
	"sort"
	"strings"
	"time"

	"findash/internal/core"
)

// Filter enumerates the recognized transaction query fields. Zero values
// mean "no constraint". Enum fields are validated at the HTTP boundary,
// not here.
type Filter struct {
	Category core.TransactionCategory
	Type     core.TransactionType
	Search   string
	DateFrom time.Time
	DateTo   time.Time
}

// Store holds the static transaction table.
type Store struct {
	records []core.Transaction
}

// NewStore creates a store populated with the mock ledger.
func NewStore() *Store {
	return &Store{records: mockLedger()}
}

// List returns the transactions matching the filter, newest first.
func (s *Store) List(f Filter) []core.Transaction {
	out := make([]core.Transaction, 0, len(s.records))
	for _, t := range s.records {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Summary derives dashboard totals from the full ledger. PortfolioValue is
// computed client-side from the selected stocks and stays zero here;
// MonthlyChange is a fixed placeholder.
func (s *Store) Summary() core.FinancialSummary {
	var income, expenses float64
	for _, t := range s.records {
		switch t.Type {
		case core.TypeIncome:
			income += t.Amount
		case core.TypeExpense:
			if t.Amount < 0 {
				expenses += -t.Amount
			} else {
				expenses += t.Amount
			}
		}
	}

	return core.FinancialSummary{
		TotalBalance:    income - expenses,
		PortfolioValue:  0,
		MonthlyIncome:   income,
		MonthlyExpenses: expenses,
		MonthlyChange:   2.4,
		Currency:        "USD",
		LastUpdated:     time.Now(),
	}
}

func matches(t core.Transaction, f Filter) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(string(t.Category)), needle) {
			return false
		}
	}
	if !f.DateFrom.IsZero() && t.Date.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && t.Date.After(f.DateTo) {
		return false
	}
	return true
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mockLedger() []core.Transaction {
	return []core.Transaction{
		{
			ID:          "1",
			UserID:      "user1",
			Date:        day(2025, time.January, 8),
			Amount:      8500.00,
			Description: "Monthly Salary",
			Category:    core.CategorySalary,
			Type:        core.TypeIncome,
			Currency:    "USD",
		},
		{
			ID:          "2",
			UserID:      "user1",
			Date:        day(2025, time.January, 7),
			Amount:      -85.50,
			Description: "Grocery Shopping - Whole Foods",
			Category:    core.CategoryFood,
			Type:        core.TypeExpense,
			Currency:    "USD",
		},
		{
			ID:          "3",
			UserID:      "user1",
			Date:        day(2025, time.January, 6),
			Amount:      -45.00,
			Description: "Gas Station Fill-up",
			Category:    core.CategoryTransport,
			Type:        core.TypeExpense,
			Currency:    "USD",
		},
		{
			ID:          "4",
			UserID:      "user1",
			Date:        day(2025, time.January, 5),
			Amount:      -1200.00,
			Description: "Monthly Rent Payment",
			Category:    core.CategoryUtilities,
			Type:        core.TypeExpense,
			Currency:    "USD",
		},
		{
			ID:          "5",
			UserID:      "user1",
			Date:        day(2025, time.January, 4),
			Amount:      -25.99,
			Description: "Netflix Subscription",
			Category:    core.CategoryEntertainment,
			Type:        core.TypeExpense,
			Currency:    "USD",
		},
		{
			ID:          "6",
			UserID:      "user1",
			Date:        day(2025, time.January, 3),
			Amount:      2500.00,
			Description: "Stock Investment - AAPL",
			Category:    core.CategoryInvestment,
			Type:        core.TypeTransfer,
			Currency:    "USD",
		},
		{
			ID:          "7",
			UserID:      "user1",
			Date:        day(2025, time.January, 2),
			Amount:      -67.89,
			Description: "Restaurant Dinner",
			Category:    core.CategoryFood,
			Type:        core.TypeExpense,
			Currency:    "USD",
		},
		{
			ID:          "8",
			UserID:      "user1",
			Date:        day(2025, time.January, 1),
			Amount:      -150.00,
			Description: "Electric Bill",
			Category:    core.CategoryUtilities,
			Type:        core.TypeExpense,
			Currency:    "USD",
		},
	}
}
