package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseSummary is the header of the expense tracker
type ExpenseSummary struct {
	Total     decimal.Decimal `json:"total"`
	ThisMonth decimal.Decimal `json:"this_month"`
	Count     int             `json:"count"`
}

// SummarizeExpenses totals expenses overall and for the calendar month of now
func SummarizeExpenses(expenses []Expense, now time.Time) ExpenseSummary {
	s := ExpenseSummary{Total: decimal.Zero, ThisMonth: decimal.Zero, Count: len(expenses)}
	for _, e := range expenses {
		s.Total = s.Total.Add(e.Amount)
		if e.Date.Year() == now.Year() && e.Date.Month() == now.Month() {
			s.ThisMonth = s.ThisMonth.Add(e.Amount)
		}
	}
	return s
}

// NewestFirst returns a copy sorted by date, latest first. Expenses on the
// same date keep their relative order.
func NewestFirst(expenses []Expense) []Expense {
	out := make([]Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// CategoryShare is one slice of the spending breakdown
type CategoryShare struct {
	BudgetID string          `json:"budget_id"`
	Category string          `json:"category"`
	Spent    decimal.Decimal `json:"spent"`
	Percent  decimal.Decimal `json:"percent"`
}

// CategoryShares splits total spending across budgets that have any
func CategoryShares(budgets []Budget) []CategoryShare {
	total := Aggregates(budgets).TotalSpent

	out := []CategoryShare{}
	for _, b := range budgets {
		if !b.Spent.IsPositive() {
			continue
		}
		out = append(out, CategoryShare{
			BudgetID: b.ID,
			Category: b.Category,
			Spent:    b.Spent,
			Percent:  b.Spent.Div(total).Mul(hundred).Round(2),
		})
	}
	return out
}
