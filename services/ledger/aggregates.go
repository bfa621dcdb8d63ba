package ledger

import (
	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	nearLimitRatio = decimal.RequireFromString("0.8")
)

// Totals sums a set of budgets. TotalRemaining may be negative.
type Totals struct {
	TotalBudget    decimal.Decimal `json:"total_budget"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
}

// Aggregates totals limits and spending across budgets
func Aggregates(budgets []Budget) Totals {
	t := Totals{TotalBudget: decimal.Zero, TotalSpent: decimal.Zero}
	for _, b := range budgets {
		t.TotalBudget = t.TotalBudget.Add(b.Limit)
		t.TotalSpent = t.TotalSpent.Add(b.Spent)
	}
	t.TotalRemaining = t.TotalBudget.Sub(t.TotalSpent)
	return t
}

// PortfolioTotals sums a set of holdings
type PortfolioTotals struct {
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalGainLoss   decimal.Decimal `json:"total_gain_loss"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
	GainLossPercent decimal.Decimal `json:"gain_loss_percent"`
}

// PortfolioAggregates totals holdings. GainLossPercent is zero when nothing
// is invested.
func PortfolioAggregates(holdings []Holding) PortfolioTotals {
	t := PortfolioTotals{
		TotalValue:      decimal.Zero,
		TotalGainLoss:   decimal.Zero,
		TotalInvested:   decimal.Zero,
		GainLossPercent: decimal.Zero,
	}
	for _, h := range holdings {
		t.TotalValue = t.TotalValue.Add(h.TotalValue)
		t.TotalGainLoss = t.TotalGainLoss.Add(h.GainLoss)
		t.TotalInvested = t.TotalInvested.Add(h.Invested())
	}
	if !t.TotalInvested.IsZero() {
		t.GainLossPercent = t.TotalGainLoss.Div(t.TotalInvested).Mul(hundred)
	}
	return t
}

// Status classifies a budget's spending against its limit
type Status string

const (
	StatusOK        Status = "ok"
	StatusNearLimit Status = "near_limit"
	StatusOver      Status = "over_budget"
)

// Remaining is limit minus spent, negative when over budget
func (b Budget) Remaining() decimal.Decimal {
	return b.Limit.Sub(b.Spent)
}

// Utilization is spent as a percentage of the limit, zero without a limit
func (b Budget) Utilization() decimal.Decimal {
	if !b.Limit.IsPositive() {
		return decimal.Zero
	}
	return b.Spent.Div(b.Limit).Mul(hundred)
}

// OverBudget holds when the limit is positive and spending exceeds it.
// The classifiers compare amounts directly; a quotient would be rounded.
func (b Budget) OverBudget() bool {
	return b.Limit.IsPositive() && b.Spent.GreaterThan(b.Limit)
}

// NearLimit holds when spending is above 80% of a positive limit without
// exceeding it
func (b Budget) NearLimit() bool {
	return b.Limit.IsPositive() &&
		b.Spent.GreaterThan(b.Limit.Mul(nearLimitRatio)) &&
		b.Spent.LessThanOrEqual(b.Limit)
}

// Status returns the budget's classification
func (b Budget) Status() Status {
	switch {
	case b.OverBudget():
		return StatusOver
	case b.NearLimit():
		return StatusNearLimit
	default:
		return StatusOK
	}
}
