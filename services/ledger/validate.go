package ledger

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalid marks input rejected before it reaches the ledger
	ErrInvalid = errors.New("invalid ledger input")
	// ErrNotFound marks an unknown budget, expense or holding id
	ErrNotFound = errors.New("ledger entry not found")
)

// ValidateBudget checks a new budget
func ValidateBudget(category string, limit decimal.Decimal, month time.Month, year int) error {
	if strings.TrimSpace(category) == "" {
		return errors.Wrap(ErrInvalid, "category is required")
	}
	if limit.IsNegative() {
		return errors.Wrapf(ErrInvalid, "limit %s is negative", limit)
	}
	if month < time.January || month > time.December {
		return errors.Wrapf(ErrInvalid, "month %d out of range", month)
	}
	if year < 1 {
		return errors.Wrapf(ErrInvalid, "year %d out of range", year)
	}
	return nil
}

// ValidateExpense checks a new expense
func ValidateExpense(amount decimal.Decimal, category string) error {
	if !amount.IsPositive() {
		return errors.Wrapf(ErrInvalid, "amount %s must be positive", amount)
	}
	if strings.TrimSpace(category) == "" {
		return errors.Wrap(ErrInvalid, "category is required")
	}
	return nil
}

// ValidateHolding checks a new position
func ValidateHolding(symbol string, shares, averageCost decimal.Decimal) error {
	if strings.TrimSpace(symbol) == "" {
		return errors.Wrap(ErrInvalid, "symbol is required")
	}
	if !shares.IsPositive() {
		return errors.Wrapf(ErrInvalid, "shares %s must be positive", shares)
	}
	if averageCost.IsNegative() {
		return errors.Wrapf(ErrInvalid, "average cost %s is negative", averageCost)
	}
	return nil
}
