// Package format renders money and percentages for the terminal views.
package format

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is given
const DefaultCurrency = money.USD

// Currency formats amount in the given ISO currency, rounded to the
// currency's minor unit. Unknown currencies fall back to a plain decimal.
func Currency(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

// USD formats amount in US dollars
func USD(amount decimal.Decimal) string {
	return Currency(amount, DefaultCurrency)
}

// SignedUSD prefixes non-negative amounts with "+"
func SignedUSD(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return USD(amount)
	}
	return "+" + USD(amount)
}

// Percent formats p (already scaled to 0–100) with two decimals
func Percent(p decimal.Decimal) string {
	return fmt.Sprintf("%s%%", p.StringFixed(2))
}

// SignedPercent prefixes non-negative percentages with "+"
func SignedPercent(p decimal.Decimal) string {
	if p.IsNegative() {
		return Percent(p)
	}
	return "+" + Percent(p)
}
