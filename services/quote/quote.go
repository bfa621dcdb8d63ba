// Package quote resolves ticker symbols to normalized quotes and price
// history. Lookups walk a fallback chain: the WealthWatch backend, then
// Alpha Vantage, then a synthetic generator seeded from a static table.
package quote

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies the tier that produced a record
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "alphavantage"
	SourceSynthetic Source = "synthetic"
)

// Quote is a normalized price snapshot for an equity, index or crypto asset
type Quote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Volume        int64           `json:"volume,omitempty"`
	Timestamp     time.Time       `json:"last_updated"`
	Source        Source          `json:"source"`
}

// PreviousClose is the price the change is measured against
func (q Quote) PreviousClose() decimal.Decimal {
	return q.Price.Sub(q.Change)
}

// Point is one daily bar of a historical series
type Point struct {
	Date             time.Time       `json:"date"`
	Open             decimal.Decimal `json:"open"`
	High             decimal.Decimal `json:"high"`
	Low              decimal.Decimal `json:"low"`
	Close            decimal.Decimal `json:"close"`
	Volume           int64           `json:"volume"`
	DayChange        decimal.Decimal `json:"day_change"`
	DayChangePercent decimal.Decimal `json:"day_change_percent"`
	RSI              *float64        `json:"rsi,omitempty"`
}

// HistoricalSeries holds points in ascending date order
type HistoricalSeries struct {
	Symbol string  `json:"symbol"`
	Period Period  `json:"period"`
	Points []Point `json:"data"`
	Source Source  `json:"source"`
}

// HoldingsSummary is the backend's per-user portfolio rollup
type HoldingsSummary struct {
	TotalValue           decimal.Decimal `json:"total_value"`
	TotalGainLoss        decimal.Decimal `json:"total_gain_loss"`
	TotalGainLossPercent decimal.Decimal `json:"total_gain_loss_percent"`
	TotalInvested        decimal.Decimal `json:"total_invested"`
	HoldingsCount        int             `json:"holdings_count"`
}

// Account is one of a user's cash accounts at the backend
type Account struct {
	ID          string          `json:"id,omitempty"`
	UserID      string          `json:"user_id,omitempty"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency,omitempty"`
	LastUpdated string          `json:"last_updated,omitempty"`
}

// RemoteHolding is a position the backend keeps for a user. It is
// separate from the local ledger's holdings.
type RemoteHolding struct {
	ID              string          `json:"id,omitempty"`
	UserID          string          `json:"user_id"`
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name,omitempty"`
	Shares          decimal.Decimal `json:"shares"`
	AverageCost     decimal.Decimal `json:"average_cost"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	TotalValue      decimal.Decimal `json:"total_value"`
	GainLoss        decimal.Decimal `json:"gain_loss"`
	GainLossPercent decimal.Decimal `json:"gain_loss_percent"`
	LastUpdated     string          `json:"last_updated,omitempty"`
}

// SymbolMatch is one symbol search result
type SymbolMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Region string `json:"region"`
}

// MaxSearchResults caps every symbol search
const MaxSearchResults = 5

// AccountsSummary is the backend's per-user cash rollup
type AccountsSummary struct {
	TotalBalance  decimal.Decimal `json:"total_balance"`
	AccountsCount int             `json:"accounts_count"`
	Accounts      []Account       `json:"accounts"`
}

// CanonicalSymbol trims and uppercases a ticker
func CanonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// CryptoSymbol spells a coin the way quote lookups expect, BTC as BTC-USD
func CryptoSymbol(symbol string) string {
	sym := CanonicalSymbol(symbol)
	if sym == "" || strings.HasSuffix(sym, "-USD") {
		return sym
	}
	return sym + "-USD"
}

var hundred = decimal.NewFromInt(100)

// percentOf returns change relative to the previous close (price - change)
// as a percentage rounded to two places; zero when there is no base.
func percentOf(price, change decimal.Decimal) decimal.Decimal {
	base := price.Sub(change)
	if base.IsZero() {
		return decimal.Zero
	}
	return change.Div(base).Mul(hundred).Round(2)
}
