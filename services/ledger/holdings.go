package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a stock position. Value and gain figures follow CurrentPrice
// and are recomputed whenever it changes.
type Holding struct {
	ID              string          `json:"id"`
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	Shares          decimal.Decimal `json:"shares"`
	AverageCost     decimal.Decimal `json:"average_cost"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	TotalValue      decimal.Decimal `json:"total_value"`
	GainLoss        decimal.Decimal `json:"gain_loss"`
	GainLossPercent decimal.Decimal `json:"gain_loss_percent"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Invested is shares times average cost
func (h Holding) Invested() decimal.Decimal {
	return h.Shares.Mul(h.AverageCost)
}

// Reprice returns h valued at price
func (h Holding) Reprice(price decimal.Decimal) Holding {
	h.CurrentPrice = price
	h.TotalValue = h.Shares.Mul(price)
	h.GainLoss = h.TotalValue.Sub(h.Invested())
	if h.AverageCost.IsZero() {
		h.GainLossPercent = decimal.Zero
	} else {
		h.GainLossPercent = price.Sub(h.AverageCost).Div(h.AverageCost).Mul(hundred).Round(2)
	}
	return h
}

// AddHolding records a position priced at currentPrice
func (l *Ledger) AddHolding(symbol, name string, shares, averageCost, currentPrice decimal.Decimal) Holding {
	l.mu.Lock()
	defer l.mu.Unlock()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if name == "" {
		name = symbol
	}

	h := Holding{
		ID:          l.newID(),
		Symbol:      symbol,
		Name:        name,
		Shares:      shares,
		AverageCost: averageCost,
		CreatedAt:   l.now(),
	}.Reprice(currentPrice)

	l.holdings = append(l.holdings, h)
	return h
}

// RemoveHolding deletes a position by id and reports whether it existed
func (l *Ledger) RemoveHolding(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.holdings {
		if l.holdings[i].ID == id {
			l.holdings = append(l.holdings[:i], l.holdings[i+1:]...)
			return true
		}
	}
	return false
}

// Holdings returns a copy of all positions
func (l *Ledger) Holdings() []Holding {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Holding, len(l.holdings))
	copy(out, l.holdings)
	return out
}

// Symbols returns the distinct symbols held, in first-seen order
func (l *Ledger) Symbols() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]bool, len(l.holdings))
	out := make([]string, 0, len(l.holdings))
	for _, h := range l.holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			out = append(out, h.Symbol)
		}
	}
	return out
}

// Revalue reprices every holding whose symbol appears in prices and
// returns how many were updated. Symbols without a price keep their last
// value.
func (l *Ledger) Revalue(prices map[string]decimal.Decimal) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for i, h := range l.holdings {
		if p, ok := prices[h.Symbol]; ok {
			l.holdings[i] = h.Reprice(p)
			n++
		}
	}
	return n
}
