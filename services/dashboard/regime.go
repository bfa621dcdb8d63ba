package dashboard

import (
	"github.com/shopspring/decimal"

	"wealthwatch/services/quote"
)

// Regime is the market mood derived from the VIX
type Regime string

const (
	RegimeUnknown  Regime = "unknown"
	RegimeCalm     Regime = "calm"
	RegimeCautious Regime = "cautious"
	RegimeVolatile Regime = "volatile"
)

// VIXSymbol is the volatility index quote used for the regime
const VIXSymbol = "^VIX"

// MarketIndices are quoted on every refresh
var MarketIndices = []string{"^GSPC", "^DJI", "^IXIC", "^RUT", VIXSymbol}

var (
	cautiousVIX = decimal.NewFromInt(20)
	volatileVIX = decimal.NewFromInt(30)
)

// ClassifyVIX maps a VIX level to a regime: above 30 is volatile, above 20
// cautious, otherwise calm.
func ClassifyVIX(vix decimal.Decimal) Regime {
	switch {
	case vix.GreaterThan(volatileVIX):
		return RegimeVolatile
	case vix.GreaterThan(cautiousVIX):
		return RegimeCautious
	default:
		return RegimeCalm
	}
}

// MarketStatus summarizes the index quotes
type MarketStatus struct {
	Regime  Regime          `json:"regime"`
	VIX     decimal.Decimal `json:"vix"`
	Indices []quote.Quote   `json:"indices"`
}

func marketStatus(indices []quote.Quote) MarketStatus {
	ms := MarketStatus{Regime: RegimeUnknown, Indices: indices}
	for _, q := range indices {
		if q.Symbol == VIXSymbol {
			ms.VIX = q.Price
			ms.Regime = ClassifyVIX(q.Price)
		}
	}
	return ms
}
