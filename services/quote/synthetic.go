package quote

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Seed is a static reference quote for the synthetic tier
type Seed struct {
	Name   string
	Price  decimal.Decimal
	Crypto bool
}

func seed(name, price string) Seed {
	return Seed{Name: name, Price: decimal.RequireFromString(price)}
}

func cryptoSeed(name, price string) Seed {
	s := seed(name, price)
	s.Crypto = true
	return s
}

// seeds backs the synthetic tier. Index and crypto symbols use the
// Yahoo-style spellings the backend accepts.
var seeds = map[string]Seed{
	"AAPL":  seed("Apple Inc.", "175.23"),
	"GOOGL": seed("Alphabet Inc.", "142.56"),
	"TSLA":  seed("Tesla, Inc.", "248.42"),
	"MSFT":  seed("Microsoft Corporation", "378.85"),
	"AMZN":  seed("Amazon.com, Inc.", "156.78"),
	"NVDA":  seed("NVIDIA Corporation", "485.09"),
	"META":  seed("Meta Platforms, Inc.", "334.92"),
	"NFLX":  seed("Netflix, Inc.", "567.34"),

	"^GSPC": seed("S&P 500", "4769.83"),
	"^DJI":  seed("Dow Jones Industrial Average", "37689.54"),
	"^IXIC": seed("NASDAQ Composite", "15011.35"),
	"^RUT":  seed("Russell 2000", "2027.07"),
	"^VIX":  seed("CBOE Volatility Index", "12.45"),

	"BTC-USD": cryptoSeed("Bitcoin", "43250.00"),
	"ETH-USD": cryptoSeed("Ethereum", "2285.50"),
	"BNB-USD": cryptoSeed("BNB", "312.40"),
	"SOL-USD": cryptoSeed("Solana", "98.45"),
	"XRP-USD": cryptoSeed("XRP", "0.62"),
	"ADA-USD": cryptoSeed("Cardano", "0.58"),
}

// CryptoSymbols are the synthetic top cryptocurrencies, by market cap
var CryptoSymbols = []string{"BTC-USD", "ETH-USD", "BNB-USD", "SOL-USD", "XRP-USD", "ADA-USD"}

// LookupSeed returns the seed for a canonical symbol
func LookupSeed(symbol string) (Seed, bool) {
	s, ok := seeds[symbol]
	return s, ok
}

// Type names the asset class the way symbol search reports it
func (s Seed) Type(symbol string) string {
	switch {
	case s.Crypto:
		return "Cryptocurrency"
	case strings.HasPrefix(symbol, "^"):
		return "Index"
	default:
		return "Equity"
	}
}

var maxPerturbation = decimal.NewFromInt(1)

// Synthetic generates quotes and history from the seed table with no
// network access. It is safe for concurrent use.
type Synthetic struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewSynthetic creates a generator. The same seed yields the same sequence.
func NewSynthetic(seed uint64) *Synthetic {
	return &Synthetic{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

func (g *Synthetic) float() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

func (g *Synthetic) norm() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.NormFloat64()
}

// places is the rounding precision for prices around p
func places(p decimal.Decimal) int32 {
	if p.LessThan(decimal.NewFromInt(1)) {
		return 4
	}
	return 2
}

// Quote perturbs the seed price uniformly within ±1.0, capped at a tenth of
// the seed price so cheap assets stay positive. Change is the perturbation.
func (g *Synthetic) Quote(symbol string) (Quote, error) {
	s, ok := LookupSeed(symbol)
	if !ok {
		return Quote{}, errors.Wrapf(ErrNotFound, "stock symbol %s not found", symbol)
	}

	bound := decimal.Min(maxPerturbation, s.Price.Div(decimal.NewFromInt(10)))
	prec := places(s.Price)
	delta := decimal.NewFromFloat(g.float()*2 - 1).Mul(bound).Round(prec)
	price := s.Price.Add(delta)

	return Quote{
		Symbol:        symbol,
		Name:          s.Name,
		Price:         price,
		Change:        delta,
		ChangePercent: delta.Div(s.Price).Mul(hundred).Round(2),
		Timestamp:     g.now(),
		Source:        SourceSynthetic,
	}, nil
}

// History produces a daily random walk over the window that ends at the
// seed price on the most recent weekday.
func (g *Synthetic) History(symbol string, period Period) (HistoricalSeries, error) {
	s, ok := LookupSeed(symbol)
	if !ok {
		return HistoricalSeries{}, errors.Wrapf(ErrNotFound, "stock symbol %s not found", symbol)
	}

	now := g.now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// include the RSI lookback before the window
	var days []time.Time
	for d := period.Start(now).AddDate(0, 0, -2*RSIPeriod); !d.After(end); d = d.AddDate(0, 0, 1) {
		if s.Crypto || isWeekday(d) {
			days = append(days, d)
		}
	}

	vol := 0.015
	if s.Crypto {
		vol = 0.03
	}

	// walk backwards from the seed so the last close is the seed price
	closes := make([]float64, len(days))
	c := s.Price.InexactFloat64()
	for i := len(days) - 1; i >= 0; i-- {
		closes[i] = c
		c = math.Max(c/(1+g.norm()*vol), 0.01)
	}

	prec := places(s.Price)
	points := make([]Point, len(days))
	prevClose := c
	for i, d := range days {
		open := prevClose
		cl := closes[i]
		hi := math.Max(open, cl) * (1 + math.Abs(g.norm())*vol/2)
		lo := math.Min(open, cl) * (1 - math.Abs(g.norm())*vol/2)
		points[i] = Point{
			Date:   d,
			Open:   decimal.NewFromFloat(open).Round(prec),
			High:   decimal.NewFromFloat(hi).Round(prec),
			Low:    decimal.NewFromFloat(lo).Round(prec),
			Close:  decimal.NewFromFloat(cl).Round(prec),
			Volume: 1_000_000 + int64(g.float()*49_000_000),
		}
		prevClose = cl
	}

	return HistoricalSeries{
		Symbol: symbol,
		Period: period,
		Points: points,
		Source: SourceSynthetic,
	}, nil
}

// TopCrypto quotes every synthetic crypto seed
func (g *Synthetic) TopCrypto() []Quote {
	quotes := make([]Quote, 0, len(CryptoSymbols))
	for _, sym := range CryptoSymbols {
		q, err := g.Quote(sym)
		if err != nil {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}

// Search matches query against seed symbols and names, case-insensitively.
// Results are ordered by symbol and capped at MaxSearchResults.
func (g *Synthetic) Search(query string) []SymbolMatch {
	q := strings.ToUpper(strings.TrimSpace(query))

	symbols := make([]string, 0, len(seeds))
	for sym := range seeds {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	matches := []SymbolMatch{}
	for _, sym := range symbols {
		s, _ := LookupSeed(sym)
		if !strings.Contains(sym, q) && !strings.Contains(strings.ToUpper(s.Name), q) {
			continue
		}
		region := "United States"
		if s.Crypto {
			region = "Global"
		}
		matches = append(matches, SymbolMatch{Symbol: sym, Name: s.Name, Type: s.Type(sym), Region: region})
		if len(matches) == MaxSearchResults {
			break
		}
	}
	return matches
}
