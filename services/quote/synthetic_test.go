package quote

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticQuote_Bounds(t *testing.T) {
	g := NewSynthetic(7)
	one := decimal.NewFromInt(1)

	for sym, s := range seeds {
		for i := 0; i < 50; i++ {
			q, err := g.Quote(sym)
			require.NoError(t, err)

			assert.Equal(t, sym, q.Symbol)
			assert.True(t, q.Change.Abs().LessThanOrEqual(one), "%s change %s", sym, q.Change)
			assert.True(t, q.Price.IsPositive(), "%s price %s", sym, q.Price)
			assert.True(t, q.Price.Sub(q.Change).Equal(s.Price), sym)

			want := q.Change.Div(s.Price).Mul(hundred).Round(2)
			assert.True(t, q.ChangePercent.Equal(want), sym)
		}
	}
}

func TestSyntheticQuote_Deterministic(t *testing.T) {
	a, err := NewSynthetic(99).Quote("NVDA")
	require.NoError(t, err)
	b, err := NewSynthetic(99).Quote("NVDA")
	require.NoError(t, err)

	assert.True(t, a.Price.Equal(b.Price))
}

func TestSyntheticQuote_Unknown(t *testing.T) {
	_, err := NewSynthetic(1).Quote("NOPE")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSyntheticHistory(t *testing.T) {
	g := NewSynthetic(3)

	s, err := g.History("BTC-USD", Period1M)
	require.NoError(t, err)

	require.NotEmpty(t, s.Points)
	last := s.Points[len(s.Points)-1]
	assert.True(t, last.Close.Equal(decimal.RequireFromString("43250")))

	for i, p := range s.Points {
		assert.True(t, p.Low.LessThanOrEqual(p.High), "point %d", i)
		assert.True(t, p.Close.IsPositive(), "point %d", i)
		assert.Positive(t, p.Volume)
	}

	_, err = g.History("NOPE", Period1M)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLookupSeed(t *testing.T) {
	s, ok := LookupSeed("^VIX")
	require.True(t, ok)
	assert.Equal(t, "CBOE Volatility Index", s.Name)

	_, ok = LookupSeed("aapl")
	assert.False(t, ok, "lookup expects canonical symbols")
}

func TestSyntheticSearch(t *testing.T) {
	g := NewSynthetic(1)

	tests := []struct {
		query   string
		symbols []string
		kind    string
	}{
		{"apple", []string{"AAPL"}, "Equity"},
		{"inc", []string{"AAPL", "AMZN", "GOOGL", "META", "NFLX"}, "Equity"},
		{" vix ", []string{"^VIX"}, "Index"},
		{"btc", []string{"BTC-USD"}, "Cryptocurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			matches := g.Search(tt.query)
			require.Len(t, matches, len(tt.symbols))
			for i, m := range matches {
				assert.Equal(t, tt.symbols[i], m.Symbol)
				assert.Equal(t, tt.kind, m.Type)
			}
		})
	}

	assert.Empty(t, g.Search("zzzz"))
	assert.NotNil(t, g.Search("zzzz"))
}
