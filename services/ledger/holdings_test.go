package ledger

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddHolding(t *testing.T) {
	l := newTestLedger()

	h := l.AddHolding(" aapl ", "", d("10"), d("150"), d("175"))

	assert.Equal(t, "AAPL", h.Symbol)
	assert.Equal(t, "AAPL", h.Name)
	assert.True(t, h.TotalValue.Equal(d("1750")))
	assert.True(t, h.GainLoss.Equal(d("250")))
	assert.True(t, h.GainLossPercent.Equal(d("16.67")))
	assert.Len(t, l.Holdings(), 1)
}

func TestRemoveHolding(t *testing.T) {
	l := newTestLedger()
	a := l.AddHolding("AAPL", "Apple Inc.", d("10"), d("150"), d("175"))
	l.AddHolding("GOOGL", "Alphabet Inc.", d("5"), d("120"), d("140"))

	assert.True(t, l.RemoveHolding(a.ID))
	assert.False(t, l.RemoveHolding(a.ID))
	require.Len(t, l.Holdings(), 1)
	assert.Equal(t, "GOOGL", l.Holdings()[0].Symbol)
}

func TestRevalue(t *testing.T) {
	l := newTestLedger()
	l.AddHolding("AAPL", "", d("10"), d("150"), d("175"))
	l.AddHolding("AAPL", "", d("2"), d("100"), d("175"))
	l.AddHolding("TSLA", "", d("1"), d("200"), d("248.42"))

	n := l.Revalue(map[string]decimal.Decimal{"AAPL": d("180"), "MSFT": d("1")})

	assert.Equal(t, 2, n)
	hs := l.Holdings()
	assert.True(t, hs[0].TotalValue.Equal(d("1800")))
	assert.True(t, hs[1].GainLoss.Equal(d("160")))
	assert.True(t, hs[2].CurrentPrice.Equal(d("248.42")), "unpriced symbols keep their value")
	assert.Equal(t, []string{"AAPL", "TSLA"}, l.Symbols())
}

func TestParseHoldingsCSV(t *testing.T) {
	input := `symbol,shares,average_cost,current_price,name
AAPL,10,150,175.23,Apple Inc.
# comment
msft, 3.5 ,300

BAD,abc,1
NOSHARES
GOOGL,5
NEG,-1,10
`
	rows, err := ParseHoldingsCSV(strings.NewReader(input), zerolog.Nop())
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "AAPL", rows[0].Symbol)
	assert.Equal(t, "Apple Inc.", rows[0].Name)
	assert.True(t, rows[0].CurrentPrice.Equal(d("175.23")))
	assert.Equal(t, 2, rows[0].Line)

	assert.Equal(t, "MSFT", rows[1].Symbol)
	assert.True(t, rows[1].Shares.Equal(d("3.5")))
	assert.True(t, rows[1].CurrentPrice.IsZero())

	assert.Equal(t, "GOOGL", rows[2].Symbol)
	assert.True(t, rows[2].AverageCost.IsZero())

	l := newTestLedger()
	imported := l.ImportHoldings(rows)
	assert.Len(t, imported, 3)
	assert.True(t, imported[0].TotalValue.Equal(d("1752.30")))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ValidateBudget("Food", d("0"), 12, 2024))
	assert.ErrorIs(t, ValidateBudget("", d("1"), 12, 2024), ErrInvalid)
	assert.ErrorIs(t, ValidateBudget("Food", d("-1"), 12, 2024), ErrInvalid)
	assert.ErrorIs(t, ValidateBudget("Food", d("1"), 13, 2024), ErrInvalid)

	assert.NoError(t, ValidateExpense(d("0.01"), "Food"))
	assert.ErrorIs(t, ValidateExpense(d("0"), "Food"), ErrInvalid)
	assert.ErrorIs(t, ValidateExpense(d("5"), " "), ErrInvalid)

	assert.NoError(t, ValidateHolding("AAPL", d("1"), d("0")))
	assert.ErrorIs(t, ValidateHolding("AAPL", d("0"), d("1")), ErrInvalid)
}
