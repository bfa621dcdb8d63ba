package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUSD(t *testing.T) {
	assert.Equal(t, "$1,234.50", USD(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$0.00", USD(decimal.Zero))
	assert.Equal(t, "$175.24", USD(decimal.RequireFromString("175.235")))
}

func TestCurrency_Unknown(t *testing.T) {
	assert.Equal(t, "12.30 XXZ", Currency(decimal.RequireFromString("12.3"), "XXZ"))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+$2.45", SignedUSD(decimal.RequireFromString("2.45")))
	assert.Equal(t, "+1.42%", SignedPercent(decimal.RequireFromString("1.418")))
	assert.Equal(t, "-0.32%", SignedPercent(decimal.RequireFromString("-0.32")))
}
