package render

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero))
	assert.Equal(t, "$200.00", FormatMoney(mustDecimal(t, "200")))
	assert.Equal(t, "$1,234.50", FormatMoney(mustDecimal(t, "1234.5")))
	assert.Equal(t, "-$99.99", FormatMoney(mustDecimal(t, "-99.99")))
}

func TestFormatMoneyKeepsLargeAmountsExact(t *testing.T) {
	// Past float64's 53-bit mantissa the cents must still survive.
	got := FormatMoney(mustDecimal(t, "9007199254740993.21"))
	assert.Equal(t, "$9,007,199,254,740,993.21", got)
}
