package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemittanceCSV(t *testing.T) {
	csv := "payment_ref,customer_code,payment_date,amount\n" +
		"PAY-1,C001,2026-03-01,150.00\n" +
		"PAY-2,C002,2026-03-02,9.99\n"

	records, err := ParseRemittanceCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "PAY-1", records[0].PaymentRef)
	assert.Equal(t, "C001", records[0].CustomerCode)
	assert.Equal(t, "2026-03-01", records[0].PaymentDate)
	assert.Equal(t, "150", records[0].Amount.String())
	assert.Equal(t, "9.99", records[1].Amount.String())
}

func TestParseRemittanceCSVSkipsInvalidRows(t *testing.T) {
	csv := "payment_ref,customer_code,payment_date,amount\n" +
		",C001,2026-03-01,10.00\n" +
		"PAY-2,,2026-03-01,10.00\n" +
		"PAY-3,C001,2026-03-01,abc\n" +
		"PAY-4,C001,2026-03-01,-5.00\n" +
		"PAY-5,C001,2026-03-01,0\n" +
		"PAY-6,C001,2026-03-01,10.00\n"

	records, err := ParseRemittanceCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "PAY-6", records[0].PaymentRef)
}

func TestParseRemittanceCSVEmptyFile(t *testing.T) {
	_, err := ParseRemittanceCSV(strings.NewReader(""))
	assert.Error(t, err)
}
