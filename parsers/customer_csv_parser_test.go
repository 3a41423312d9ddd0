package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomerCSV(t *testing.T) {
	csv := "customer_code,customer_name,email,credit_limit\n" +
		"C001,Acme Corp,billing@acme.example,5000.00\n" +
		"C002,Globex,,\n"

	records, err := ParseCustomerCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "C001", records[0].CustomerCode)
	assert.Equal(t, "Acme Corp", records[0].CustomerName)
	assert.Equal(t, "billing@acme.example", records[0].Email)
	assert.Equal(t, "5000", records[0].CreditLimit.String())

	assert.Equal(t, "C002", records[1].CustomerCode)
	assert.True(t, records[1].CreditLimit.IsZero())
}

func TestParseCustomerCSVSkipsBadRows(t *testing.T) {
	csv := "customer_code,customer_name\n" +
		",Missing Code\n" +
		"C001,\n" +
		"C002,Globex\n"

	records, err := ParseCustomerCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "C002", records[0].CustomerCode)
}

func TestParseCustomerCSVWithBOM(t *testing.T) {
	csv := "\xEF\xBB\xBFcustomer_code,customer_name\nC001,Acme Corp\n"

	records, err := ParseCustomerCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "C001", records[0].CustomerCode)
}

func TestParseCustomerCSVMissingRequiredHeader(t *testing.T) {
	csv := "code,name\nC001,Acme Corp\n"

	_, err := ParseCustomerCSV(strings.NewReader(csv))
	assert.Error(t, err)
}
