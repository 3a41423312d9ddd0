package mappers

import (
	"encoding/json"
	"testing"

	"arcollect/acumatica"
	"arcollect/model"

	"github.com/stretchr/testify/assert"
)

func sv(s string) acumatica.StringValue {
	return acumatica.StringValue{Value: s}
}

func nv(s string) acumatica.NumberValue {
	return acumatica.NumberValue{Value: json.Number(s)}
}

func TestMapErpCustomer(t *testing.T) {
	c := MapErpCustomer(acumatica.Customer{
		CustomerID:   sv("C001"),
		CustomerName: sv("Acme Corp"),
		Email:        sv("billing@acme.example"),
		CreditLimit:  nv("5000.00"),
	}, "2026-03-01 10:00:00")

	assert.Equal(t, "C001", c.CustomerCode)
	assert.Equal(t, "Acme Corp", c.CustomerName)
	assert.Equal(t, "5000", c.CreditLimit.String())
	assert.Equal(t, "2026-03-01 10:00:00", c.ErpLastSync)
}

func TestMapErpInvoiceTrimsTimestamps(t *testing.T) {
	inv := MapErpInvoice(acumatica.Invoice{
		ReferenceNbr: sv("INV-001"),
		Customer:     sv("C001"),
		Date:         sv("2026-01-05T00:00:00+00:00"),
		DueDate:      sv("2026-02-05T00:00:00+00:00"),
		Amount:       nv("100.00"),
		Balance:      nv("40.00"),
		Status:       sv("Open"),
	}, "2026-03-01 10:00:00")

	assert.Equal(t, "2026-01-05", inv.InvoiceDate)
	assert.Equal(t, "2026-02-05", inv.DueDate)
	assert.Equal(t, model.InvoiceStatusOpen, inv.Status)
	assert.Equal(t, "40", inv.Balance.String())
}

func TestMapErpInvoiceClosesOnStatusOrZeroBalance(t *testing.T) {
	closed := MapErpInvoice(acumatica.Invoice{
		ReferenceNbr: sv("INV-001"),
		Status:       sv("Closed"),
		Balance:      nv("40.00"),
	}, "")
	assert.Equal(t, model.InvoiceStatusClosed, closed.Status)

	paidOff := MapErpInvoice(acumatica.Invoice{
		ReferenceNbr: sv("INV-002"),
		Status:       sv("Open"),
		Balance:      nv("0"),
	}, "")
	assert.Equal(t, model.InvoiceStatusClosed, paidOff.Status)
}

func TestMapErpPayment(t *testing.T) {
	p := MapErpPayment(acumatica.Payment{
		ReferenceNbr:    sv("PAY-1"),
		CustomerID:      sv("C001"),
		ApplicationDate: sv("2026-03-01T00:00:00+00:00"),
		PaymentAmount:   nv("150.00"),
	})

	assert.Equal(t, "PAY-1", p.PaymentRef)
	assert.Equal(t, "2026-03-01", p.PaymentDate)
	assert.Equal(t, "150", p.Amount.String())
	assert.Equal(t, "erp", p.Source)
}

func TestDecimalFromNumberToleratesGarbage(t *testing.T) {
	assert.True(t, decimalFromNumber(nv("")).IsZero())
	assert.True(t, decimalFromNumber(nv("not-a-number")).IsZero())
}
