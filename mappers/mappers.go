// Package mappers converts ERP payloads into local model rows. All the
// "what does an Acumatica field mean here" decisions live in one place.
package mappers

import (
	"strings"

	"arcollect/acumatica"
	"arcollect/model"

	"github.com/shopspring/decimal"
)

func decimalFromNumber(v acumatica.NumberValue) decimal.Decimal {
	if v.Value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v.Value.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// dateOnly trims Acumatica's timestamp format (2024-05-01T00:00:00+00:00)
// down to YYYY-MM-DD.
func dateOnly(v acumatica.StringValue) string {
	if idx := strings.IndexByte(v.Value, 'T'); idx > 0 {
		return v.Value[:idx]
	}
	return v.Value
}

func MapErpCustomer(e acumatica.Customer, syncedAt string) model.Customer {
	return model.Customer{
		CustomerCode: e.CustomerID.Value,
		CustomerName: e.CustomerName.Value,
		Email:        e.Email.Value,
		Phone:        e.Phone.Value,
		Terms:        e.Terms.Value,
		CreditLimit:  decimalFromNumber(e.CreditLimit),
		ErpLastSync:  syncedAt,
	}
}

// MapErpInvoice maps an AR invoice. Acumatica closes documents by status
// (Closed); anything with a remaining balance stays open locally. Credit
// memos arrive with the same shape and a negative-effect type; the balance
// the ERP reports is taken as-is.
func MapErpInvoice(e acumatica.Invoice, syncedAt string) model.Invoice {
	status := model.InvoiceStatusOpen
	if strings.EqualFold(e.Status.Value, "Closed") || decimalFromNumber(e.Balance).IsZero() {
		status = model.InvoiceStatusClosed
	}
	return model.Invoice{
		InvoiceNumber: e.ReferenceNbr.Value,
		CustomerCode:  e.Customer.Value,
		InvoiceDate:   dateOnly(e.Date),
		DueDate:       dateOnly(e.DueDate),
		Amount:        decimalFromNumber(e.Amount),
		Balance:       decimalFromNumber(e.Balance),
		Status:        status,
		ErpLastSync:   syncedAt,
	}
}

func MapErpPayment(e acumatica.Payment) model.Payment {
	return model.Payment{
		PaymentRef:   e.ReferenceNbr.Value,
		CustomerCode: e.CustomerID.Value,
		PaymentDate:  dateOnly(e.ApplicationDate),
		Amount:       decimalFromNumber(e.PaymentAmount),
		Source:       "erp",
	}
}
