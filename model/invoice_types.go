package model

import "github.com/shopspring/decimal"

const (
	InvoiceStatusOpen   = "open"
	InvoiceStatusClosed = "closed"
)

type Invoice struct {
	InvoiceNumber string          `db:"invoice_number" json:"invoiceNumber"`
	CustomerCode  string          `db:"customer_code" json:"customerCode"`
	CustomerName  string          `db:"customer_name" json:"customerName"`
	InvoiceDate   string          `db:"invoice_date" json:"invoiceDate"`
	DueDate       string          `db:"due_date" json:"dueDate"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	Status        string          `db:"status" json:"status"`
	ColorStatus   string          `db:"color_status" json:"colorStatus"`
	CollectorCode string          `db:"collector_code" json:"collectorCode"`
	PromiseDate   string          `db:"promise_date" json:"promiseDate"`
	ErpLastSync   string          `db:"erp_last_sync" json:"erpLastSync"`
}

type InvoiceFilters struct {
	CustomerCode  string
	CollectorCode string
	ColorStatus   string
	AgingBucket   string // "", "current", "1-30", "31-60", "61-90", "90+"
	DueFrom       string
	DueTo         string
	OpenOnly      bool
}

type PaymentApplication struct {
	ID            int             `db:"id" json:"id"`
	PaymentRef    string          `db:"payment_ref" json:"paymentRef"`
	InvoiceNumber string          `db:"invoice_number" json:"invoiceNumber"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	AppliedAt     string          `db:"applied_at" json:"appliedAt"`
}

type Payment struct {
	PaymentRef   string          `db:"payment_ref" json:"paymentRef"`
	CustomerCode string          `db:"customer_code" json:"customerCode"`
	PaymentDate  string          `db:"payment_date" json:"paymentDate"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Unapplied    decimal.Decimal `db:"unapplied" json:"unapplied"`
	Source       string          `db:"source" json:"source"`
}
