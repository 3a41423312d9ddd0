package model

import "github.com/shopspring/decimal"

type Collector struct {
	CollectorCode string `db:"collector_code" json:"collectorCode"`
	CollectorName string `db:"collector_name" json:"collectorName"`
	Email         string `db:"email" json:"email"`
	Active        bool   `db:"active" json:"active"`
}

type CollectorWorkload struct {
	Collector
	CustomerCount int             `db:"customer_count" json:"customerCount"`
	InvoiceCount  int             `db:"invoice_count" json:"invoiceCount"`
	OpenBalance   decimal.Decimal `db:"open_balance" json:"openBalance"`
}
