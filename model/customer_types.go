package model

import "github.com/shopspring/decimal"

type Customer struct {
	CustomerCode  string          `db:"customer_code" json:"customerCode"`
	CustomerName  string          `db:"customer_name" json:"customerName"`
	Email         string          `db:"email" json:"email"`
	Phone         string          `db:"phone" json:"phone"`
	Terms         string          `db:"terms" json:"terms"`
	CreditLimit   decimal.Decimal `db:"credit_limit" json:"creditLimit"`
	ColorStatus   string          `db:"color_status" json:"colorStatus"`
	CollectorCode string          `db:"collector_code" json:"collectorCode"`
	ErpLastSync   string          `db:"erp_last_sync" json:"erpLastSync"`
}

// CustomerSummary is a Customer plus the open-balance aggregates the
// browse screen shows per row.
type CustomerSummary struct {
	Customer
	OpenBalance  decimal.Decimal `db:"open_balance" json:"openBalance"`
	OpenInvoices int             `db:"open_invoices" json:"openInvoices"`
	OverdueCount int             `db:"overdue_count" json:"overdueCount"`
}

type CustomerFilters struct {
	NameLike       string
	CollectorCode  string
	ColorStatus    string
	MinOpenBalance decimal.Decimal
	OverdueOnly    bool
}

type CustomerDetail struct {
	Customer  CustomerSummary `json:"customer"`
	Invoices  []Invoice       `json:"invoices"`
	Notes     []Note          `json:"notes"`
	Reminders []Reminder      `json:"reminders"`
}
