package model

type Note struct {
	ID            int    `db:"id" json:"id"`
	CustomerCode  string `db:"customer_code" json:"customerCode"`
	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber"`
	CollectorCode string `db:"collector_code" json:"collectorCode"`
	Body          string `db:"body" json:"body"`
	CreatedAt     string `db:"created_at" json:"createdAt"`
}

type Reminder struct {
	ID            int    `db:"id" json:"id"`
	CustomerCode  string `db:"customer_code" json:"customerCode"`
	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber"`
	CollectorCode string `db:"collector_code" json:"collectorCode"`
	DueAt         string `db:"due_at" json:"dueAt"`
	Note          string `db:"note" json:"note"`
	Completed     bool   `db:"completed" json:"completed"`
	Notified      bool   `db:"notified" json:"notified"`
	CreatedAt     string `db:"created_at" json:"createdAt"`
}

type EmailTemplate struct {
	ID      int    `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Subject string `db:"subject" json:"subject"`
	Body    string `db:"body" json:"body"`
}

type EmailLogEntry struct {
	ID            int    `db:"id" json:"id"`
	CustomerCode  string `db:"customer_code" json:"customerCode"`
	CollectorCode string `db:"collector_code" json:"collectorCode"`
	TemplateName  string `db:"template_name" json:"templateName"`
	Recipient     string `db:"recipient" json:"recipient"`
	Subject       string `db:"subject" json:"subject"`
	Status        string `db:"status" json:"status"`
	Error         string `db:"error" json:"error"`
	SentAt        string `db:"sent_at" json:"sentAt"`
}
