package mailer

import (
	"strings"
	"testing"

	"arcollect/model"
	"arcollect/render"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	tmpl := model.EmailTemplate{
		Name:    "friendly_reminder",
		Subject: "Open balance for {{.Customer.CustomerName}}",
		Body: "Dear {{.Customer.CustomerName}},\n\n" +
			"{{range .Invoices}}Invoice {{.InvoiceNumber}} due {{.DueDate}}: {{money .Balance}}\n{{end}}" +
			"Total due: {{money .TotalBalance}}\n",
	}

	balance, err := decimal.NewFromString("1234.50")
	require.NoError(t, err)
	ctx := &RenderContext{
		Customer: model.Customer{CustomerCode: "C001", CustomerName: "Acme Corp"},
		Invoices: []model.Invoice{
			{InvoiceNumber: "INV-001", DueDate: "2026-02-05", Balance: balance},
		},
		TotalBalance: balance,
		Today:        "2026-03-01",
	}

	subject, body, err := RenderTemplate(tmpl, ctx)
	require.NoError(t, err)

	money := render.FormatMoney(balance)
	assert.Equal(t, "Open balance for Acme Corp", subject)
	assert.Contains(t, body, "Dear Acme Corp,")
	assert.Contains(t, body, "Invoice INV-001 due 2026-02-05: "+money)
	assert.Contains(t, body, "Total due: "+money)
}

func TestRenderTemplateRejectsBadSyntax(t *testing.T) {
	tmpl := model.EmailTemplate{
		Name:    "broken",
		Subject: "{{.Customer.CustomerName",
		Body:    "body",
	}
	_, _, err := RenderTemplate(tmpl, &RenderContext{})
	assert.Error(t, err)
}

func TestRenderTemplateEmptyContext(t *testing.T) {
	tmpl := model.EmailTemplate{
		Name:    "friendly_reminder",
		Subject: "Hello {{.Customer.CustomerName}}",
		Body:    "{{range .Invoices}}{{.InvoiceNumber}}{{end}}{{money .TotalBalance}}",
	}
	subject, body, err := RenderTemplate(tmpl, &RenderContext{})
	require.NoError(t, err)
	assert.Equal(t, "Hello", subject)
	assert.Equal(t, render.FormatMoney(decimal.Zero), body)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("ar@example.com", "billing@acme.example", "Past due", "Please pay.\n"))

	lines := strings.Split(msg, "\r\n")
	assert.Equal(t, "From: ar@example.com", lines[0])
	assert.Equal(t, "To: billing@acme.example", lines[1])
	assert.Equal(t, "Subject: Past due", lines[2])
	assert.Contains(t, msg, "Content-Type: text/plain; charset=utf-8")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nPlease pay.\n"))
}
