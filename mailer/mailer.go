// Package mailer renders and sends templated collection emails and records
// every attempt in the email log.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"arcollect/config"
	"arcollect/database"
	"arcollect/model"
	"arcollect/render"
	"arcollect/statuses"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// sendMail is swappable so tests never open a socket.
var sendMail = smtp.SendMail

// RenderContext is what a dunning template sees.
type RenderContext struct {
	Customer     model.Customer
	Invoices     []model.Invoice
	TotalBalance decimal.Decimal
	Today        string
}

var templateFuncs = template.FuncMap{
	"money": render.FormatMoney,
	"label": statuses.Label,
}

// BuildContext loads the customer and its open invoices for rendering.
func BuildContext(db *sqlx.DB, customerCode string) (*RenderContext, error) {
	c, err := database.GetCustomerByCode(db, customerCode)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("no customer found for code %s", customerCode)
	}
	invoices, err := database.GetOpenInvoicesByCustomer(db, customerCode)
	if err != nil {
		return nil, err
	}

	ctx := &RenderContext{
		Customer: *c,
		Invoices: invoices,
		Today:    time.Now().Format("2006-01-02"),
	}
	for _, inv := range invoices {
		ctx.TotalBalance = ctx.TotalBalance.Add(inv.Balance)
	}
	return ctx, nil
}

// RenderTemplate executes the subject and body templates against the
// context.
func RenderTemplate(t model.EmailTemplate, ctx *RenderContext) (string, string, error) {
	subjectTmpl, err := template.New("subject").Funcs(templateFuncs).Parse(t.Subject)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse subject of template %s: %w", t.Name, err)
	}
	bodyTmpl, err := template.New("body").Funcs(templateFuncs).Parse(t.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse body of template %s: %w", t.Name, err)
	}

	var subject, body strings.Builder
	if err := subjectTmpl.Execute(&subject, ctx); err != nil {
		return "", "", fmt.Errorf("failed to render subject of template %s: %w", t.Name, err)
	}
	if err := bodyTmpl.Execute(&body, ctx); err != nil {
		return "", "", fmt.Errorf("failed to render body of template %s: %w", t.Name, err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}

func buildMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

// SendRaw submits a pre-built message over SMTP and logs it. Used for
// internal notifications like reminder alerts to collectors.
func SendRaw(db *sqlx.DB, customerCode, collectorCode, recipient, subject, body string) error {
	cfg := config.GetConfig()
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("SMTP is not configured")
	}
	if recipient == "" {
		return fmt.Errorf("no recipient for message %q", subject)
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	sendErr := sendMail(addr, nil, cfg.SMTPFrom, []string{recipient},
		buildMessage(cfg.SMTPFrom, recipient, subject, body))

	entry := model.EmailLogEntry{
		CustomerCode:  customerCode,
		CollectorCode: collectorCode,
		Recipient:     recipient,
		Subject:       subject,
		Status:        "sent",
		SentAt:        time.Now().Format("2006-01-02 15:04:05"),
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.Error = sendErr.Error()
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start email log transaction: %w", err)
	}
	defer tx.Rollback()
	if err := database.InsertEmailLogInTx(tx, entry); err != nil {
		log.Printf("ERROR: Failed to record email log for customer %s: %v", customerCode, err)
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit email log: %w", err)
	}

	if sendErr != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, sendErr)
	}
	return nil
}

// Send renders the named template for the customer, submits it over SMTP
// and logs the outcome. The email log row is written for failures too, so
// the activity history shows what bounced.
func Send(db *sqlx.DB, customerCode, templateName, recipient, collectorCode string) (string, error) {
	cfg := config.GetConfig()
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return "", fmt.Errorf("SMTP is not configured")
	}

	t, err := database.GetEmailTemplateByName(db, templateName)
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", fmt.Errorf("no template found for name %s", templateName)
	}

	ctx, err := BuildContext(db, customerCode)
	if err != nil {
		return "", err
	}
	if recipient == "" {
		recipient = ctx.Customer.Email
	}
	if recipient == "" {
		return "", fmt.Errorf("customer %s has no email address on file", customerCode)
	}

	subject, body, err := RenderTemplate(*t, ctx)
	if err != nil {
		return "", err
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	sendErr := sendMail(addr, nil, cfg.SMTPFrom, []string{recipient},
		buildMessage(cfg.SMTPFrom, recipient, subject, body))

	entry := model.EmailLogEntry{
		CustomerCode:  customerCode,
		CollectorCode: collectorCode,
		TemplateName:  templateName,
		Recipient:     recipient,
		Subject:       subject,
		Status:        "sent",
		SentAt:        time.Now().Format("2006-01-02 15:04:05"),
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.Error = sendErr.Error()
	}

	tx, err := db.Beginx()
	if err != nil {
		return subject, fmt.Errorf("failed to start email log transaction: %w", err)
	}
	defer tx.Rollback()
	if err := database.InsertEmailLogInTx(tx, entry); err != nil {
		log.Printf("ERROR: Failed to record email log for customer %s: %v", customerCode, err)
		return subject, err
	}
	if err := tx.Commit(); err != nil {
		return subject, fmt.Errorf("failed to commit email log: %w", err)
	}

	if sendErr != nil {
		return subject, fmt.Errorf("failed to send email to %s: %w", recipient, sendErr)
	}
	return subject, nil
}
