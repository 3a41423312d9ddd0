package database

import (
	"fmt"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

func InsertEmailLogInTx(tx *sqlx.Tx, e model.EmailLogEntry) error {
	const q = `
		INSERT INTO email_log (customer_code, collector_code, template_name, recipient, subject, status, error, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.Exec(q, e.CustomerCode, e.CollectorCode, e.TemplateName, e.Recipient,
		e.Subject, e.Status, e.Error, e.SentAt)
	if err != nil {
		return fmt.Errorf("failed to insert email log for customer %s: %w", e.CustomerCode, err)
	}
	return nil
}

func GetEmailLogByCustomer(dbtx DBTX, customerCode string) ([]model.EmailLogEntry, error) {
	var entries []model.EmailLogEntry
	const q = `
		SELECT id, customer_code, collector_code, template_name, recipient, subject, status, error, sent_at
		FROM email_log WHERE customer_code = ?
		ORDER BY sent_at DESC, id DESC`
	if err := dbtx.Select(&entries, q, customerCode); err != nil {
		return nil, fmt.Errorf("failed to query email log for %s: %w", customerCode, err)
	}
	return entries, nil
}

func CountSentEmailsByCollector(dbtx DBTX, from, to string) (map[string]int, error) {
	rows, err := dbtx.Query(`
		SELECT collector_code, COUNT(*) FROM email_log
		WHERE status = 'sent' AND sent_at >= ? AND sent_at <= ? AND collector_code != ''
		GROUP BY collector_code`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count sent emails: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, err
		}
		counts[code] = n
	}
	return counts, rows.Err()
}
