package database

import (
	"fmt"
	"strings"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

const reminderColumns = `
	id, customer_code, invoice_number, collector_code, due_at, note,
	completed, notified, created_at
`

func InsertReminderInTx(tx *sqlx.Tx, r model.Reminder) (int64, error) {
	const q = `
		INSERT INTO reminders (customer_code, invoice_number, collector_code, due_at, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.Exec(q, r.CustomerCode, r.InvoiceNumber, r.CollectorCode, r.DueAt, r.Note, r.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert reminder for customer %s: %w", r.CustomerCode, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get reminder id: %w", err)
	}
	return id, nil
}

// GetReminders lists reminders, optionally scoped to a collector or
// customer, optionally only open ones due at or before dueBefore.
func GetReminders(dbtx DBTX, collectorCode, customerCode, dueBefore string, openOnly bool) ([]model.Reminder, error) {
	q := `SELECT ` + reminderColumns + ` FROM reminders`
	var conds []string
	var args []interface{}
	if collectorCode != "" {
		conds = append(conds, "collector_code = ?")
		args = append(args, collectorCode)
	}
	if customerCode != "" {
		conds = append(conds, "customer_code = ?")
		args = append(args, customerCode)
	}
	if dueBefore != "" {
		conds = append(conds, "due_at <= ?")
		args = append(args, dueBefore)
	}
	if openOnly {
		conds = append(conds, "completed = 0")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY due_at, id"

	var reminders []model.Reminder
	if err := dbtx.Select(&reminders, q, args...); err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	return reminders, nil
}

func CompleteReminderInTx(tx *sqlx.Tx, id int) error {
	res, err := tx.Exec(`UPDATE reminders SET completed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to complete reminder %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for reminder %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("no reminder found for id %d", id)
	}
	return nil
}

// SnoozeReminderInTx moves the due timestamp and re-arms notification.
func SnoozeReminderInTx(tx *sqlx.Tx, id int, newDueAt string) error {
	res, err := tx.Exec(`UPDATE reminders SET due_at = ?, notified = 0 WHERE id = ? AND completed = 0`, newDueAt, id)
	if err != nil {
		return fmt.Errorf("failed to snooze reminder %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for reminder %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("no open reminder found for id %d", id)
	}
	return nil
}

// ClaimDueRemindersInTx selects due, open, unnotified reminders and marks
// them notified in the same transaction so the scheduler never sends twice.
func ClaimDueRemindersInTx(tx *sqlx.Tx, now string) ([]model.Reminder, error) {
	var due []model.Reminder
	q := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE completed = 0 AND notified = 0 AND due_at <= ?
		ORDER BY due_at, id`
	if err := tx.Select(&due, q, now); err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	for _, r := range due {
		if _, err := tx.Exec(`UPDATE reminders SET notified = 1 WHERE id = ?`, r.ID); err != nil {
			return nil, fmt.Errorf("failed to mark reminder %d notified: %w", r.ID, err)
		}
	}
	return due, nil
}

func CountCompletedRemindersByCollector(dbtx DBTX, from, to string) (map[string]int, error) {
	rows, err := dbtx.Query(`
		SELECT collector_code, COUNT(*) FROM reminders
		WHERE completed = 1 AND due_at >= ? AND due_at <= ? AND collector_code != ''
		GROUP BY collector_code`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed reminders: %w", err)
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
