package database

import (
	"database/sql"
	"fmt"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// UpsertPaymentInTx records a payment if its reference has not been seen
// before. Returns true when the row was newly inserted; re-synced payments
// must not be applied twice.
func UpsertPaymentInTx(tx *sqlx.Tx, p model.Payment) (bool, error) {
	var exists int
	err := tx.QueryRow(`SELECT 1 FROM payments WHERE payment_ref = ? LIMIT 1`, p.PaymentRef).Scan(&exists)
	if err == nil {
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check payment %s: %w", p.PaymentRef, err)
	}

	const q = `
		INSERT INTO payments (payment_ref, customer_code, payment_date, amount, unapplied, source)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = tx.Exec(q, p.PaymentRef, p.CustomerCode, p.PaymentDate,
		p.Amount.String(), p.Amount.String(), p.Source)
	if err != nil {
		return false, fmt.Errorf("failed to insert payment %s: %w", p.PaymentRef, err)
	}
	return true, nil
}

// ApplyPaymentInTx consumes the payment's unapplied amount against the
// customer's open invoices oldest-due-first. A fully covered invoice is
// closed; a partial application just reduces the balance. Whatever cannot
// be covered stays on the payment row as unapplied.
func ApplyPaymentInTx(tx *sqlx.Tx, paymentRef, appliedAt string) error {
	var customerCode, unappliedStr string
	err := tx.QueryRow(`SELECT customer_code, unapplied FROM payments WHERE payment_ref = ?`, paymentRef).
		Scan(&customerCode, &unappliedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("no payment found for ref %s", paymentRef)
		}
		return fmt.Errorf("failed to load payment %s: %w", paymentRef, err)
	}
	remaining, err := decimal.NewFromString(unappliedStr)
	if err != nil {
		return fmt.Errorf("bad unapplied amount on payment %s: %w", paymentRef, err)
	}
	if remaining.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	rows, err := tx.Query(`
		SELECT invoice_number, balance FROM invoices
		WHERE customer_code = ? AND status = 'open'
		ORDER BY due_date, invoice_number`, customerCode)
	if err != nil {
		return fmt.Errorf("failed to query open invoices for application: %w", err)
	}

	// Collect the updates first, then execute, so no statement runs while
	// the cursor is open.
	type application struct {
		invoiceNumber string
		applied       decimal.Decimal
		newBalance    decimal.Decimal
		closeInvoice  bool
	}
	var actions []application

	for rows.Next() {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		var number, balanceStr string
		if err := rows.Scan(&number, &balanceStr); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan invoice row: %w", err)
		}
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			rows.Close()
			return fmt.Errorf("bad balance on invoice %s: %w", number, err)
		}
		if balance.LessThanOrEqual(decimal.Zero) {
			continue
		}

		if remaining.GreaterThanOrEqual(balance) {
			actions = append(actions, application{
				invoiceNumber: number, applied: balance,
				newBalance: decimal.Zero, closeInvoice: true,
			})
			remaining = remaining.Sub(balance)
		} else {
			actions = append(actions, application{
				invoiceNumber: number, applied: remaining,
				newBalance: balance.Sub(remaining),
			})
			remaining = decimal.Zero
		}
	}
	rows.Close()

	for _, a := range actions {
		if a.closeInvoice {
			if _, err := tx.Exec(`UPDATE invoices SET balance = '0', status = 'closed' WHERE invoice_number = ?`,
				a.invoiceNumber); err != nil {
				return fmt.Errorf("failed to close invoice %s: %w", a.invoiceNumber, err)
			}
		} else {
			if _, err := tx.Exec(`UPDATE invoices SET balance = ? WHERE invoice_number = ?`,
				a.newBalance.String(), a.invoiceNumber); err != nil {
				return fmt.Errorf("failed to update balance of invoice %s: %w", a.invoiceNumber, err)
			}
		}
		if _, err := tx.Exec(`
			INSERT INTO payment_applications (payment_ref, invoice_number, amount, applied_at)
			VALUES (?, ?, ?, ?)`,
			paymentRef, a.invoiceNumber, a.applied.String(), appliedAt); err != nil {
			return fmt.Errorf("failed to record application of payment %s: %w", paymentRef, err)
		}
	}

	if _, err := tx.Exec(`UPDATE payments SET unapplied = ? WHERE payment_ref = ?`,
		remaining.String(), paymentRef); err != nil {
		return fmt.Errorf("failed to update unapplied amount of payment %s: %w", paymentRef, err)
	}
	return nil
}

func GetPaymentsByCustomer(dbtx DBTX, customerCode string) ([]model.Payment, error) {
	var payments []model.Payment
	const q = `
		SELECT payment_ref, customer_code, payment_date, amount, unapplied, source
		FROM payments WHERE customer_code = ?
		ORDER BY payment_date DESC, payment_ref`
	if err := dbtx.Select(&payments, q, customerCode); err != nil {
		return nil, fmt.Errorf("failed to query payments for %s: %w", customerCode, err)
	}
	return payments, nil
}

func GetApplicationsByInvoice(dbtx DBTX, invoiceNumber string) ([]model.PaymentApplication, error) {
	var apps []model.PaymentApplication
	const q = `
		SELECT id, payment_ref, invoice_number, amount, applied_at
		FROM payment_applications WHERE invoice_number = ?
		ORDER BY applied_at, id`
	if err := dbtx.Select(&apps, q, invoiceNumber); err != nil {
		return nil, fmt.Errorf("failed to query applications for invoice %s: %w", invoiceNumber, err)
	}
	return apps, nil
}
