package database

import (
	"database/sql"
	"fmt"
	"strings"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

const invoiceColumns = `
	i.invoice_number, i.customer_code, c.customer_name, i.invoice_date, i.due_date,
	i.amount, i.balance, i.status, i.color_status, i.collector_code,
	i.promise_date, i.erp_last_sync
`

// UpsertInvoiceInTx inserts or refreshes an invoice row synced from the ERP.
// Like customers, local workflow fields survive the update; amount and
// balance always follow the ERP.
func UpsertInvoiceInTx(tx *sqlx.Tx, inv model.Invoice) error {
	const q = `
		INSERT INTO invoices (
			invoice_number, customer_code, invoice_date, due_date,
			amount, balance, status, erp_last_sync
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(invoice_number) DO UPDATE SET
			customer_code = excluded.customer_code,
			invoice_date = excluded.invoice_date,
			due_date = excluded.due_date,
			amount = excluded.amount,
			balance = excluded.balance,
			status = excluded.status,
			erp_last_sync = excluded.erp_last_sync
	`
	_, err := tx.Exec(q, inv.InvoiceNumber, inv.CustomerCode, inv.InvoiceDate, inv.DueDate,
		inv.Amount.String(), inv.Balance.String(), inv.Status, inv.ErpLastSync)
	if err != nil {
		return fmt.Errorf("UpsertInvoiceInTx (Number: %s) failed: %w", inv.InvoiceNumber, err)
	}
	return nil
}

func GetInvoiceByNumber(dbtx DBTX, number string) (*model.Invoice, error) {
	var inv model.Invoice
	q := `SELECT ` + invoiceColumns + `
		FROM invoices i JOIN customers c ON c.customer_code = i.customer_code
		WHERE i.invoice_number = ?`
	if err := dbtx.Get(&inv, q, number); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("GetInvoiceByNumber %s failed: %w", number, err)
	}
	return &inv, nil
}

// agingBucketCondition translates a bucket name into a SQL condition over
// days overdue relative to today (YYYY-MM-DD).
func agingBucketCondition(bucket string) (string, bool) {
	switch bucket {
	case "current":
		return "i.due_date >= ?", true
	case "1-30":
		return "i.due_date < ? AND julianday(?) - julianday(i.due_date) <= 30", true
	case "31-60":
		return "julianday(?) - julianday(i.due_date) > 30 AND julianday(?) - julianday(i.due_date) <= 60", true
	case "61-90":
		return "julianday(?) - julianday(i.due_date) > 60 AND julianday(?) - julianday(i.due_date) <= 90", true
	case "90+":
		return "julianday(?) - julianday(i.due_date) > 90", true
	}
	return "", false
}

func GetFilteredInvoices(db *sqlx.DB, filters model.InvoiceFilters, today string) ([]model.Invoice, error) {
	q := `SELECT ` + invoiceColumns + `
		FROM invoices i JOIN customers c ON c.customer_code = i.customer_code`

	var conds []string
	var args []interface{}
	if filters.CustomerCode != "" {
		conds = append(conds, "i.customer_code = ?")
		args = append(args, filters.CustomerCode)
	}
	if filters.CollectorCode != "" {
		conds = append(conds, "i.collector_code = ?")
		args = append(args, filters.CollectorCode)
	}
	if filters.ColorStatus != "" {
		conds = append(conds, "i.color_status = ?")
		args = append(args, filters.ColorStatus)
	}
	if filters.DueFrom != "" {
		conds = append(conds, "i.due_date >= ?")
		args = append(args, filters.DueFrom)
	}
	if filters.DueTo != "" {
		conds = append(conds, "i.due_date <= ?")
		args = append(args, filters.DueTo)
	}
	if filters.OpenOnly {
		conds = append(conds, "i.status = 'open'")
	}
	if filters.AgingBucket != "" {
		cond, ok := agingBucketCondition(filters.AgingBucket)
		if !ok {
			return nil, fmt.Errorf("unknown aging bucket %q", filters.AgingBucket)
		}
		conds = append(conds, cond)
		for i := 0; i < strings.Count(cond, "?"); i++ {
			args = append(args, today)
		}
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY i.due_date, i.invoice_number"

	var invoices []model.Invoice
	if err := db.Select(&invoices, q, args...); err != nil {
		return nil, fmt.Errorf("failed to query filtered invoices: %w", err)
	}
	return invoices, nil
}

// GetOpenInvoicesByCustomer returns the customer's open invoices
// oldest-due-first, the order payment application consumes them in.
func GetOpenInvoicesByCustomer(dbtx DBTX, customerCode string) ([]model.Invoice, error) {
	q := `SELECT ` + invoiceColumns + `
		FROM invoices i JOIN customers c ON c.customer_code = i.customer_code
		WHERE i.customer_code = ? AND i.status = 'open'
		ORDER BY i.due_date, i.invoice_number`
	var invoices []model.Invoice
	if err := dbtx.Select(&invoices, q, customerCode); err != nil {
		return nil, fmt.Errorf("failed to query open invoices for %s: %w", customerCode, err)
	}
	return invoices, nil
}

func AssignCollectorToInvoicesInTx(tx *sqlx.Tx, invoiceNumbers []string, collectorCode string) (int64, error) {
	stmt, err := tx.Prepare(`UPDATE invoices SET collector_code = ? WHERE invoice_number = ?`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare invoice assignment statement: %w", err)
	}
	defer stmt.Close()

	var total int64
	for _, number := range invoiceNumbers {
		res, err := stmt.Exec(collectorCode, number)
		if err != nil {
			return total, fmt.Errorf("failed to assign invoice %s: %w", number, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to get rows affected for invoice %s: %w", number, err)
		}
		if affected == 0 {
			return total, fmt.Errorf("no invoice found for number %s", number)
		}
		total += affected
	}
	return total, nil
}

// AssignCustomerInvoicesInTx points every invoice of the customer (and the
// customer row itself) at the collector.
func AssignCustomerInvoicesInTx(tx *sqlx.Tx, customerCode, collectorCode string) (int64, error) {
	res, err := tx.Exec(`UPDATE invoices SET collector_code = ? WHERE customer_code = ?`, collectorCode, customerCode)
	if err != nil {
		return 0, fmt.Errorf("failed to assign invoices of customer %s: %w", customerCode, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for customer %s: %w", customerCode, err)
	}
	if err := SetCustomerCollector(tx, customerCode, collectorCode); err != nil {
		return affected, err
	}
	return affected, nil
}

// SetInvoiceColorStatusInTx updates the color status and, when the new
// status is "promised", the promise-to-pay date. Any other status clears it.
func SetInvoiceColorStatusInTx(tx *sqlx.Tx, invoiceNumber, statusCode, promiseDate string) error {
	if statusCode != "promised" {
		promiseDate = ""
	}
	res, err := tx.Exec(`UPDATE invoices SET color_status = ?, promise_date = ? WHERE invoice_number = ?`,
		statusCode, promiseDate, invoiceNumber)
	if err != nil {
		return fmt.Errorf("failed to set color status for invoice %s: %w", invoiceNumber, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for invoice %s: %w", invoiceNumber, err)
	}
	if affected == 0 {
		return fmt.Errorf("no invoice found for number %s", invoiceNumber)
	}
	return nil
}
