package database

import (
	"database/sql"
	"fmt"
	"strings"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// UpsertCustomerInTx inserts or refreshes a customer row synced from the ERP.
// Local workflow fields (color_status, collector_code) are preserved on update.
func UpsertCustomerInTx(tx *sqlx.Tx, c model.Customer) error {
	const q = `
		INSERT INTO customers (
			customer_code, customer_name, email, phone, terms, credit_limit, erp_last_sync
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(customer_code) DO UPDATE SET
			customer_name = excluded.customer_name,
			email = excluded.email,
			phone = excluded.phone,
			terms = excluded.terms,
			credit_limit = excluded.credit_limit,
			erp_last_sync = excluded.erp_last_sync
	`
	_, err := tx.Exec(q, c.CustomerCode, c.CustomerName, c.Email, c.Phone,
		c.Terms, c.CreditLimit.String(), c.ErpLastSync)
	if err != nil {
		return fmt.Errorf("UpsertCustomerInTx (Code: %s) failed: %w", c.CustomerCode, err)
	}
	return nil
}

func GetCustomerByCode(dbtx DBTX, code string) (*model.Customer, error) {
	var c model.Customer
	const q = `
		SELECT customer_code, customer_name, email, phone, terms, credit_limit,
		       color_status, collector_code, erp_last_sync
		FROM customers WHERE customer_code = ?`
	if err := dbtx.Get(&c, q, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("GetCustomerByCode %s failed: %w", code, err)
	}
	return &c, nil
}

// GetFilteredCustomers returns customers with their open-balance aggregates,
// applying the browse-screen filters. today is YYYY-MM-DD and bounds the
// overdue count.
func GetFilteredCustomers(db *sqlx.DB, filters model.CustomerFilters, today string) ([]model.CustomerSummary, error) {
	q := `
		SELECT c.customer_code, c.customer_name, c.email, c.phone, c.terms,
		       c.credit_limit, c.color_status, c.collector_code, c.erp_last_sync,
		       i.invoice_number, i.balance, i.due_date
		FROM customers c
		LEFT JOIN invoices i ON i.customer_code = c.customer_code AND i.status = 'open'
	`
	var conds []string
	var args []interface{}
	if filters.NameLike != "" {
		conds = append(conds, "c.customer_name LIKE ?")
		args = append(args, "%"+filters.NameLike+"%")
	}
	if filters.CollectorCode != "" {
		conds = append(conds, "c.collector_code = ?")
		args = append(args, filters.CollectorCode)
	}
	if filters.ColorStatus != "" {
		conds = append(conds, "c.color_status = ?")
		args = append(args, filters.ColorStatus)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY c.customer_code"

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query filtered customers: %w", err)
	}
	defer rows.Close()

	// Balances are TEXT columns; sum them in Go with decimal rather than
	// trusting sqlite float arithmetic.
	byCode := make(map[string]*model.CustomerSummary)
	var order []string
	for rows.Next() {
		var c model.Customer
		var creditLimit string
		var invoiceNumber, balance, dueDate sql.NullString
		if err := rows.Scan(
			&c.CustomerCode, &c.CustomerName, &c.Email, &c.Phone, &c.Terms,
			&creditLimit, &c.ColorStatus, &c.CollectorCode, &c.ErpLastSync,
			&invoiceNumber, &balance, &dueDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		summary, ok := byCode[c.CustomerCode]
		if !ok {
			c.CreditLimit, err = decimal.NewFromString(creditLimit)
			if err != nil {
				c.CreditLimit = decimal.Zero
			}
			summary = &model.CustomerSummary{Customer: c}
			byCode[c.CustomerCode] = summary
			order = append(order, c.CustomerCode)
		}
		if invoiceNumber.Valid {
			bal, err := decimal.NewFromString(balance.String)
			if err != nil {
				return nil, fmt.Errorf("bad balance on invoice %s: %w", invoiceNumber.String, err)
			}
			summary.OpenBalance = summary.OpenBalance.Add(bal)
			summary.OpenInvoices++
			if dueDate.String < today {
				summary.OverdueCount++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]model.CustomerSummary, 0, len(order))
	for _, code := range order {
		s := byCode[code]
		if filters.OverdueOnly && s.OverdueCount == 0 {
			continue
		}
		if !filters.MinOpenBalance.IsZero() && s.OpenBalance.LessThan(filters.MinOpenBalance) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func SetCustomerColorStatus(tx *sqlx.Tx, customerCode, statusCode string) error {
	res, err := tx.Exec(`UPDATE customers SET color_status = ? WHERE customer_code = ?`, statusCode, customerCode)
	if err != nil {
		return fmt.Errorf("failed to set color status for customer %s: %w", customerCode, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for customer %s: %w", customerCode, err)
	}
	if affected == 0 {
		return fmt.Errorf("no customer found for code %s", customerCode)
	}
	return nil
}

func SetCustomerCollector(tx *sqlx.Tx, customerCode, collectorCode string) error {
	res, err := tx.Exec(`UPDATE customers SET collector_code = ? WHERE customer_code = ?`, collectorCode, customerCode)
	if err != nil {
		return fmt.Errorf("failed to set collector for customer %s: %w", customerCode, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for customer %s: %w", customerCode, err)
	}
	if affected == 0 {
		return fmt.Errorf("no customer found for code %s", customerCode)
	}
	return nil
}
