package database

import (
	"fmt"
	"sort"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// OpenInvoiceRow is the slim shape the analytics computations consume.
type OpenInvoiceRow struct {
	InvoiceNumber string
	CustomerCode  string
	CollectorCode string
	ColorStatus   string
	DueDate       string
	Balance       decimal.Decimal
}

func GetOpenInvoiceRows(db *sqlx.DB) ([]OpenInvoiceRow, error) {
	rows, err := db.Query(`
		SELECT invoice_number, customer_code, collector_code, color_status, due_date, balance
		FROM invoices WHERE status = 'open'`)
	if err != nil {
		return nil, fmt.Errorf("failed to query open invoice rows: %w", err)
	}
	defer rows.Close()

	var result []OpenInvoiceRow
	for rows.Next() {
		var r OpenInvoiceRow
		var balanceStr string
		if err := rows.Scan(&r.InvoiceNumber, &r.CustomerCode, &r.CollectorCode,
			&r.ColorStatus, &r.DueDate, &balanceStr); err != nil {
			return nil, fmt.Errorf("failed to scan open invoice row: %w", err)
		}
		r.Balance, err = decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("bad balance on invoice %s: %w", r.InvoiceNumber, err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetCollectedAmountsByCollector sums payment applications in the period,
// attributed to the collector assigned to the invoice the money landed on.
func GetCollectedAmountsByCollector(db *sqlx.DB, from, to string) (map[string]decimal.Decimal, error) {
	rows, err := db.Query(`
		SELECT i.collector_code, a.amount
		FROM payment_applications a
		JOIN invoices i ON i.invoice_number = a.invoice_number
		WHERE a.applied_at >= ? AND a.applied_at <= ? AND i.collector_code != ''`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query collected amounts: %w", err)
	}
	defer rows.Close()

	collected := make(map[string]decimal.Decimal)
	for rows.Next() {
		var code, amountStr string
		if err := rows.Scan(&code, &amountStr); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("bad application amount for collector %s: %w", code, err)
		}
		collected[code] = collected[code].Add(amount)
	}
	return collected, rows.Err()
}

// GetTopDebtors returns the customers with the largest open balances.
func GetTopDebtors(db *sqlx.DB, limit int, today string) ([]model.TopDebtor, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`
		SELECT i.customer_code, c.customer_name, i.balance, i.due_date
		FROM invoices i JOIN customers c ON c.customer_code = i.customer_code
		WHERE i.status = 'open'`)
	if err != nil {
		return nil, fmt.Errorf("failed to query debtor rows: %w", err)
	}
	defer rows.Close()

	byCode := make(map[string]*model.TopDebtor)
	for rows.Next() {
		var code, name, balanceStr, dueDate string
		if err := rows.Scan(&code, &name, &balanceStr, &dueDate); err != nil {
			return nil, err
		}
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("bad balance for customer %s: %w", code, err)
		}
		d, ok := byCode[code]
		if !ok {
			d = &model.TopDebtor{CustomerCode: code, CustomerName: name}
			byCode[code] = d
		}
		d.OpenBalance = d.OpenBalance.Add(balance)
		if dueDate < today {
			d.OverdueCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	debtors := make([]model.TopDebtor, 0, len(byCode))
	for _, d := range byCode {
		debtors = append(debtors, *d)
	}
	sort.Slice(debtors, func(i, j int) bool {
		return debtors[i].OpenBalance.GreaterThan(debtors[j].OpenBalance)
	})
	if len(debtors) > limit {
		debtors = debtors[:limit]
	}
	return debtors, nil
}
