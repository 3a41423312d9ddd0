package database

import (
	"database/sql"
	"fmt"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func CreateCollectorInTx(tx *sqlx.Tx, name, email string) (string, error) {
	exists, err := CheckCollectorExistsByName(tx, name)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("collector named %q already exists", name)
	}

	code, err := NextSequenceInTx(tx, "COLLECTOR", "CO", 4)
	if err != nil {
		return "", err
	}
	const q = `INSERT INTO collectors (collector_code, collector_name, email, active) VALUES (?, ?, ?, 1)`
	if _, err := tx.Exec(q, code, name, email); err != nil {
		return "", fmt.Errorf("CreateCollectorInTx failed: %w", err)
	}
	return code, nil
}

func CheckCollectorExistsByName(tx *sqlx.Tx, name string) (bool, error) {
	var exists int
	const q = `SELECT 1 FROM collectors WHERE collector_name = ? LIMIT 1`
	err := tx.QueryRow(q, name).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("CheckCollectorExistsByName failed: %w", err)
	}
	return true, nil
}

func GetAllCollectors(dbtx DBTX) ([]model.Collector, error) {
	var collectors []model.Collector
	const q = `SELECT collector_code, collector_name, email, active FROM collectors ORDER BY collector_code`
	if err := dbtx.Select(&collectors, q); err != nil {
		return nil, fmt.Errorf("failed to get all collectors: %w", err)
	}
	return collectors, nil
}

func GetCollectorByCode(dbtx DBTX, code string) (*model.Collector, error) {
	var c model.Collector
	const q = `SELECT collector_code, collector_name, email, active FROM collectors WHERE collector_code = ?`
	if err := dbtx.Get(&c, q, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("GetCollectorByCode %s failed: %w", code, err)
	}
	return &c, nil
}

func UpdateCollectorInTx(tx *sqlx.Tx, c model.Collector) error {
	const q = `UPDATE collectors SET collector_name = ?, email = ?, active = ? WHERE collector_code = ?`
	res, err := tx.Exec(q, c.CollectorName, c.Email, c.Active, c.CollectorCode)
	if err != nil {
		return fmt.Errorf("UpdateCollectorInTx (Code: %s) failed: %w", c.CollectorCode, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for collector %s: %w", c.CollectorCode, err)
	}
	if affected == 0 {
		return fmt.Errorf("no collector found for code %s", c.CollectorCode)
	}
	return nil
}

// GetCollectorWorkloads returns, per collector, the assigned customer and
// open invoice counts plus the open balance total.
func GetCollectorWorkloads(db *sqlx.DB) ([]model.CollectorWorkload, error) {
	collectors, err := GetAllCollectors(db)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT collector_code, COUNT(*), COUNT(DISTINCT customer_code)
		FROM invoices WHERE status = 'open' AND collector_code != ''
		GROUP BY collector_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collector invoice counts: %w", err)
	}
	type counts struct {
		invoices  int
		customers int
	}
	countsByCode := make(map[string]counts)
	for rows.Next() {
		var code string
		var c counts
		if err := rows.Scan(&code, &c.invoices, &c.customers); err != nil {
			rows.Close()
			return nil, err
		}
		countsByCode[code] = c
	}
	rows.Close()

	rows, err = db.Query(`
		SELECT collector_code, balance FROM invoices
		WHERE status = 'open' AND collector_code != ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collector balances: %w", err)
	}
	defer rows.Close()
	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var code, balanceStr string
		if err := rows.Scan(&code, &balanceStr); err != nil {
			return nil, err
		}
		bal, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("bad balance for collector %s: %w", code, err)
		}
		balances[code] = balances[code].Add(bal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	workloads := make([]model.CollectorWorkload, 0, len(collectors))
	for _, c := range collectors {
		w := model.CollectorWorkload{Collector: c}
		if counts, ok := countsByCode[c.CollectorCode]; ok {
			w.InvoiceCount = counts.invoices
			w.CustomerCount = counts.customers
		}
		w.OpenBalance = balances[c.CollectorCode]
		workloads = append(workloads, w)
	}
	return workloads, nil
}
