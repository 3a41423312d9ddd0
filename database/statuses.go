package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type ColorStatus struct {
	StatusCode string `db:"status_code" json:"statusCode"`
	Label      string `db:"label" json:"label"`
	CssColor   string `db:"css_color" json:"cssColor"`
	SortOrder  int    `db:"sort_order" json:"sortOrder"`
}

func GetAllColorStatuses(dbtx DBTX) ([]ColorStatus, error) {
	var statuses []ColorStatus
	const q = `SELECT status_code, label, css_color, sort_order FROM color_statuses ORDER BY sort_order, status_code`
	if err := dbtx.Select(&statuses, q); err != nil {
		return nil, fmt.Errorf("failed to get color statuses: %w", err)
	}
	return statuses, nil
}

func ColorStatusExists(dbtx DBTX, code string) (bool, error) {
	var exists int
	err := dbtx.QueryRow(`SELECT 1 FROM color_statuses WHERE status_code = ? LIMIT 1`, code).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("ColorStatusExists failed: %w", err)
	}
	return true, nil
}

// SeedColorStatusesInTx inserts the built-in status catalog, keeping any
// label edits the operator already made.
func SeedColorStatusesInTx(tx *sqlx.Tx, statuses []ColorStatus) error {
	const q = `INSERT OR IGNORE INTO color_statuses (status_code, label, css_color, sort_order) VALUES (?, ?, ?, ?)`
	stmt, err := tx.Prepare(q)
	if err != nil {
		return fmt.Errorf("failed to prepare status seed statement: %w", err)
	}
	defer stmt.Close()
	for _, s := range statuses {
		if _, err := stmt.Exec(s.StatusCode, s.Label, s.CssColor, s.SortOrder); err != nil {
			return fmt.Errorf("failed to seed status %s: %w", s.StatusCode, err)
		}
	}
	return nil
}
