package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

func NextSequenceInTx(tx *sqlx.Tx, name, prefix string, padding int) (string, error) {
	var lastNo int
	err := tx.Get(&lastNo, "SELECT last_no FROM code_sequences WHERE name = ?", name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("sequence '%s' not found", name)
		}
		return "", fmt.Errorf("failed to get sequence '%s': %w", name, err)
	}

	newNo := lastNo + 1
	_, err = tx.Exec(`UPDATE code_sequences SET last_no = ? WHERE name = ?`, newNo, name)
	if err != nil {
		return "", fmt.Errorf("failed to update sequence '%s': %w", name, err)
	}

	format := fmt.Sprintf("%s%%0%dd", prefix, padding)
	return fmt.Sprintf(format, newNo), nil
}

// InitializeCollectorSequence seeds the COLLECTOR sequence from the highest
// existing CO code so generated codes never collide after a restore.
func InitializeCollectorSequence(tx *sqlx.Tx) error {
	var maxCode sql.NullString
	err := tx.Get(&maxCode, "SELECT collector_code FROM collectors ORDER BY collector_code DESC LIMIT 1")
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	maxNum := 0
	if maxCode.Valid && strings.HasPrefix(maxCode.String, "CO") {
		numPart := strings.TrimPrefix(maxCode.String, "CO")
		maxNum, _ = strconv.Atoi(numPart)
	}

	_, err = tx.Exec(`
		INSERT INTO code_sequences (name, last_no) VALUES ('COLLECTOR', ?)
		ON CONFLICT(name) DO UPDATE SET last_no = MAX(last_no, excluded.last_no)`,
		maxNum)
	if err != nil {
		return fmt.Errorf("failed to initialize COLLECTOR sequence: %w", err)
	}
	return nil
}
