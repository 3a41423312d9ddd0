// Package remit imports bank lockbox remittance files: each row becomes a
// payment, applied to the customer's open invoices oldest-due-first.
package remit

import (
	"fmt"
	"io"
	"log"
	"time"

	"arcollect/database"
	"arcollect/model"
	"arcollect/parsers"

	"github.com/jmoiron/sqlx"
)

// ImportResult summarizes one remittance import.
type ImportResult struct {
	Parsed   int `json:"parsed"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportRemittanceStream parses the CSV and records and applies every new
// payment in a single transaction. Payments whose reference already exists
// are skipped, so re-uploading the same file is harmless.
func ImportRemittanceStream(db *sqlx.DB, r io.Reader) (*ImportResult, error) {
	records, err := parsers.ParseRemittanceCSV(r)
	if err != nil {
		return nil, err
	}
	result := &ImportResult{Parsed: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start remittance transaction: %w", err)
	}
	defer tx.Rollback()

	appliedAt := time.Now().Format("2006-01-02 15:04:05")
	for _, rec := range records {
		inserted, err := database.UpsertPaymentInTx(tx, model.Payment{
			PaymentRef:   rec.PaymentRef,
			CustomerCode: rec.CustomerCode,
			PaymentDate:  rec.PaymentDate,
			Amount:       rec.Amount,
			Source:       "lockbox",
		})
		if err != nil {
			return nil, err
		}
		if !inserted {
			log.Printf("WARN: Payment %s already imported (skipping).", rec.PaymentRef)
			result.Skipped++
			continue
		}
		if err := database.ApplyPaymentInTx(tx, rec.PaymentRef, appliedAt); err != nil {
			return nil, err
		}
		result.Imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit remittance import: %w", err)
	}
	log.Printf("Remittance import finished: %d parsed, %d imported, %d skipped.",
		result.Parsed, result.Imported, result.Skipped)
	return result, nil
}
