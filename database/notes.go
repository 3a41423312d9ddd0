package database

import (
	"fmt"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

func InsertNoteInTx(tx *sqlx.Tx, n model.Note) (int64, error) {
	const q = `
		INSERT INTO notes (customer_code, invoice_number, collector_code, body, created_at)
		VALUES (?, ?, ?, ?, ?)`
	res, err := tx.Exec(q, n.CustomerCode, n.InvoiceNumber, n.CollectorCode, n.Body, n.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note for customer %s: %w", n.CustomerCode, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get note id: %w", err)
	}
	return id, nil
}

func GetNotesByCustomer(dbtx DBTX, customerCode string) ([]model.Note, error) {
	var notes []model.Note
	const q = `
		SELECT id, customer_code, invoice_number, collector_code, body, created_at
		FROM notes WHERE customer_code = ?
		ORDER BY created_at DESC, id DESC`
	if err := dbtx.Select(&notes, q, customerCode); err != nil {
		return nil, fmt.Errorf("failed to query notes for %s: %w", customerCode, err)
	}
	return notes, nil
}

func DeleteNoteInTx(tx *sqlx.Tx, id int) error {
	res, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for note %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("no note found for id %d", id)
	}
	return nil
}
