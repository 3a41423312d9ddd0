package database

import (
	"database/sql"
	"fmt"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

func GetAllEmailTemplates(dbtx DBTX) ([]model.EmailTemplate, error) {
	var templates []model.EmailTemplate
	const q = `SELECT id, name, subject, body FROM email_templates ORDER BY name`
	if err := dbtx.Select(&templates, q); err != nil {
		return nil, fmt.Errorf("failed to get email templates: %w", err)
	}
	return templates, nil
}

func GetEmailTemplateByName(dbtx DBTX, name string) (*model.EmailTemplate, error) {
	var t model.EmailTemplate
	const q = `SELECT id, name, subject, body FROM email_templates WHERE name = ?`
	if err := dbtx.Get(&t, q, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("GetEmailTemplateByName %s failed: %w", name, err)
	}
	return &t, nil
}

// UpsertEmailTemplateInTx creates or replaces a template by name.
func UpsertEmailTemplateInTx(tx *sqlx.Tx, t model.EmailTemplate) error {
	const q = `
		INSERT INTO email_templates (name, subject, body) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			subject = excluded.subject,
			body = excluded.body`
	if _, err := tx.Exec(q, t.Name, t.Subject, t.Body); err != nil {
		return fmt.Errorf("UpsertEmailTemplateInTx (Name: %s) failed: %w", t.Name, err)
	}
	return nil
}

func DeleteEmailTemplateInTx(tx *sqlx.Tx, name string) error {
	res, err := tx.Exec(`DELETE FROM email_templates WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for template %s: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("no template found for name %s", name)
	}
	return nil
}

// SeedEmailTemplatesInTx inserts the default dunning templates, skipping any
// name that already exists so operator edits survive restarts.
func SeedEmailTemplatesInTx(tx *sqlx.Tx, templates []model.EmailTemplate) error {
	const q = `INSERT OR IGNORE INTO email_templates (name, subject, body) VALUES (?, ?, ?)`
	stmt, err := tx.Prepare(q)
	if err != nil {
		return fmt.Errorf("failed to prepare template seed statement: %w", err)
	}
	defer stmt.Close()
	for _, t := range templates {
		if _, err := stmt.Exec(t.Name, t.Subject, t.Body); err != nil {
			return fmt.Errorf("failed to seed template %s: %w", t.Name, err)
		}
	}
	return nil
}
