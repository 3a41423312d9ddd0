package loader

import (
	"fmt"
	"log"
	"os"

	"arcollect/database"
	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

var defaultColorStatuses = []database.ColorStatus{
	{StatusCode: "new", Label: "New", CssColor: "#9e9e9e", SortOrder: 1},
	{StatusCode: "will-pay", Label: "Will Pay", CssColor: "#4caf50", SortOrder: 2},
	{StatusCode: "promised", Label: "Promised", CssColor: "#2196f3", SortOrder: 3},
	{StatusCode: "pending", Label: "Pending", CssColor: "#ffc107", SortOrder: 4},
	{StatusCode: "disputed", Label: "Disputed", CssColor: "#ff9800", SortOrder: 5},
	{StatusCode: "will-not-pay", Label: "Will Not Pay", CssColor: "#f44336", SortOrder: 6},
}

var defaultEmailTemplates = []model.EmailTemplate{
	{
		Name:    "friendly_reminder",
		Subject: "Payment reminder for {{.Customer.CustomerName}}",
		Body: `Dear {{.Customer.CustomerName}},

This is a friendly reminder that the following invoices are open on your account:

{{range .Invoices}}  {{.InvoiceNumber}}  due {{.DueDate}}  {{money .Balance}}
{{end}}
Total open balance: {{money .TotalBalance}}

Please reach out if a payment is already on its way.

Regards,
Collections`,
	},
	{
		Name:    "past_due_notice",
		Subject: "Past due notice - {{.Customer.CustomerName}}",
		Body: `Dear {{.Customer.CustomerName}},

Our records show the invoices below are past due:

{{range .Invoices}}  {{.InvoiceNumber}}  due {{.DueDate}}  {{money .Balance}}
{{end}}
Total past due: {{money .TotalBalance}}

Please remit payment at your earliest convenience or contact us to arrange terms.

Regards,
Collections`,
	},
	{
		Name:    "final_demand",
		Subject: "Final demand for payment - {{.Customer.CustomerName}}",
		Body: `Dear {{.Customer.CustomerName}},

Despite prior reminders the balance of {{money .TotalBalance}} remains unpaid.
Unless payment is received within 7 days the account will be escalated.

{{range .Invoices}}  {{.InvoiceNumber}}  due {{.DueDate}}  {{money .Balance}}
{{end}}
Regards,
Collections`,
	},
}

// InitDatabase applies the schema and seeds the catalogs the portal needs
// on first boot: color statuses, default dunning templates, code sequences.
func InitDatabase(db *sqlx.DB) error {
	log.Println("Applying database schema...")
	if err := ApplySchemaFile(db, "schema.sql"); err != nil {
		return fmt.Errorf("failed to apply schema.sql: %w", err)
	}
	log.Println("Schema applied successfully.")

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if err := database.SeedColorStatusesInTx(tx, defaultColorStatuses); err != nil {
		return fmt.Errorf("failed to seed color statuses: %w", err)
	}
	if err := database.SeedEmailTemplatesInTx(tx, defaultEmailTemplates); err != nil {
		return fmt.Errorf("failed to seed email templates: %w", err)
	}
	if err := database.InitializeCollectorSequence(tx); err != nil {
		log.Printf("WARN: Failed to initialize COLLECTOR sequence: %v", err)
		// continue anyway
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	log.Println("Catalog seeding complete.")

	return nil
}

// ApplySchemaFile reads a DDL file and executes it. Exposed separately so
// tests can point an in-memory database at the real schema.
func ApplySchemaFile(db *sqlx.DB, path string) error {
	schemaBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}
	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
