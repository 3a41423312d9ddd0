package remit

import (
	"strings"
	"testing"

	"arcollect/database"
	"arcollect/loader"
	"arcollect/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, loader.ApplySchemaFile(db, "../schema.sql"))
	return db
}

func seedInvoice(t *testing.T, db *sqlx.DB, number, customer, dueDate, balance string) {
	t.Helper()
	amount, err := decimal.NewFromString(balance)
	require.NoError(t, err)
	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, database.UpsertCustomerInTx(tx, model.Customer{
		CustomerCode: customer,
		CustomerName: customer,
		ColorStatus:  "new",
	}))
	require.NoError(t, database.UpsertInvoiceInTx(tx, model.Invoice{
		InvoiceNumber: number,
		CustomerCode:  customer,
		InvoiceDate:   dueDate,
		DueDate:       dueDate,
		Amount:        amount,
		Balance:       amount,
		Status:        model.InvoiceStatusOpen,
	}))
	require.NoError(t, tx.Commit())
}

func TestImportRemittanceStream(t *testing.T) {
	db := openTestDB(t)
	seedInvoice(t, db, "INV-001", "C001", "2026-01-15", "100.00")

	csv := "payment_ref,customer_code,payment_date,amount\n" +
		"PAY-1,C001,2026-03-01,100.00\n"

	result, err := ImportRemittanceStream(db, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Parsed)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	inv, err := database.GetInvoiceByNumber(db, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusClosed, inv.Status)

	payments, err := database.GetPaymentsByCustomer(db, "C001")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "lockbox", payments[0].Source)
	assert.True(t, payments[0].Unapplied.IsZero())
}

func TestImportRemittanceStreamIdempotent(t *testing.T) {
	db := openTestDB(t)
	seedInvoice(t, db, "INV-001", "C001", "2026-01-15", "100.00")

	csv := "payment_ref,customer_code,payment_date,amount\n" +
		"PAY-1,C001,2026-03-01,60.00\n"

	_, err := ImportRemittanceStream(db, strings.NewReader(csv))
	require.NoError(t, err)

	// Same file again: the payment must not apply twice.
	result, err := ImportRemittanceStream(db, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	inv, err := database.GetInvoiceByNumber(db, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, "40", inv.Balance.String())
	assert.Equal(t, model.InvoiceStatusOpen, inv.Status)
}

func TestImportRemittanceStreamEmptyFileFails(t *testing.T) {
	db := openTestDB(t)
	_, err := ImportRemittanceStream(db, strings.NewReader(""))
	assert.Error(t, err)
}
