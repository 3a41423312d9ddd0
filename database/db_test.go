package database_test

import (
	"testing"

	"arcollect/database"
	"arcollect/loader"
	"arcollect/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
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

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func insertTestCustomer(t *testing.T, db *sqlx.DB, code, name string) {
	t.Helper()
	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, database.UpsertCustomerInTx(tx, model.Customer{
		CustomerCode: code,
		CustomerName: name,
		ColorStatus:  "new",
	}))
	require.NoError(t, tx.Commit())
}

func insertTestInvoice(t *testing.T, db *sqlx.DB, number, customer, dueDate, balance string) {
	t.Helper()
	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, database.UpsertInvoiceInTx(tx, model.Invoice{
		InvoiceNumber: number,
		CustomerCode:  customer,
		InvoiceDate:   dueDate,
		DueDate:       dueDate,
		Amount:        mustDecimal(t, balance),
		Balance:       mustDecimal(t, balance),
		Status:        model.InvoiceStatusOpen,
	}))
	require.NoError(t, tx.Commit())
}
