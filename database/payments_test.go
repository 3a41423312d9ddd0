package database_test

import (
	"testing"

	"arcollect/database"
	"arcollect/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPaymentOldestFirst(t *testing.T) {
	db := openTestDB(t)
	insertTestCustomer(t, db, "C001", "Acme Corp")
	insertTestInvoice(t, db, "INV-002", "C001", "2026-02-15", "200.00")
	insertTestInvoice(t, db, "INV-001", "C001", "2026-01-15", "100.00")

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	inserted, err := database.UpsertPaymentInTx(tx, model.Payment{
		PaymentRef:   "PAY-1",
		CustomerCode: "C001",
		PaymentDate:  "2026-03-01",
		Amount:       mustDecimal(t, "150.00"),
		Source:       "lockbox",
	})
	require.NoError(t, err)
	require.True(t, inserted)

	require.NoError(t, database.ApplyPaymentInTx(tx, "PAY-1", "2026-03-01 10:00:00"))
	require.NoError(t, tx.Commit())

	// Oldest invoice closes, the newer one absorbs the rest.
	inv1, err := database.GetInvoiceByNumber(db, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusClosed, inv1.Status)
	assert.True(t, inv1.Balance.IsZero())

	inv2, err := database.GetInvoiceByNumber(db, "INV-002")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusOpen, inv2.Status)
	assert.Equal(t, "150", inv2.Balance.String())

	apps, err := database.GetApplicationsByInvoice(db, "INV-001")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "PAY-1", apps[0].PaymentRef)
	assert.Equal(t, "100", apps[0].Amount.String())
}

func TestApplyPaymentSurplusStaysUnapplied(t *testing.T) {
	db := openTestDB(t)
	insertTestCustomer(t, db, "C001", "Acme Corp")
	insertTestInvoice(t, db, "INV-001", "C001", "2026-01-15", "100.00")

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = database.UpsertPaymentInTx(tx, model.Payment{
		PaymentRef:   "PAY-1",
		CustomerCode: "C001",
		PaymentDate:  "2026-03-01",
		Amount:       mustDecimal(t, "250.00"),
		Source:       "erp",
	})
	require.NoError(t, err)
	require.NoError(t, database.ApplyPaymentInTx(tx, "PAY-1", "2026-03-01 10:00:00"))
	require.NoError(t, tx.Commit())

	inv, err := database.GetInvoiceByNumber(db, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusClosed, inv.Status)

	payments, err := database.GetPaymentsByCustomer(db, "C001")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "150", payments[0].Unapplied.String())
}

func TestUpsertPaymentSkipsDuplicateRef(t *testing.T) {
	db := openTestDB(t)
	insertTestCustomer(t, db, "C001", "Acme Corp")

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	p := model.Payment{
		PaymentRef:   "PAY-1",
		CustomerCode: "C001",
		PaymentDate:  "2026-03-01",
		Amount:       mustDecimal(t, "50.00"),
		Source:       "erp",
	}
	inserted, err := database.UpsertPaymentInTx(tx, p)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = database.UpsertPaymentInTx(tx, p)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestApplyPaymentNeverOverdraws(t *testing.T) {
	db := openTestDB(t)
	insertTestCustomer(t, db, "C001", "Acme Corp")
	insertTestInvoice(t, db, "INV-001", "C001", "2026-01-15", "100.00")
	insertTestInvoice(t, db, "INV-002", "C001", "2026-02-15", "100.00")

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = database.UpsertPaymentInTx(tx, model.Payment{
		PaymentRef:   "PAY-1",
		CustomerCode: "C001",
		PaymentDate:  "2026-03-01",
		Amount:       mustDecimal(t, "30.00"),
		Source:       "lockbox",
	})
	require.NoError(t, err)
	require.NoError(t, database.ApplyPaymentInTx(tx, "PAY-1", "2026-03-01 10:00:00"))
	require.NoError(t, tx.Commit())

	inv1, err := database.GetInvoiceByNumber(db, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, "70", inv1.Balance.String())
	assert.Equal(t, model.InvoiceStatusOpen, inv1.Status)

	inv2, err := database.GetInvoiceByNumber(db, "INV-002")
	require.NoError(t, err)
	assert.Equal(t, "100", inv2.Balance.String())
}
