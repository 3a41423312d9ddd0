package database_test

import (
	"testing"

	"arcollect/database"
	"arcollect/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initCollectorSequence(t *testing.T, db *sqlx.DB) {
	t.Helper()
	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, database.InitializeCollectorSequence(tx))
	require.NoError(t, tx.Commit())
}

func TestCreateCollectorGeneratesSequentialCodes(t *testing.T) {
	db := openTestDB(t)
	initCollectorSequence(t, db)

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	code1, err := database.CreateCollectorInTx(tx, "Dana Reyes", "dana@example.com")
	require.NoError(t, err)
	code2, err := database.CreateCollectorInTx(tx, "Sam Okafor", "sam@example.com")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, "CO0001", code1)
	assert.Equal(t, "CO0002", code2)
}

func TestCreateCollectorRejectsDuplicateName(t *testing.T) {
	db := openTestDB(t)
	initCollectorSequence(t, db)

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = database.CreateCollectorInTx(tx, "Dana Reyes", "dana@example.com")
	require.NoError(t, err)
	_, err = database.CreateCollectorInTx(tx, "Dana Reyes", "other@example.com")
	assert.Error(t, err)
}

func TestInitializeCollectorSequencePicksUpExistingCodes(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO collectors (collector_code, collector_name, email, active) VALUES ('CO0007', 'Restored', '', 1)`)
	require.NoError(t, err)

	initCollectorSequence(t, db)

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	code, err := database.CreateCollectorInTx(tx, "Dana Reyes", "")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, "CO0008", code)
}

func TestGetCollectorWorkloads(t *testing.T) {
	db := openTestDB(t)
	initCollectorSequence(t, db)
	insertTestCustomer(t, db, "C001", "Acme Corp")
	insertTestCustomer(t, db, "C002", "Globex")

	tx, err := db.Beginx()
	require.NoError(t, err)
	code, err := database.CreateCollectorInTx(tx, "Dana Reyes", "")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	insertTestInvoice(t, db, "INV-001", "C001", "2026-01-15", "100.00")
	insertTestInvoice(t, db, "INV-002", "C002", "2026-02-15", "40.00")

	tx, err = db.Beginx()
	require.NoError(t, err)
	_, err = database.AssignCollectorToInvoicesInTx(tx, []string{"INV-001", "INV-002"}, code)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	workloads, err := database.GetCollectorWorkloads(db)
	require.NoError(t, err)
	require.Len(t, workloads, 1)
	assert.Equal(t, 2, workloads[0].InvoiceCount)
	assert.Equal(t, 2, workloads[0].CustomerCount)
	assert.Equal(t, "140", workloads[0].OpenBalance.String())
	assert.Equal(t, model.Collector{
		CollectorCode: code,
		CollectorName: "Dana Reyes",
		Active:        true,
	}, workloads[0].Collector)
}
