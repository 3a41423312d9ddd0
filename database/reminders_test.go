package database_test

import (
	"testing"

	"arcollect/database"
	"arcollect/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimDueRemindersOnlyOnce(t *testing.T) {
	db := openTestDB(t)
	insertTestCustomer(t, db, "C001", "Acme Corp")

	tx, err := db.Beginx()
	require.NoError(t, err)
	id, err := database.InsertReminderInTx(tx, model.Reminder{
		CustomerCode:  "C001",
		CollectorCode: "CO0001",
		DueAt:         "2026-01-01 09:00:00",
		Note:          "Call about INV-001",
		CreatedAt:     "2025-12-01 09:00:00",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	tx, err = db.Beginx()
	require.NoError(t, err)
	due, err := database.ClaimDueRemindersInTx(tx, "2026-01-02 00:00:00")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.Len(t, due, 1)
	assert.Equal(t, int(id), due[0].ID)

	// A second pass must not pick the same reminder up again.
	tx, err = db.Beginx()
	require.NoError(t, err)
	due, err = database.ClaimDueRemindersInTx(tx, "2026-01-02 00:00:00")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Empty(t, due)
}

func TestClaimDueRemindersSkipsFuture(t *testing.T) {
	db := openTestDB(t)
	insertTestCustomer(t, db, "C001", "Acme Corp")

	tx, err := db.Beginx()
	require.NoError(t, err)
	_, err = database.InsertReminderInTx(tx, model.Reminder{
		CustomerCode: "C001",
		DueAt:        "2026-06-01 09:00:00",
		CreatedAt:    "2026-01-01 09:00:00",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	tx, err = db.Beginx()
	require.NoError(t, err)
	due, err := database.ClaimDueRemindersInTx(tx, "2026-01-02 00:00:00")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Empty(t, due)
}

func TestSnoozeReArmsNotification(t *testing.T) {
	db := openTestDB(t)
	insertTestCustomer(t, db, "C001", "Acme Corp")

	tx, err := db.Beginx()
	require.NoError(t, err)
	id, err := database.InsertReminderInTx(tx, model.Reminder{
		CustomerCode: "C001",
		DueAt:        "2026-01-01 09:00:00",
		CreatedAt:    "2025-12-01 09:00:00",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	tx, err = db.Beginx()
	require.NoError(t, err)
	_, err = database.ClaimDueRemindersInTx(tx, "2026-01-02 00:00:00")
	require.NoError(t, err)
	require.NoError(t, database.SnoozeReminderInTx(tx, int(id), "2026-01-03 09:00:00"))
	require.NoError(t, tx.Commit())

	tx, err = db.Beginx()
	require.NoError(t, err)
	due, err := database.ClaimDueRemindersInTx(tx, "2026-01-04 00:00:00")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.Len(t, due, 1)
	assert.Equal(t, "2026-01-03 09:00:00", due[0].DueAt)
}

func TestCompletedRemindersAreNotClaimed(t *testing.T) {
	db := openTestDB(t)
	insertTestCustomer(t, db, "C001", "Acme Corp")

	tx, err := db.Beginx()
	require.NoError(t, err)
	id, err := database.InsertReminderInTx(tx, model.Reminder{
		CustomerCode: "C001",
		DueAt:        "2026-01-01 09:00:00",
		CreatedAt:    "2025-12-01 09:00:00",
	})
	require.NoError(t, err)
	require.NoError(t, database.CompleteReminderInTx(tx, int(id)))
	require.NoError(t, tx.Commit())

	tx, err = db.Beginx()
	require.NoError(t, err)
	due, err := database.ClaimDueRemindersInTx(tx, "2026-01-02 00:00:00")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Empty(t, due)
}
