package collector

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"arcollect/database"
	"arcollect/loader"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, loader.ApplySchemaFile(db, "../schema.sql"))

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, database.InitializeCollectorSequence(tx))
	require.NoError(t, tx.Commit())
	return db
}

func TestCreateCollectorHandlerRespondsJSON(t *testing.T) {
	db := openTestDB(t)

	req := httptest.NewRequest(http.MethodPost, "/api/collectors/create",
		strings.NewReader(`{"name":"Dana Reeve","email":"dana@example.com"}`))
	rec := httptest.NewRecorder()
	CreateCollectorHandler(db)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CO0001", resp["collectorCode"])
}

func TestCreateCollectorHandlerRequiresName(t *testing.T) {
	db := openTestDB(t)

	req := httptest.NewRequest(http.MethodPost, "/api/collectors/create",
		strings.NewReader(`{"name":"  ","email":"x@example.com"}`))
	rec := httptest.NewRecorder()
	CreateCollectorHandler(db)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
