package database

import (
	"database/sql"
	"fmt"

	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

func InsertSyncRun(db *sqlx.DB, run model.SyncRun) error {
	const q = `
		INSERT INTO sync_runs (run_id, entity, phase, pages_fetched, records_upserted, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(q, run.RunID, run.Entity, run.Phase, run.PagesFetched,
		run.RecordsUpserted, run.Error, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sync run %s: %w", run.RunID, err)
	}
	return nil
}

func UpdateSyncRunProgress(db *sqlx.DB, runID, entity, phase string, pages, records int) error {
	const q = `
		UPDATE sync_runs SET entity = ?, phase = ?, pages_fetched = ?, records_upserted = ?
		WHERE run_id = ?`
	_, err := db.Exec(q, entity, phase, pages, records, runID)
	if err != nil {
		return fmt.Errorf("failed to update sync run %s: %w", runID, err)
	}
	return nil
}

func FinishSyncRun(db *sqlx.DB, runID, phase, errMsg, finishedAt string) error {
	const q = `UPDATE sync_runs SET phase = ?, error = ?, finished_at = ? WHERE run_id = ?`
	_, err := db.Exec(q, phase, errMsg, finishedAt, runID)
	if err != nil {
		return fmt.Errorf("failed to finish sync run %s: %w", runID, err)
	}
	return nil
}

func GetLatestSyncRun(dbtx DBTX) (*model.SyncRun, error) {
	var run model.SyncRun
	const q = `
		SELECT run_id, entity, phase, pages_fetched, records_upserted, error, started_at, finished_at
		FROM sync_runs ORDER BY started_at DESC LIMIT 1`
	if err := dbtx.Get(&run, q); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest sync run: %w", err)
	}
	return &run, nil
}

func GetSyncRuns(dbtx DBTX, limit int) ([]model.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []model.SyncRun
	const q = `
		SELECT run_id, entity, phase, pages_fetched, records_upserted, error, started_at, finished_at
		FROM sync_runs ORDER BY started_at DESC LIMIT ?`
	if err := dbtx.Select(&runs, q, limit); err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}
