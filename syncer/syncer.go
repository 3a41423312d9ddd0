// Package syncer drives ERP synchronization: page-by-page batch fetches of
// customers, invoices and payments with operator pause/resume/cancel and
// automatic milestone pausing every N pages.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"arcollect/acumatica"
	"arcollect/config"
	"arcollect/database"
	"arcollect/mappers"
	"arcollect/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSyncActive = errors.New("a sync run is already active")
	ErrNoSyncRun  = errors.New("no sync run is active")
)

const timeLayout = "2006-01-02 15:04:05"

// Status is the snapshot the status endpoint returns.
type Status struct {
	Active bool          `json:"active"`
	Run    model.SyncRun `json:"run"`
}

type runner struct {
	mu       sync.Mutex
	active   bool
	paused   bool
	canceled bool
	run      model.SyncRun
}

var state runner

// Start kicks off a sync run in the background. Only one run at a time.
func Start(db *sqlx.DB) error {
	return start(db, config.GetConfig())
}

func start(db *sqlx.DB, cfg config.Config) error {
	if cfg.ErpBaseURL == "" || cfg.ErpUsername == "" {
		return errors.New("ERP connection is not configured")
	}

	client, err := acumatica.NewClient(cfg.ErpBaseURL, cfg.ErpUsername, cfg.ErpPassword, cfg.ErpCompany, cfg.SyncPageSize)
	if err != nil {
		return err
	}

	state.mu.Lock()
	if state.active {
		state.mu.Unlock()
		return ErrSyncActive
	}
	run := model.SyncRun{
		RunID:     uuid.NewString(),
		Entity:    "customers",
		Phase:     model.SyncPhaseRunning,
		StartedAt: time.Now().Format(timeLayout),
	}
	state.active = true
	state.paused = false
	state.canceled = false
	state.run = run
	state.mu.Unlock()

	if err := database.InsertSyncRun(db, run); err != nil {
		state.mu.Lock()
		state.active = false
		state.mu.Unlock()
		return err
	}

	go runSync(db, client, cfg)
	return nil
}

func Pause() error {
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.active {
		return ErrNoSyncRun
	}
	state.paused = true
	state.run.Phase = model.SyncPhasePaused
	return nil
}

func Resume() error {
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.active {
		return ErrNoSyncRun
	}
	state.paused = false
	if state.run.Phase == model.SyncPhasePaused || state.run.Phase == model.SyncPhaseMilestone {
		state.run.Phase = model.SyncPhaseRunning
	}
	return nil
}

func Cancel() error {
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.active {
		return ErrNoSyncRun
	}
	state.canceled = true
	state.paused = false
	return nil
}

func GetStatus() Status {
	state.mu.Lock()
	defer state.mu.Unlock()
	return Status{Active: state.active, Run: state.run}
}

func setPhase(phase string) {
	state.mu.Lock()
	state.run.Phase = phase
	state.mu.Unlock()
}

func addProgress(entity string, pages, records int) (int, int) {
	state.mu.Lock()
	state.run.Entity = entity
	state.run.PagesFetched += pages
	state.run.RecordsUpserted += records
	p, r := state.run.PagesFetched, state.run.RecordsUpserted
	state.mu.Unlock()
	return p, r
}

// waitWhilePaused blocks at a page boundary while the operator (or a
// milestone) holds the run. Returns false when the run was canceled.
func waitWhilePaused() bool {
	for {
		state.mu.Lock()
		canceled := state.canceled
		paused := state.paused
		state.mu.Unlock()
		if canceled {
			return false
		}
		if !paused {
			return true
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func finish(db *sqlx.DB, runID, phase, errMsg string) {
	finishedAt := time.Now().Format(timeLayout)
	state.mu.Lock()
	state.active = false
	state.run.Phase = phase
	state.run.Error = errMsg
	state.run.FinishedAt = finishedAt
	state.mu.Unlock()
	if err := database.FinishSyncRun(db, runID, phase, errMsg, finishedAt); err != nil {
		log.Printf("ERROR: Failed to persist sync run result: %v", err)
	}
}

func runSync(db *sqlx.DB, client *acumatica.Client, cfg config.Config) {
	ctx := context.Background()
	runID := GetStatus().Run.RunID
	syncedAt := time.Now().Format(timeLayout)

	log.Printf("Sync run %s starting against %s", runID, cfg.ErpBaseURL)
	if err := client.Login(ctx); err != nil {
		log.Printf("ERROR: Sync run %s login failed: %v", runID, err)
		finish(db, runID, model.SyncPhaseFailed, err.Error())
		return
	}
	defer func() {
		if err := client.Logout(ctx); err != nil {
			log.Printf("WARN: ERP logout failed: %v", err)
		}
	}()

	entities := []string{"customers", "invoices", "payments"}
	for _, entity := range entities {
		if err := syncEntity(ctx, db, client, cfg, entity, syncedAt); err != nil {
			if errors.Is(err, errCanceled) {
				log.Printf("Sync run %s canceled during %s", runID, entity)
				finish(db, runID, model.SyncPhaseCanceled, "")
				return
			}
			log.Printf("ERROR: Sync run %s failed during %s: %v", runID, entity, err)
			finish(db, runID, model.SyncPhaseFailed, err.Error())
			return
		}
	}

	if err := applyNewPayments(db); err != nil {
		log.Printf("ERROR: Sync run %s payment application failed: %v", runID, err)
		finish(db, runID, model.SyncPhaseFailed, err.Error())
		return
	}

	log.Printf("Sync run %s completed.", runID)
	finish(db, runID, model.SyncPhaseCompleted, "")
}

var errCanceled = errors.New("sync canceled")

func syncEntity(ctx context.Context, db *sqlx.DB, client *acumatica.Client, cfg config.Config, entity, syncedAt string) error {
	runID := GetStatus().Run.RunID
	pageDelay := time.Duration(cfg.SyncPageDelayMs) * time.Millisecond

	skip := 0
	entityPages := 0
	for {
		if !waitWhilePaused() {
			return errCanceled
		}
		setPhase(model.SyncPhaseRunning)

		count, err := fetchAndUpsertPage(ctx, db, client, entity, skip, syncedAt)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}

		entityPages++
		pages, records := addProgress(entity, 1, count)
		if err := database.UpdateSyncRunProgress(db, runID, entity, model.SyncPhaseRunning, pages, records); err != nil {
			log.Printf("WARN: Failed to persist sync progress: %v", err)
		}

		if count < cfg.SyncPageSize {
			return nil
		}
		skip += cfg.SyncPageSize

		// Milestone pause: hold at the boundary until the operator resumes.
		if cfg.SyncMilestonePages > 0 && entityPages%cfg.SyncMilestonePages == 0 {
			log.Printf("Sync run %s reached milestone at %d %s pages, pausing.", runID, entityPages, entity)
			state.mu.Lock()
			state.paused = true
			state.run.Phase = model.SyncPhaseMilestone
			state.mu.Unlock()
			continue
		}

		time.Sleep(pageDelay)
	}
}

func fetchAndUpsertPage(ctx context.Context, db *sqlx.DB, client *acumatica.Client, entity string, skip int, syncedAt string) (int, error) {
	switch entity {
	case "customers":
		page, err := client.FetchCustomersPage(ctx, skip)
		if err != nil {
			return 0, err
		}
		if len(page) == 0 {
			return 0, nil
		}
		tx, err := db.Beginx()
		if err != nil {
			return 0, fmt.Errorf("failed to start customer upsert transaction: %w", err)
		}
		defer tx.Rollback()
		for _, e := range page {
			if err := database.UpsertCustomerInTx(tx, mappers.MapErpCustomer(e, syncedAt)); err != nil {
				return 0, err
			}
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit customer page: %w", err)
		}
		return len(page), nil

	case "invoices":
		page, err := client.FetchInvoicesPage(ctx, skip)
		if err != nil {
			return 0, err
		}
		if len(page) == 0 {
			return 0, nil
		}
		tx, err := db.Beginx()
		if err != nil {
			return 0, fmt.Errorf("failed to start invoice upsert transaction: %w", err)
		}
		defer tx.Rollback()
		for _, e := range page {
			if err := database.UpsertInvoiceInTx(tx, mappers.MapErpInvoice(e, syncedAt)); err != nil {
				return 0, err
			}
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit invoice page: %w", err)
		}
		return len(page), nil

	case "payments":
		page, err := client.FetchPaymentsPage(ctx, skip)
		if err != nil {
			return 0, err
		}
		if len(page) == 0 {
			return 0, nil
		}
		tx, err := db.Beginx()
		if err != nil {
			return 0, fmt.Errorf("failed to start payment upsert transaction: %w", err)
		}
		defer tx.Rollback()
		for _, e := range page {
			if _, err := database.UpsertPaymentInTx(tx, mappers.MapErpPayment(e)); err != nil {
				return 0, err
			}
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit payment page: %w", err)
		}
		return len(page), nil
	}
	return 0, fmt.Errorf("unknown sync entity %q", entity)
}

// applyNewPayments consumes any unapplied payment amounts against open
// invoices, oldest due first.
func applyNewPayments(db *sqlx.DB) error {
	var refs []string
	if err := db.Select(&refs, `SELECT payment_ref FROM payments WHERE unapplied != '0' ORDER BY payment_date, payment_ref`); err != nil {
		return fmt.Errorf("failed to list unapplied payments: %w", err)
	}
	if len(refs) == 0 {
		return nil
	}

	appliedAt := time.Now().Format(timeLayout)
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start payment application transaction: %w", err)
	}
	defer tx.Rollback()
	for _, ref := range refs {
		if err := database.ApplyPaymentInTx(tx, ref, appliedAt); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment applications: %w", err)
	}
	log.Printf("Applied %d payment(s) to open invoices.", len(refs))
	return nil
}
