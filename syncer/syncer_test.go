package syncer

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"arcollect/config"
	"arcollect/database"
	"arcollect/loader"
	"arcollect/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// The run goroutine shares the pool; a second connection would see a
	// fresh empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, loader.ApplySchemaFile(db, "../schema.sql"))
	return db
}

// resetRunner clears the package-level run state between tests.
func resetRunner(t *testing.T) {
	t.Helper()
	state.mu.Lock()
	state.active = false
	state.paused = false
	state.canceled = false
	state.run = model.SyncRun{}
	state.mu.Unlock()
}

// erpStub is a scripted ERP server. Customer page requests report their
// $skip value on requests and block until the test supplies a page body;
// invoice and payment pages are always empty.
type erpStub struct {
	url      string
	requests chan int
	pages    chan string
}

func startErpStub(t *testing.T) *erpStub {
	t.Helper()
	stub := &erpStub{
		requests: make(chan int, 16),
		pages:    make(chan string),
	}

	emptyPage := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "[]")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/entity/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/entity/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/entity/Default/24.200.001/Customer", func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("$skip"))
		stub.requests <- skip
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, <-stub.pages)
	})
	mux.HandleFunc("/entity/Default/24.200.001/Invoice", emptyPage)
	mux.HandleFunc("/entity/Default/24.200.001/Payment", emptyPage)

	srv := httptest.NewServer(mux)
	stub.url = srv.URL
	t.Cleanup(srv.Close)
	// Unblocks any handler still waiting for a page when a test bails out.
	t.Cleanup(func() { close(stub.pages) })
	return stub
}

func (s *erpStub) expectRequest(t *testing.T) int {
	t.Helper()
	select {
	case skip := <-s.requests:
		return skip
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an ERP page request")
		return 0
	}
}

func (s *erpStub) expectNoRequest(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case skip := <-s.requests:
		t.Fatalf("unexpected ERP page request at $skip=%d", skip)
	case <-time.After(within):
	}
}

// serveCustomers answers the pending request with a single-record page,
// which is a full page at the test page size of 1.
func (s *erpStub) serveCustomers(n int) {
	s.pages <- fmt.Sprintf(
		`[{"CustomerID":{"value":"C%03d"},"CustomerName":{"value":"Customer %d"}}]`, n, n)
}

func (s *erpStub) serveEmpty() {
	s.pages <- "[]"
}

func stubConfig(url string) config.Config {
	return config.Config{
		ErpBaseURL:   url,
		ErpUsername:  "sync",
		ErpPassword:  "secret",
		SyncPageSize: 1,
	}
}

func waitForInactive(t *testing.T) model.SyncRun {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		st := GetStatus()
		if !st.Active {
			return st.Run
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("sync run did not finish in time")
	return model.SyncRun{}
}

func TestStartRejectsConcurrentRun(t *testing.T) {
	resetRunner(t)
	db := openTestDB(t)
	stub := startErpStub(t)

	require.Error(t, start(db, config.Config{}), "unconfigured ERP must not start")

	require.NoError(t, start(db, stubConfig(stub.url)))
	stub.expectRequest(t)

	assert.ErrorIs(t, start(db, stubConfig(stub.url)), ErrSyncActive)

	stub.serveEmpty()
	run := waitForInactive(t)
	assert.Equal(t, model.SyncPhaseCompleted, run.Phase)

	// A finished run no longer blocks the next one.
	require.NoError(t, start(db, stubConfig(stub.url)))
	stub.expectRequest(t)
	stub.serveEmpty()
	run = waitForInactive(t)
	assert.Equal(t, model.SyncPhaseCompleted, run.Phase)

	runs, err := database.GetSyncRuns(db, 20)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestPauseHoldsAtPageBoundaryUntilResume(t *testing.T) {
	resetRunner(t)
	db := openTestDB(t)
	stub := startErpStub(t)

	require.NoError(t, start(db, stubConfig(stub.url)))

	assert.Equal(t, 0, stub.expectRequest(t))
	require.NoError(t, Pause())
	stub.serveCustomers(0)

	// The in-flight page completes but no further page is requested.
	stub.expectNoRequest(t, 1200*time.Millisecond)
	st := GetStatus()
	assert.True(t, st.Active)
	assert.Equal(t, model.SyncPhasePaused, st.Run.Phase)
	assert.Equal(t, 1, st.Run.PagesFetched)

	require.NoError(t, Resume())
	assert.Equal(t, 1, stub.expectRequest(t))
	stub.serveEmpty()

	run := waitForInactive(t)
	assert.Equal(t, model.SyncPhaseCompleted, run.Phase)
	assert.Equal(t, 1, run.PagesFetched)
	assert.Equal(t, 1, run.RecordsUpserted)
}

func TestMilestonePausesAfterConfiguredPages(t *testing.T) {
	resetRunner(t)
	db := openTestDB(t)
	stub := startErpStub(t)

	cfg := stubConfig(stub.url)
	cfg.SyncMilestonePages = 2
	require.NoError(t, start(db, cfg))

	assert.Equal(t, 0, stub.expectRequest(t))
	stub.serveCustomers(0)
	assert.Equal(t, 1, stub.expectRequest(t))
	stub.serveCustomers(1)

	// Two pages in: the run holds itself until an operator resumes.
	stub.expectNoRequest(t, 1200*time.Millisecond)
	st := GetStatus()
	assert.True(t, st.Active)
	assert.Equal(t, model.SyncPhaseMilestone, st.Run.Phase)
	assert.Equal(t, 2, st.Run.PagesFetched)

	require.NoError(t, Resume())
	assert.Equal(t, 2, stub.expectRequest(t))
	stub.serveEmpty()

	run := waitForInactive(t)
	assert.Equal(t, model.SyncPhaseCompleted, run.Phase)
	assert.Equal(t, 2, run.PagesFetched)
	assert.Equal(t, 2, run.RecordsUpserted)
}

func TestCancelFinishesRunAsCanceled(t *testing.T) {
	resetRunner(t)
	db := openTestDB(t)
	stub := startErpStub(t)

	require.NoError(t, start(db, stubConfig(stub.url)))

	stub.expectRequest(t)
	require.NoError(t, Cancel())
	stub.serveCustomers(0)

	run := waitForInactive(t)
	assert.Equal(t, model.SyncPhaseCanceled, run.Phase)
	assert.Empty(t, run.Error)

	persisted, err := database.GetLatestSyncRun(db)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, model.SyncPhaseCanceled, persisted.Phase)
	assert.NotEmpty(t, persisted.FinishedAt)

	assert.ErrorIs(t, Cancel(), ErrNoSyncRun)
}
