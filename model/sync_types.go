package model

const (
	SyncPhaseRunning   = "running"
	SyncPhasePaused    = "paused"
	SyncPhaseMilestone = "milestone"
	SyncPhaseCompleted = "completed"
	SyncPhaseCanceled  = "canceled"
	SyncPhaseFailed    = "failed"
)

type SyncRun struct {
	RunID           string `db:"run_id" json:"runId"`
	Entity          string `db:"entity" json:"entity"`
	Phase           string `db:"phase" json:"phase"`
	PagesFetched    int    `db:"pages_fetched" json:"pagesFetched"`
	RecordsUpserted int    `db:"records_upserted" json:"recordsUpserted"`
	Error           string `db:"error" json:"error"`
	StartedAt       string `db:"started_at" json:"startedAt"`
	FinishedAt      string `db:"finished_at" json:"finishedAt"`
}
