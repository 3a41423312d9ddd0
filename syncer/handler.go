package syncer

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"arcollect/database"

	"github.com/jmoiron/sqlx"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func StartSyncHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := Start(db); err != nil {
			if errors.Is(err, ErrSyncActive) {
				writeJSONError(w, "A sync run is already active.", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to start sync: %v", err)
			writeJSONError(w, "Failed to start sync: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GetStatus())
	}
}

func PauseSyncHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := Pause(); err != nil {
			writeJSONError(w, "No sync run is active.", http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Sync will pause at the next page boundary."})
	}
}

func ResumeSyncHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := Resume(); err != nil {
			writeJSONError(w, "No sync run is active.", http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Sync resumed."})
	}
}

func CancelSyncHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := Cancel(); err != nil {
			writeJSONError(w, "No sync run is active.", http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Sync canceled."})
	}
}

// GetSyncStatusHandler returns the live run when one is active, otherwise
// the most recent persisted run.
func GetSyncStatusHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := GetStatus()
		if !status.Active {
			latest, err := database.GetLatestSyncRun(db)
			if err != nil {
				writeJSONError(w, "Failed to load sync status: "+err.Error(), http.StatusInternalServerError)
				return
			}
			if latest != nil {
				status.Run = *latest
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

func ListSyncRunsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := database.GetSyncRuns(db, 20)
		if err != nil {
			writeJSONError(w, "Failed to list sync runs: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runs)
	}
}
