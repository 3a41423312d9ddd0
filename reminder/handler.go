package reminder

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"arcollect/database"
	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

const timeLayout = "2006-01-02 15:04:05"

func ListRemindersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		reminders, err := database.GetReminders(db,
			q.Get("collector"), q.Get("customer"), q.Get("due_before"), q.Get("open_only") != "0")
		if err != nil {
			http.Error(w, "Failed to list reminders: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reminders)
	}
}

// GetDueRemindersHandler lists open reminders due now or earlier,
// optionally scoped to one collector.
func GetDueRemindersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(timeLayout)
		reminders, err := database.GetReminders(db, r.URL.Query().Get("collector"), "", now, true)
		if err != nil {
			http.Error(w, "Failed to list due reminders: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reminders)
	}
}

func CreateReminderHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			CustomerCode  string `json:"customerCode"`
			InvoiceNumber string `json:"invoiceNumber"`
			CollectorCode string `json:"collectorCode"`
			DueAt         string `json:"dueAt"`
			Note          string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.CustomerCode == "" || payload.DueAt == "" {
			http.Error(w, "Customer code and due timestamp are required", http.StatusBadRequest)
			return
		}
		if _, err := time.Parse(timeLayout, payload.DueAt); err != nil {
			http.Error(w, "dueAt must be formatted as "+timeLayout, http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		rem := model.Reminder{
			CustomerCode:  payload.CustomerCode,
			InvoiceNumber: payload.InvoiceNumber,
			CollectorCode: payload.CollectorCode,
			DueAt:         payload.DueAt,
			Note:          payload.Note,
			CreatedAt:     time.Now().Format(timeLayout),
		}
		id, err := database.InsertReminderInTx(tx, rem)
		if err != nil {
			log.Printf("ERROR: Failed to create reminder for customer %s: %v", payload.CustomerCode, err)
			http.Error(w, "Failed to create reminder: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		rem.ID = int(id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rem)
	}
}

func CompleteReminderHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimPrefix(r.URL.Path, "/api/reminders/complete/")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			http.Error(w, "Invalid reminder id", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.CompleteReminderInTx(tx, id); err != nil {
			http.Error(w, "Failed to complete reminder: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Reminder completed."})
	}
}

func SnoozeReminderHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			ID    int    `json:"id"`
			DueAt string `json:"dueAt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.ID == 0 || payload.DueAt == "" {
			http.Error(w, "Reminder id and new due timestamp are required", http.StatusBadRequest)
			return
		}
		if _, err := time.Parse(timeLayout, payload.DueAt); err != nil {
			http.Error(w, "dueAt must be formatted as "+timeLayout, http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.SnoozeReminderInTx(tx, payload.ID, payload.DueAt); err != nil {
			http.Error(w, "Failed to snooze reminder: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Reminder snoozed."})
	}
}
