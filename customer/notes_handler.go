package customer

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

func ListNotesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("customer")
		if code == "" {
			http.Error(w, "Customer code is required", http.StatusBadRequest)
			return
		}
		notes, err := database.GetNotesByCustomer(db, code)
		if err != nil {
			http.Error(w, "Failed to load notes: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(notes)
	}
}

func AddNoteHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			CustomerCode  string `json:"customerCode"`
			InvoiceNumber string `json:"invoiceNumber"`
			CollectorCode string `json:"collectorCode"`
			Body          string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.CustomerCode == "" || strings.TrimSpace(payload.Body) == "" {
			http.Error(w, "Customer code and note body are required", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		note := model.Note{
			CustomerCode:  payload.CustomerCode,
			InvoiceNumber: payload.InvoiceNumber,
			CollectorCode: payload.CollectorCode,
			Body:          strings.TrimSpace(payload.Body),
			CreatedAt:     time.Now().Format("2006-01-02 15:04:05"),
		}
		id, err := database.InsertNoteInTx(tx, note)
		if err != nil {
			log.Printf("ERROR: Failed to add note for customer %s: %v", payload.CustomerCode, err)
			http.Error(w, "Failed to add note: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		note.ID = int(id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(note)
	}
}

func DeleteNoteHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimPrefix(r.URL.Path, "/api/notes/delete/")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			http.Error(w, "Invalid note id", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.DeleteNoteInTx(tx, id); err != nil {
			http.Error(w, "Failed to delete note: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Note deleted."})
	}
}
