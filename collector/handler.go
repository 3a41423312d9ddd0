package collector

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"arcollect/database"
	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

func ListCollectorsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collectors, err := database.GetAllCollectors(db)
		if err != nil {
			log.Printf("Error getting all collectors: %v", err)
			http.Error(w, "Failed to list collectors.", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(collectors)
	}
}

func CreateCollectorHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var input struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		input.Name = strings.TrimSpace(input.Name)
		if input.Name == "" {
			http.Error(w, "Collector name is required", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		code, err := database.CreateCollectorInTx(tx, input.Name, input.Email)
		if err != nil {
			log.Printf("Error creating collector (Name: %s): %v", input.Name, err)
			http.Error(w, "Failed to create collector: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"message":       "Collector created.",
			"collectorCode": code,
		})
	}
}

func UpdateCollectorHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var input model.Collector
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if input.CollectorCode == "" || strings.TrimSpace(input.CollectorName) == "" {
			http.Error(w, "Collector code and name are required", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.UpdateCollectorInTx(tx, input); err != nil {
			log.Printf("Error updating collector %s: %v", input.CollectorCode, err)
			http.Error(w, "Failed to update collector: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Collector updated."})
	}
}

func GetWorkloadsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workloads, err := database.GetCollectorWorkloads(db)
		if err != nil {
			log.Printf("Error getting collector workloads: %v", err)
			http.Error(w, "Failed to get workloads.", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(workloads)
	}
}

// AssignCustomerHandler points a whole customer (its row and every
// invoice) at a collector.
func AssignCustomerHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			CustomerCode  string `json:"customerCode"`
			CollectorCode string `json:"collectorCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.CustomerCode == "" {
			http.Error(w, "Customer code is required", http.StatusBadRequest)
			return
		}

		if payload.CollectorCode != "" {
			collector, err := database.GetCollectorByCode(db, payload.CollectorCode)
			if err != nil {
				http.Error(w, "Failed to validate collector: "+err.Error(), http.StatusInternalServerError)
				return
			}
			if collector == nil {
				http.Error(w, "Unknown collector: "+payload.CollectorCode, http.StatusBadRequest)
				return
			}
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		assigned, err := database.AssignCustomerInvoicesInTx(tx, payload.CustomerCode, payload.CollectorCode)
		if err != nil {
			log.Printf("ERROR: Failed to assign customer %s to collector %s: %v",
				payload.CustomerCode, payload.CollectorCode, err)
			http.Error(w, "Failed to assign customer: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":  fmt.Sprintf("Assigned customer and %d invoice(s).", assigned),
			"assigned": assigned,
		})
	}
}
