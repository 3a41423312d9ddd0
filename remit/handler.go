package remit

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"arcollect/database"

	"github.com/jmoiron/sqlx"
)

// ImportRemittanceHandler accepts a multipart remittance CSV upload.
func ImportRemittanceHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "Failed to read uploaded file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		result, err := ImportRemittanceStream(db, file)
		if err != nil {
			log.Printf("ERROR: Remittance import failed: %v", err)
			http.Error(w, "Remittance import failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// GetPaymentsHandler lists a customer's payments.
func GetPaymentsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerCode := r.URL.Query().Get("customer")
		if customerCode == "" {
			http.Error(w, "customer is required", http.StatusBadRequest)
			return
		}
		payments, err := database.GetPaymentsByCustomer(db, customerCode)
		if err != nil {
			http.Error(w, "Failed to load payments: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payments)
	}
}

// GetApplicationsHandler lists the applications recorded against an invoice.
func GetApplicationsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceNumber := strings.TrimPrefix(r.URL.Path, "/api/payments/applications/")
		if invoiceNumber == "" {
			http.Error(w, "Invoice number is required", http.StatusBadRequest)
			return
		}
		apps, err := database.GetApplicationsByInvoice(db, invoiceNumber)
		if err != nil {
			http.Error(w, "Failed to load applications: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(apps)
	}
}
