package invoice

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"arcollect/database"
	"arcollect/model"
	"arcollect/render"
	"arcollect/statuses"

	"github.com/jmoiron/sqlx"
)

func today() string {
	return time.Now().Format("2006-01-02")
}

func filtersFromQuery(r *http.Request) model.InvoiceFilters {
	q := r.URL.Query()
	return model.InvoiceFilters{
		CustomerCode:  q.Get("customer"),
		CollectorCode: q.Get("collector"),
		ColorStatus:   q.Get("color_status"),
		AgingBucket:   q.Get("aging_bucket"),
		DueFrom:       q.Get("due_from"),
		DueTo:         q.Get("due_to"),
		OpenOnly:      q.Get("open_only") != "0",
	}
}

func SearchInvoicesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoices, err := database.GetFilteredInvoices(db, filtersFromQuery(r), today())
		if err != nil {
			log.Printf("Error fetching filtered invoices: %v", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"tableHTML": render.RenderInvoiceTableHTML(nil, nil, "An error occurred while searching invoices."),
				"invoices":  []model.Invoice{},
			})
			return
		}

		collectors, err := database.GetAllCollectors(db)
		if err != nil {
			log.Printf("WARN: Failed to load collectors for invoice table: %v", err)
		}
		collectorMap := make(map[string]string, len(collectors))
		for _, c := range collectors {
			collectorMap[c.CollectorCode] = c.CollectorName
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"tableHTML": render.RenderInvoiceTableHTML(invoices, collectorMap, ""),
			"invoices":  invoices,
		}); err != nil {
			log.Printf("Error encoding invoices to JSON: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// AssignCollectorHandler assigns a collector to one or more invoices.
func AssignCollectorHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			InvoiceNumbers []string `json:"invoiceNumbers"`
			CollectorCode  string   `json:"collectorCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if len(payload.InvoiceNumbers) == 0 {
			http.Error(w, "At least one invoice number is required", http.StatusBadRequest)
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

		assigned, err := database.AssignCollectorToInvoicesInTx(tx, payload.InvoiceNumbers, payload.CollectorCode)
		if err != nil {
			log.Printf("ERROR: Failed to assign collector %s: %v", payload.CollectorCode, err)
			http.Error(w, "Failed to assign collector: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":  fmt.Sprintf("Assigned %d invoice(s).", assigned),
			"assigned": assigned,
		})
	}
}

// SetColorStatusHandler updates the invoice color status; a "promised"
// status carries a promise-to-pay date.
func SetColorStatusHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			InvoiceNumber string `json:"invoiceNumber"`
			StatusCode    string `json:"statusCode"`
			PromiseDate   string `json:"promiseDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.InvoiceNumber == "" || payload.StatusCode == "" {
			http.Error(w, "Invoice number and status code are required", http.StatusBadRequest)
			return
		}
		if payload.StatusCode == "promised" && payload.PromiseDate == "" {
			http.Error(w, "A promised status requires a promise date", http.StatusBadRequest)
			return
		}

		valid, err := database.ColorStatusExists(db, payload.StatusCode)
		if err != nil {
			http.Error(w, "Failed to validate status: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if !valid {
			http.Error(w, "Unknown color status: "+payload.StatusCode, http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.SetInvoiceColorStatusInTx(tx, payload.InvoiceNumber, payload.StatusCode, payload.PromiseDate); err != nil {
			log.Printf("ERROR: Failed to set color status for invoice %s: %v", payload.InvoiceNumber, err)
			http.Error(w, "Failed to set color status: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Invoice status updated."})
	}
}

// ExportInvoicesCSVHandler streams the filtered invoice list as a CSV
// download.
func ExportInvoicesCSVHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoices, err := database.GetFilteredInvoices(db, filtersFromQuery(r), today())
		if err != nil {
			http.Error(w, "Failed to query invoices: "+err.Error(), http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		buf.Write([]byte{0xEF, 0xBB, 0xBF})
		writer := csv.NewWriter(&buf)

		header := []string{
			"invoice_number", "customer_code", "customer_name", "invoice_date", "due_date",
			"amount", "balance", "status", "color_status", "collector_code", "promise_date",
		}
		if err := writer.Write(header); err != nil {
			http.Error(w, "Failed to write CSV header: "+err.Error(), http.StatusInternalServerError)
			return
		}

		for _, inv := range invoices {
			row := []string{
				inv.InvoiceNumber,
				inv.CustomerCode,
				inv.CustomerName,
				inv.InvoiceDate,
				inv.DueDate,
				inv.Amount.StringFixed(2),
				inv.Balance.StringFixed(2),
				inv.Status,
				statuses.Label(inv.ColorStatus),
				inv.CollectorCode,
				inv.PromiseDate,
			}
			if err := writer.Write(row); err != nil {
				log.Printf("WARN: Failed to write invoice row to CSV (Invoice: %s): %v", inv.InvoiceNumber, err)
			}
		}
		writer.Flush()

		if err := writer.Error(); err != nil {
			http.Error(w, "Failed to flush CSV writer: "+err.Error(), http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("invoices_%s.csv", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
		w.Write(buf.Bytes())
	}
}
