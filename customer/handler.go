package customer

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"arcollect/database"
	"arcollect/model"
	"arcollect/parsers"
	"arcollect/render"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func today() string {
	return time.Now().Format("2006-01-02")
}

func SearchCustomersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queryParams := r.URL.Query()
		filters := model.CustomerFilters{
			NameLike:      queryParams.Get("name"),
			CollectorCode: queryParams.Get("collector"),
			ColorStatus:   queryParams.Get("color_status"),
			OverdueOnly:   queryParams.Get("overdue_only") == "1",
		}
		if raw := queryParams.Get("min_balance"); raw != "" {
			min, err := decimal.NewFromString(raw)
			if err != nil {
				http.Error(w, "Invalid min_balance", http.StatusBadRequest)
				return
			}
			filters.MinOpenBalance = min
		}

		customers, err := database.GetFilteredCustomers(db, filters, today())
		if err != nil {
			log.Printf("Error fetching filtered customers: %v", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"tableHTML": render.RenderCustomerTableHTML(nil, nil, "An error occurred while searching customers."),
				"customers": []model.CustomerSummary{},
			})
			return
		}

		collectorMap, err := collectorNameMap(db)
		if err != nil {
			log.Printf("WARN: Failed to build collector map: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"tableHTML": render.RenderCustomerTableHTML(customers, collectorMap, ""),
			"customers": customers,
		}); err != nil {
			log.Printf("Error encoding customers to JSON: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

func collectorNameMap(db *sqlx.DB) (map[string]string, error) {
	collectors, err := database.GetAllCollectors(db)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(collectors))
	for _, c := range collectors {
		m[c.CollectorCode] = c.CollectorName
	}
	return m, nil
}

// GetCustomerDetailHandler returns the customer row plus its invoices,
// notes and open reminders, the payload behind the drill-down view.
func GetCustomerDetailHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/api/customers/detail/")
		if code == "" {
			http.Error(w, "Customer code is required", http.StatusBadRequest)
			return
		}

		c, err := database.GetCustomerByCode(db, code)
		if err != nil {
			log.Printf("Error retrieving customer %s: %v", code, err)
			http.Error(w, "Failed to retrieve customer", http.StatusInternalServerError)
			return
		}
		if c == nil {
			http.NotFound(w, r)
			return
		}

		invoices, err := database.GetFilteredInvoices(db, model.InvoiceFilters{CustomerCode: code}, today())
		if err != nil {
			http.Error(w, "Failed to load invoices: "+err.Error(), http.StatusInternalServerError)
			return
		}
		notes, err := database.GetNotesByCustomer(db, code)
		if err != nil {
			http.Error(w, "Failed to load notes: "+err.Error(), http.StatusInternalServerError)
			return
		}
		reminders, err := database.GetReminders(db, "", code, "", true)
		if err != nil {
			http.Error(w, "Failed to load reminders: "+err.Error(), http.StatusInternalServerError)
			return
		}

		summary := model.CustomerSummary{Customer: *c}
		todayStr := today()
		for _, inv := range invoices {
			if inv.Status == model.InvoiceStatusOpen {
				summary.OpenBalance = summary.OpenBalance.Add(inv.Balance)
				summary.OpenInvoices++
				if inv.DueDate < todayStr {
					summary.OverdueCount++
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.CustomerDetail{
			Customer:  summary,
			Invoices:  invoices,
			Notes:     notes,
			Reminders: reminders,
		})
	}
}

func SetColorStatusHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			CustomerCode string `json:"customerCode"`
			StatusCode   string `json:"statusCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.CustomerCode == "" || payload.StatusCode == "" {
			http.Error(w, "Customer code and status code are required", http.StatusBadRequest)
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

		if err := database.SetCustomerColorStatus(tx, payload.CustomerCode, payload.StatusCode); err != nil {
			log.Printf("ERROR: Failed to set color status for customer %s: %v", payload.CustomerCode, err)
			http.Error(w, "Failed to set color status: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Color status updated."})
	}
}

// ImportCustomersHandler bulk-loads a customer master CSV, for sites that
// bootstrap the portal before the ERP sync is configured.
func ImportCustomersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "Failed to read CSV file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		records, err := parsers.ParseCustomerCSV(file)
		if err != nil {
			http.Error(w, "Failed to parse CSV file: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(records) == 0 {
			http.Error(w, "No rows to import from CSV.", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction: "+err.Error(), http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		importedAt := time.Now().Format("2006-01-02 15:04:05")
		for _, rec := range records {
			c := model.Customer{
				CustomerCode: rec.CustomerCode,
				CustomerName: rec.CustomerName,
				Email:        rec.Email,
				Phone:        rec.Phone,
				Terms:        rec.Terms,
				CreditLimit:  rec.CreditLimit,
				ErpLastSync:  importedAt,
			}
			if err := database.UpsertCustomerInTx(tx, c); err != nil {
				http.Error(w, "Failed to import customer "+rec.CustomerCode+": "+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":  "Customer import complete.",
			"imported": len(records),
		})
	}
}
