package analytics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"arcollect/database"

	"github.com/jmoiron/sqlx"
)

// periodFromQuery reads from/to query params, defaulting to the last 30
// days. Bounds are full-day timestamps so they compare against the
// "YYYY-MM-DD HH:MM:SS" columns.
func periodFromQuery(r *http.Request) (string, string) {
	q := r.URL.Query()
	from := q.Get("from")
	to := q.Get("to")
	if from == "" {
		from = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}
	if to == "" {
		to = time.Now().Format("2006-01-02")
	}
	return from + " 00:00:00", to + " 23:59:59"
}

func GetDashboardHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to := periodFromQuery(r)
		dashboard, err := BuildDashboard(db, from, to)
		if err != nil {
			log.Printf("ERROR: Failed to build dashboard: %v", err)
			http.Error(w, "Failed to build dashboard: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dashboard)
	}
}

// ExportAgingCSVHandler writes the per-collector aging report as CSV.
func ExportAgingCSVHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf := asOfDate()
		rows, err := database.GetOpenInvoiceRows(db)
		if err != nil {
			http.Error(w, "Failed to load invoices: "+err.Error(), http.StatusInternalServerError)
			return
		}
		collectors, err := database.GetAllCollectors(db)
		if err != nil {
			http.Error(w, "Failed to load collectors: "+err.Error(), http.StatusInternalServerError)
			return
		}
		names := make(map[string]string)
		for _, c := range collectors {
			names[c.CollectorCode] = c.CollectorName
		}
		aging := ComputeCollectorAging(rows, asOf, names)

		filename := fmt.Sprintf("aging_%s.csv", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			"attachment; filename*=UTF-8''"+url.PathEscape(filename))

		// BOM so spreadsheet software detects UTF-8.
		w.Write([]byte{0xEF, 0xBB, 0xBF})

		cw := csv.NewWriter(w)
		header := []string{"collector_code", "collector_name"}
		for _, name := range BucketNames {
			header = append(header, name+"_count", name+"_balance")
		}
		header = append(header, "total")
		cw.Write(header)

		for _, ca := range aging {
			record := []string{ca.CollectorCode, ca.CollectorName}
			for _, b := range ca.Buckets {
				record = append(record, fmt.Sprintf("%d", b.Count), b.Balance.StringFixed(2))
			}
			record = append(record, ca.Total.StringFixed(2))
			cw.Write(record)
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			log.Printf("ERROR: Failed to write aging CSV: %v", err)
		}
	}
}
