package statuses

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"arcollect/database"

	"github.com/jmoiron/sqlx"
)

var (
	mu          sync.RWMutex
	labelMap    map[string]string
	catalogRows []database.ColorStatus
)

// Load pulls the color status catalog into memory. Call after InitDatabase
// and after any catalog change.
func Load(db *sqlx.DB) error {
	rows, err := database.GetAllColorStatuses(db)
	if err != nil {
		return fmt.Errorf("statuses.Load: %w", err)
	}
	m := make(map[string]string, len(rows))
	for _, s := range rows {
		m[s.StatusCode] = s.Label
	}

	mu.Lock()
	labelMap = m
	catalogRows = rows
	mu.Unlock()
	return nil
}

// Label resolves a status code to its display label; unknown codes come
// back unchanged.
func Label(code string) string {
	mu.RLock()
	defer mu.RUnlock()
	if name, ok := labelMap[code]; ok {
		return name
	}
	return code
}

func Catalog() []database.ColorStatus {
	mu.RLock()
	defer mu.RUnlock()
	return catalogRows
}

// GetStatusMapHandler serves the catalog for the SPA's pickers.
func GetStatusMapHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Catalog())
	}
}
