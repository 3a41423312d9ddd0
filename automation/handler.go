package automation

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"arcollect/config"
	"arcollect/remit"

	"github.com/jmoiron/sqlx"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// FetchLockboxHandler downloads the next remittance file from the lockbox
// portal and imports it.
func FetchLockboxHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		cfg := config.GetConfig()
		if cfg.LockboxURL == "" || cfg.LockboxUserID == "" || cfg.LockboxPassword == "" {
			writeJSONError(w, "Lockbox portal URL and credentials are not configured.", http.StatusBadRequest)
			return
		}

		saveDir := cfg.LockboxFolderPath
		if saveDir == "" {
			saveDir = os.TempDir()
			log.Printf("No lockbox folder configured, using temp dir: %s", saveDir)
		}

		log.Println("Starting lockbox automation...")
		filePath, err := DownloadRemittance(cfg.LockboxURL, cfg.LockboxUserID, cfg.LockboxPassword, saveDir)
		if err != nil {
			log.Printf("Automation Error: %v", err)
			writeJSONError(w, "Lockbox download failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		if filePath == StatusNoData {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "no_data",
				"message": "No unretrieved remittance files.",
			})
			return
		}

		log.Printf("Importing downloaded remittance file: %s", filePath)
		file, err := os.Open(filePath)
		if err != nil {
			writeJSONError(w, "Failed to open downloaded file: "+err.Error(), http.StatusInternalServerError)
			return
		}
		defer file.Close()

		result, err := remit.ImportRemittanceStream(db, file)
		if err != nil {
			writeJSONError(w, "Remittance import failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "success",
			"message":  fmt.Sprintf("Downloaded and imported %d payment(s).", result.Imported),
			"filePath": filePath,
			"result":   result,
		})
	}
}
