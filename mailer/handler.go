package mailer

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"arcollect/database"
	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

func SendEmailHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload struct {
			CustomerCode  string `json:"customerCode"`
			TemplateName  string `json:"templateName"`
			Recipient     string `json:"recipient"`
			CollectorCode string `json:"collectorCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.CustomerCode == "" || payload.TemplateName == "" {
			http.Error(w, "Customer code and template name are required", http.StatusBadRequest)
			return
		}

		subject, err := Send(db, payload.CustomerCode, payload.TemplateName, payload.Recipient, payload.CollectorCode)
		if err != nil {
			log.Printf("ERROR: Failed to send %s email to customer %s: %v",
				payload.TemplateName, payload.CustomerCode, err)
			http.Error(w, "Failed to send email: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Email sent.",
			"subject": subject,
		})
	}
}

// PreviewEmailHandler renders without sending.
func PreviewEmailHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerCode := r.URL.Query().Get("customer")
		templateName := r.URL.Query().Get("template")
		if customerCode == "" || templateName == "" {
			http.Error(w, "customer and template are required", http.StatusBadRequest)
			return
		}

		t, err := database.GetEmailTemplateByName(db, templateName)
		if err != nil {
			http.Error(w, "Failed to load template: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if t == nil {
			http.NotFound(w, r)
			return
		}

		ctx, err := BuildContext(db, customerCode)
		if err != nil {
			http.Error(w, "Failed to build context: "+err.Error(), http.StatusInternalServerError)
			return
		}
		subject, body, err := RenderTemplate(*t, ctx)
		if err != nil {
			http.Error(w, "Failed to render template: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"subject": subject,
			"body":    body,
		})
	}
}

func ListTemplatesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := database.GetAllEmailTemplates(db)
		if err != nil {
			http.Error(w, "Failed to list templates: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(templates)
	}
}

func SaveTemplateHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var t model.EmailTemplate
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" || t.Subject == "" || t.Body == "" {
			http.Error(w, "Template name, subject and body are required", http.StatusBadRequest)
			return
		}

		// Reject templates that will not render.
		if _, _, err := RenderTemplate(t, &RenderContext{}); err != nil {
			http.Error(w, "Template does not render: "+err.Error(), http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.UpsertEmailTemplateInTx(tx, t); err != nil {
			http.Error(w, "Failed to save template: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Template saved."})
	}
}

func DeleteTemplateHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/templates/delete/")
		if name == "" {
			http.Error(w, "Template name is required", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.DeleteEmailTemplateInTx(tx, name); err != nil {
			http.Error(w, "Failed to delete template: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Template deleted."})
	}
}

func GetEmailLogHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerCode := r.URL.Query().Get("customer")
		if customerCode == "" {
			http.Error(w, "customer is required", http.StatusBadRequest)
			return
		}
		entries, err := database.GetEmailLogByCustomer(db, customerCode)
		if err != nil {
			http.Error(w, "Failed to load email log: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}
