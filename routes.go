package main

import (
	"net/http"

	"arcollect/analytics"
	"arcollect/automation"
	"arcollect/collector"
	"arcollect/customer"
	"arcollect/invoice"
	"arcollect/mailer"
	"arcollect/reminder"
	"arcollect/remit"
	"arcollect/statuses"
	"arcollect/syncer"

	"github.com/jmoiron/sqlx"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB) {

	mux.HandleFunc("/api/customers/search", customer.SearchCustomersHandler(dbConn))
	mux.HandleFunc("/api/customers/detail/", customer.GetCustomerDetailHandler(dbConn))
	mux.HandleFunc("/api/customers/set_status", customer.SetColorStatusHandler(dbConn))
	mux.HandleFunc("/api/customers/import", customer.ImportCustomersHandler(dbConn))

	mux.HandleFunc("/api/invoices/search", invoice.SearchInvoicesHandler(dbConn))
	mux.HandleFunc("/api/invoices/assign", invoice.AssignCollectorHandler(dbConn))
	mux.HandleFunc("/api/invoices/set_status", invoice.SetColorStatusHandler(dbConn))
	mux.HandleFunc("/api/invoices/export", invoice.ExportInvoicesCSVHandler(dbConn))
	mux.HandleFunc("/api/payments/applications/", remit.GetApplicationsHandler(dbConn))

	mux.HandleFunc("/api/collectors/list", collector.ListCollectorsHandler(dbConn))
	mux.HandleFunc("/api/collectors/create", collector.CreateCollectorHandler(dbConn))
	mux.HandleFunc("/api/collectors/update", collector.UpdateCollectorHandler(dbConn))
	mux.HandleFunc("/api/collectors/workloads", collector.GetWorkloadsHandler(dbConn))
	mux.HandleFunc("/api/collectors/assign_customer", collector.AssignCustomerHandler(dbConn))

	mux.HandleFunc("/api/statuses/map", statuses.GetStatusMapHandler())

	mux.HandleFunc("/api/notes", customer.ListNotesHandler(dbConn))
	mux.HandleFunc("/api/notes/add", customer.AddNoteHandler(dbConn))
	mux.HandleFunc("/api/notes/delete/", customer.DeleteNoteHandler(dbConn))

	mux.HandleFunc("/api/reminders", reminder.ListRemindersHandler(dbConn))
	mux.HandleFunc("/api/reminders/due", reminder.GetDueRemindersHandler(dbConn))
	mux.HandleFunc("/api/reminders/create", reminder.CreateReminderHandler(dbConn))
	mux.HandleFunc("/api/reminders/complete/", reminder.CompleteReminderHandler(dbConn))
	mux.HandleFunc("/api/reminders/snooze", reminder.SnoozeReminderHandler(dbConn))

	mux.HandleFunc("/api/email/send", mailer.SendEmailHandler(dbConn))
	mux.HandleFunc("/api/email/preview", mailer.PreviewEmailHandler(dbConn))
	mux.HandleFunc("/api/email/log", mailer.GetEmailLogHandler(dbConn))
	mux.HandleFunc("/api/templates/list", mailer.ListTemplatesHandler(dbConn))
	mux.HandleFunc("/api/templates/save", mailer.SaveTemplateHandler(dbConn))
	mux.HandleFunc("/api/templates/delete/", mailer.DeleteTemplateHandler(dbConn))

	mux.HandleFunc("/api/payments/import", remit.ImportRemittanceHandler(dbConn))
	mux.HandleFunc("/api/payments", remit.GetPaymentsHandler(dbConn))
	mux.HandleFunc("/api/automation/lockbox/fetch", automation.FetchLockboxHandler(dbConn))

	mux.HandleFunc("/api/sync/start", syncer.StartSyncHandler(dbConn))
	mux.HandleFunc("/api/sync/pause", syncer.PauseSyncHandler())
	mux.HandleFunc("/api/sync/resume", syncer.ResumeSyncHandler())
	mux.HandleFunc("/api/sync/cancel", syncer.CancelSyncHandler())
	mux.HandleFunc("/api/sync/status", syncer.GetSyncStatusHandler(dbConn))
	mux.HandleFunc("/api/sync/runs", syncer.ListSyncRunsHandler(dbConn))

	mux.HandleFunc("/api/analytics/dashboard", analytics.GetDashboardHandler(dbConn))
	mux.HandleFunc("/api/analytics/aging/export", analytics.ExportAgingCSVHandler(dbConn))

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			GetConfigHandler()(w, r)
		case http.MethodPost:
			SaveConfigHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}
