package reminder

import (
	"fmt"
	"log"
	"time"

	"arcollect/database"
	"arcollect/mailer"
	"arcollect/model"

	"github.com/jmoiron/sqlx"
)

// StartScheduler runs a background loop that claims due reminders and
// notifies the owning collector by email. Claiming marks the row notified
// in the same transaction, so a crash between claim and send can at worst
// drop a notification, never duplicate one.
func StartScheduler(db *sqlx.DB, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := notifyDueReminders(db); err != nil {
				log.Printf("WARN: Reminder scheduler pass failed: %v", err)
			}
		}
	}()
	log.Printf("Reminder scheduler started (interval %s).", interval)
}

func notifyDueReminders(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start reminder claim transaction: %w", err)
	}
	defer tx.Rollback()

	due, err := database.ClaimDueRemindersInTx(tx, time.Now().Format(timeLayout))
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return tx.Commit()
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminder claim: %w", err)
	}

	for _, rem := range due {
		if err := notifyCollector(db, rem); err != nil {
			log.Printf("WARN: Failed to notify collector for reminder %d: %v", rem.ID, err)
		}
	}
	return nil
}

func notifyCollector(db *sqlx.DB, rem model.Reminder) error {
	if rem.CollectorCode == "" {
		return nil
	}
	collector, err := database.GetCollectorByCode(db, rem.CollectorCode)
	if err != nil {
		return err
	}
	if collector == nil || collector.Email == "" {
		return nil
	}

	customer, err := database.GetCustomerByCode(db, rem.CustomerCode)
	if err != nil {
		return err
	}
	customerName := rem.CustomerCode
	if customer != nil {
		customerName = customer.CustomerName
	}

	subject := fmt.Sprintf("Reminder due: %s", customerName)
	body := fmt.Sprintf("Reminder for %s (%s) was due at %s.\n\n%s\n",
		customerName, rem.CustomerCode, rem.DueAt, rem.Note)
	if rem.InvoiceNumber != "" {
		body += fmt.Sprintf("\nInvoice: %s\n", rem.InvoiceNumber)
	}

	return mailer.SendRaw(db, rem.CustomerCode, rem.CollectorCode, collector.Email, subject, body)
}
