// Package analytics computes the receivables dashboard: aging buckets,
// status breakdown, collector performance and top debtors.
package analytics

import (
	"sort"
	"time"

	"arcollect/config"
	"arcollect/database"
	"arcollect/model"
	"arcollect/statuses"

	"github.com/jmoiron/sqlx"
)

// BucketNames are the aging buckets in display order.
var BucketNames = []string{"current", "1-30", "31-60", "61-90", "90+"}

// bucketFor classifies an invoice by days past due as of asOf. Both dates
// are YYYY-MM-DD strings, so lexical comparison is date comparison.
func bucketFor(dueDate, asOf string) string {
	if dueDate == "" || dueDate >= asOf {
		return "current"
	}
	due, err := time.Parse("2006-01-02", dueDate)
	if err != nil {
		return "current"
	}
	ref, err := time.Parse("2006-01-02", asOf)
	if err != nil {
		return "current"
	}
	days := int(ref.Sub(due).Hours() / 24)
	switch {
	case days <= 0:
		return "current"
	case days <= 30:
		return "1-30"
	case days <= 60:
		return "31-60"
	case days <= 90:
		return "61-90"
	default:
		return "90+"
	}
}

func emptyBuckets() []model.AgingBucket {
	buckets := make([]model.AgingBucket, len(BucketNames))
	for i, name := range BucketNames {
		buckets[i] = model.AgingBucket{Bucket: name}
	}
	return buckets
}

func bucketIndex(name string) int {
	for i, n := range BucketNames {
		if n == name {
			return i
		}
	}
	return 0
}

// asOfDate resolves the reporting date: the configured override if set,
// otherwise today.
func asOfDate() string {
	if v := config.GetConfig().AgingAsOf; v != "" {
		return v
	}
	return time.Now().Format("2006-01-02")
}

// ComputeAging buckets all open invoices by days past due.
func ComputeAging(rows []database.OpenInvoiceRow, asOf string) []model.AgingBucket {
	buckets := emptyBuckets()
	for _, r := range rows {
		i := bucketIndex(bucketFor(r.DueDate, asOf))
		buckets[i].Count++
		buckets[i].Balance = buckets[i].Balance.Add(r.Balance)
	}
	return buckets
}

// ComputeCollectorAging splits the aging buckets per assigned collector.
// Unassigned invoices land under an empty collector code.
func ComputeCollectorAging(rows []database.OpenInvoiceRow, asOf string, names map[string]string) []model.CollectorAging {
	byCollector := make(map[string]*model.CollectorAging)
	for _, r := range rows {
		ca, ok := byCollector[r.CollectorCode]
		if !ok {
			ca = &model.CollectorAging{
				CollectorCode: r.CollectorCode,
				CollectorName: names[r.CollectorCode],
				Buckets:       emptyBuckets(),
			}
			if r.CollectorCode == "" {
				ca.CollectorName = "(unassigned)"
			}
			byCollector[r.CollectorCode] = ca
		}
		i := bucketIndex(bucketFor(r.DueDate, asOf))
		ca.Buckets[i].Count++
		ca.Buckets[i].Balance = ca.Buckets[i].Balance.Add(r.Balance)
		ca.Total = ca.Total.Add(r.Balance)
	}

	result := make([]model.CollectorAging, 0, len(byCollector))
	for _, ca := range byCollector {
		result = append(result, *ca)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Total.GreaterThan(result[j].Total)
	})
	return result
}

// ComputeStatusBreakdown groups open invoices by color status.
func ComputeStatusBreakdown(rows []database.OpenInvoiceRow) []model.StatusBreakdownRow {
	byStatus := make(map[string]*model.StatusBreakdownRow)
	for _, r := range rows {
		sb, ok := byStatus[r.ColorStatus]
		if !ok {
			sb = &model.StatusBreakdownRow{
				StatusCode: r.ColorStatus,
				Label:      statuses.Label(r.ColorStatus),
			}
			byStatus[r.ColorStatus] = sb
		}
		sb.Count++
		sb.Balance = sb.Balance.Add(r.Balance)
	}

	result := make([]model.StatusBreakdownRow, 0, len(byStatus))
	for _, sb := range byStatus {
		result = append(result, *sb)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Balance.GreaterThan(result[j].Balance)
	})
	return result
}

// ComputePerformance joins collected amounts, sent emails and completed
// reminders per collector over the period.
func ComputePerformance(db *sqlx.DB, from, to string) ([]model.CollectorPerformance, error) {
	collectors, err := database.GetAllCollectors(db)
	if err != nil {
		return nil, err
	}
	collected, err := database.GetCollectedAmountsByCollector(db, from, to)
	if err != nil {
		return nil, err
	}
	emails, err := database.CountSentEmailsByCollector(db, from, to)
	if err != nil {
		return nil, err
	}
	reminders, err := database.CountCompletedRemindersByCollector(db, from, to)
	if err != nil {
		return nil, err
	}

	result := make([]model.CollectorPerformance, 0, len(collectors))
	for _, c := range collectors {
		result = append(result, model.CollectorPerformance{
			CollectorCode:      c.CollectorCode,
			CollectorName:      c.CollectorName,
			CollectedAmount:    collected[c.CollectorCode],
			EmailsSent:         emails[c.CollectorCode],
			RemindersCompleted: reminders[c.CollectorCode],
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CollectedAmount.GreaterThan(result[j].CollectedAmount)
	})
	return result, nil
}

// BuildDashboard assembles the full dashboard for the period.
func BuildDashboard(db *sqlx.DB, from, to string) (*model.Dashboard, error) {
	asOf := asOfDate()
	rows, err := database.GetOpenInvoiceRows(db)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	collectors, err := database.GetAllCollectors(db)
	if err != nil {
		return nil, err
	}
	for _, c := range collectors {
		names[c.CollectorCode] = c.CollectorName
	}

	performance, err := ComputePerformance(db, from, to)
	if err != nil {
		return nil, err
	}
	topDebtors, err := database.GetTopDebtors(db, 10, asOf)
	if err != nil {
		return nil, err
	}

	return &model.Dashboard{
		AsOf:             asOf,
		Aging:            ComputeAging(rows, asOf),
		AgingByCollector: ComputeCollectorAging(rows, asOf, names),
		StatusBreakdown:  ComputeStatusBreakdown(rows),
		Performance:      performance,
		TopDebtors:       topDebtors,
	}, nil
}
