package model

import "github.com/shopspring/decimal"

type AgingBucket struct {
	Bucket  string          `json:"bucket"`
	Count   int             `json:"count"`
	Balance decimal.Decimal `json:"balance"`
}

type CollectorAging struct {
	CollectorCode string          `json:"collectorCode"`
	CollectorName string          `json:"collectorName"`
	Buckets       []AgingBucket   `json:"buckets"`
	Total         decimal.Decimal `json:"total"`
}

type StatusBreakdownRow struct {
	StatusCode string          `json:"statusCode"`
	Label      string          `json:"label"`
	Count      int             `json:"count"`
	Balance    decimal.Decimal `json:"balance"`
}

type CollectorPerformance struct {
	CollectorCode      string          `json:"collectorCode"`
	CollectorName      string          `json:"collectorName"`
	CollectedAmount    decimal.Decimal `json:"collectedAmount"`
	EmailsSent         int             `json:"emailsSent"`
	RemindersCompleted int             `json:"remindersCompleted"`
}

type TopDebtor struct {
	CustomerCode string          `db:"customer_code" json:"customerCode"`
	CustomerName string          `db:"customer_name" json:"customerName"`
	OpenBalance  decimal.Decimal `db:"open_balance" json:"openBalance"`
	OverdueCount int             `db:"overdue_count" json:"overdueCount"`
}

type Dashboard struct {
	AsOf             string                 `json:"asOf"`
	Aging            []AgingBucket          `json:"aging"`
	AgingByCollector []CollectorAging       `json:"agingByCollector"`
	StatusBreakdown  []StatusBreakdownRow   `json:"statusBreakdown"`
	Performance      []CollectorPerformance `json:"performance"`
	TopDebtors       []TopDebtor            `json:"topDebtors"`
}
