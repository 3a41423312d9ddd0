package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsedRemittanceCSVRecord is one lockbox remittance row: a payment
// received against a customer's account.
type ParsedRemittanceCSVRecord struct {
	PaymentRef   string
	CustomerCode string
	PaymentDate  string
	Amount       decimal.Decimal
}

// ParseRemittanceCSV parses a bank lockbox remittance CSV. Rows with a
// missing reference, customer, or a non-positive amount are skipped.
func ParseRemittanceCSV(r io.Reader) ([]ParsedRemittanceCSVRecord, error) {
	reader := csv.NewReader(SkipBOM(r))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	requiredHeaders := []string{"payment_ref", "customer_code", "payment_date", "amount"}
	colIndex, err := getColIndex(header, requiredHeaders)
	if err != nil {
		return nil, err
	}

	var records []ParsedRemittanceCSVRecord
	line := 1

	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARN: remittance CSV line %d read error (skipping): %v", line, err)
			continue
		}

		get := func(key string) string {
			if idx, ok := colIndex[key]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}

		ref := get("payment_ref")
		customer := get("customer_code")
		if ref == "" || customer == "" {
			log.Printf("WARN: remittance CSV line %d has empty payment_ref or customer_code (skipping)", line)
			continue
		}

		amount, err := decimal.NewFromString(get("amount"))
		if err != nil {
			log.Printf("WARN: remittance CSV line %d has bad amount %q (skipping)", line, get("amount"))
			continue
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			log.Printf("WARN: remittance CSV line %d has non-positive amount (skipping)", line)
			continue
		}

		records = append(records, ParsedRemittanceCSVRecord{
			PaymentRef:   ref,
			CustomerCode: customer,
			PaymentDate:  get("payment_date"),
			Amount:       amount,
		})
	}

	return records, nil
}
