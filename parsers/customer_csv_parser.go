package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsedCustomerCSVRecord is one row of a customer master CSV.
type ParsedCustomerCSVRecord struct {
	CustomerCode string
	CustomerName string
	Email        string
	Phone        string
	Terms        string
	CreditLimit  decimal.Decimal
}

// ParseCustomerCSV parses a customer master CSV. Required columns are
// customer_code and customer_name; email, phone, terms and credit_limit
// are optional.
func ParseCustomerCSV(r io.Reader) ([]ParsedCustomerCSVRecord, error) {
	reader := csv.NewReader(SkipBOM(r))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	requiredHeaders := []string{"customer_code", "customer_name"}
	colIndex, err := getColIndex(header, requiredHeaders)
	if err != nil {
		return nil, err
	}

	var records []ParsedCustomerCSVRecord
	line := 1

	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARN: customer CSV line %d read error (skipping): %v", line, err)
			continue
		}

		get := func(key string) string {
			if idx, ok := colIndex[key]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}

		code := get("customer_code")
		name := get("customer_name")
		if code == "" || name == "" {
			log.Printf("WARN: customer CSV line %d has empty code or name (skipping)", line)
			continue
		}

		creditLimit := decimal.Zero
		if raw := get("credit_limit"); raw != "" {
			creditLimit, err = decimal.NewFromString(raw)
			if err != nil {
				log.Printf("WARN: customer CSV line %d has bad credit_limit %q (using 0)", line, raw)
				creditLimit = decimal.Zero
			}
		}

		records = append(records, ParsedCustomerCSVRecord{
			CustomerCode: code,
			CustomerName: name,
			Email:        get("email"),
			Phone:        get("phone"),
			Terms:        get("terms"),
			CreditLimit:  creditLimit,
		})
	}

	return records, nil
}
