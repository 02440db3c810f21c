package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/budgetlens-dev/budgetlens/internal/classify"
)

// CostCSVParser parses accounting cost exports. The file is header-addressed:
// column order does not matter, unknown columns pass through untouched, and
// rows may omit columns entirely. The classifier decides what each row means.
type CostCSVParser struct{}

// Format returns the parser name.
func (p *CostCSVParser) Format() string { return "cost-csv" }

// Parse reads a cost CSV and returns one raw record per data row. Rows
// without an id get a generated one so they stay addressable downstream.
func (p *CostCSVParser) Parse(r io.Reader) ([]classify.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // sources pad rows inconsistently

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading cost CSV: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var records []classify.RawRecord
	for _, row := range rows[1:] {
		rec := make(classify.RawRecord, len(header))
		for i, val := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			rec[header[i]] = val
		}
		if strings.TrimSpace(rec["id"]) == "" && strings.TrimSpace(rec["order_no"]) == "" {
			rec["id"] = uuid.NewString()
		}
		records = append(records, rec)
	}
	return records, nil
}
