package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/budgetlens-dev/budgetlens/internal/classify"
)

// MeasureXLSXParser parses planning-tool measure lists. The first sheet holds
// a header row followed by one measure per row; headers are matched by
// normalized name so reordered or renamed-in-casing columns still land.
type MeasureXLSXParser struct{}

// headerAliases maps common planning-tool column names to record keys.
var headerAliases = map[string]string{
	"order_no":         "order_no",
	"bestellnummer":    "order_no",
	"estimated_amount": "estimated_amount",
	"estimate":         "estimated_amount",
	"measure_date":     "measure_date",
	"date":             "measure_date",
	"department":       "department",
	"description":      "description",
}

// Format returns the parser name.
func (p *MeasureXLSXParser) Format() string { return "measure-xlsx" }

// Parse reads a measure list workbook and returns one raw record per row,
// pre-tagged as a parked measure.
func (p *MeasureXLSXParser) Parse(r io.Reader) ([]classify.RawRecord, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening measure workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	keys := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		keys[i] = headerAliases[normalizeHeader(h)]
	}

	var records []classify.RawRecord
	for _, row := range rows[1:] {
		if empty(row) {
			continue
		}
		rec := classify.RawRecord{"category": "PARKED_MEASURE"}
		for i, val := range row {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			rec[keys[i]] = val
		}
		if strings.TrimSpace(rec["order_no"]) == "" {
			rec["id"] = uuid.NewString()
		}
		records = append(records, rec)
	}
	return records, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func empty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
