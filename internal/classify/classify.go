// Package classify turns untyped ingestion rows into Transactions.
package classify

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetlens-dev/budgetlens/internal/model"
)

// RawRecord is one untyped key/value row from an ingestion source. Sources
// disagree on which fields they carry; missing and extra keys are fine.
type RawRecord map[string]string

const dateFormat = "2006-01-02"

// Classify assigns a raw record to exactly one category and resolves its
// effective amount and status label. Pure; malformed numeric input degrades
// to zero rather than failing, so one bad row never blocks a report.
func Classify(rec RawRecord) model.Transaction {
	category := model.Category(strings.TrimSpace(rec["category"]))
	if !category.Valid() {
		category = model.CategoryOutlier
	}

	amount, hasAmount := parseAmount(rec, "amount")
	actual, hasActual := parseAmount(rec, "actual_amount")
	estimated, hasEstimated := parseAmount(rec, "estimated_amount")

	// Effective amount: first populated field wins.
	effective := decimal.Zero
	switch {
	case hasAmount:
		effective = amount
	case hasActual:
		effective = actual
	case hasEstimated:
		effective = estimated
	}

	manual := parseBool(rec["manual_assignment"])
	if category != model.CategoryParkedMeasure {
		manual = false
	}

	t := model.Transaction{
		ID:               strings.TrimSpace(rec["id"]),
		OrderNo:          strings.TrimSpace(rec["order_no"]),
		Category:         category,
		Status:           model.StatusFor(category, manual),
		Amount:           amount,
		ActualAmount:     actual,
		EstimatedAmount:  estimated,
		Effective:        effective,
		Department:       strings.TrimSpace(rec["department"]),
		Region:           strings.TrimSpace(rec["region"]),
		District:         strings.TrimSpace(rec["district"]),
		BookingDate:      parseDate(rec["booking_date"]),
		MeasureDate:      parseDate(rec["measure_date"]),
		ManualAssignment: manual,
	}

	// An unassigned parked measure carries no location yet, whatever the
	// source row claims.
	if category == model.CategoryParkedMeasure && !manual {
		t.Region = ""
		t.District = ""
	}

	if t.ID == "" {
		t.ID = t.OrderNo
	}
	return t
}

// parseAmount reads a decimal field. The bool reports presence, not parse
// success: a populated but unparseable value is present with value zero.
func parseAmount(rec RawRecord, key string) (decimal.Decimal, bool) {
	raw, ok := rec[key]
	if !ok {
		return decimal.Zero, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, true
	}
	return d, true
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

func parseDate(raw string) time.Time {
	t, err := time.Parse(dateFormat, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return t
}
