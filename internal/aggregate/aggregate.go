// Package aggregate computes booked/reserved sums over the org hierarchy.
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/budgetlens-dev/budgetlens/internal/model"
)

// Totals holds the accumulated amounts and visibility counters for one
// hierarchy node.
type Totals struct {
	Booked          decimal.Decimal
	Reserved        decimal.Decimal
	UnassignedCount int
	OutlierCount    int
}

// Total is booked plus reserved. Derived, never stored.
func (t Totals) Total() decimal.Decimal {
	return t.Booked.Add(t.Reserved)
}

// Result maps node keys to their accumulated totals.
type Result map[model.NodeKey]Totals

// At returns the totals for a key, zero-valued when the key never
// accumulated anything.
func (r Result) At(key model.NodeKey) Totals {
	return r[key]
}

// Keys returns every node key present in the result.
func (r Result) Keys() []model.NodeKey {
	keys := make([]model.NodeKey, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// Aggregate runs a single pass over transactions, accumulating each into the
// department, region and district levels it resolves to. Accumulation is
// commutative, so the result does not depend on input order.
//
// knownDepartments marks hierarchy membership; transactions outside it land
// under model.UnmappedDepartment instead of being dropped, keeping the grand
// total equal to the full transaction set.
func Aggregate(transactions []model.Transaction, knownDepartments map[string]bool) Result {
	res := make(Result)

	for _, tx := range transactions {
		dept := tx.Department
		if dept == "" || !knownDepartments[dept] {
			dept = model.UnmappedDepartment
		}

		keys := resolveKeys(dept, tx)

		switch {
		case tx.Category == model.CategoryDirectCost || tx.Category == model.CategoryBookedMeasure:
			for _, k := range keys {
				t := res[k]
				t.Booked = t.Booked.Add(tx.Effective)
				res[k] = t
			}
		case tx.Category == model.CategoryParkedMeasure && tx.ManualAssignment:
			for _, k := range keys {
				t := res[k]
				t.Reserved = t.Reserved.Add(tx.EstimatedAmount)
				res[k] = t
			}
		case tx.Category == model.CategoryParkedMeasure:
			for _, k := range keys {
				t := res[k]
				t.UnassignedCount++
				res[k] = t
			}
		default:
			for _, k := range keys {
				t := res[k]
				t.OutlierCount++
				res[k] = t
			}
		}
	}

	return res
}

// resolveKeys returns the hierarchy levels a transaction contributes to.
// Region level requires a region, district level additionally a district.
func resolveKeys(dept string, tx model.Transaction) []model.NodeKey {
	keys := []model.NodeKey{model.DepartmentKey(dept)}
	if tx.Region != "" {
		keys = append(keys, model.RegionKey(dept, tx.Region))
		if tx.District != "" {
			keys = append(keys, model.DistrictKey(dept, tx.Region, tx.District))
		}
	}
	return keys
}
