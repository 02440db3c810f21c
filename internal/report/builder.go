// Package report composes classifier and aggregator output into summaries
// for presentation code.
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/budgetlens-dev/budgetlens/internal/aggregate"
	"github.com/budgetlens-dev/budgetlens/internal/allocation"
	"github.com/budgetlens-dev/budgetlens/internal/model"
)

var hundred = decimal.NewFromInt(100)

// AllocationGetter is the slice of the allocation store the builder needs.
type AllocationGetter interface {
	GetAllocation(ctx context.Context, level allocation.Level, key string) (decimal.Decimal, error)
}

// BreakdownRow is one child node in a summary, presentation-ready.
type BreakdownRow struct {
	Name     string
	Key      model.NodeKey
	Booked   decimal.Decimal
	Reserved decimal.Decimal
	Total    decimal.Decimal
}

// Summary is the aggregate view of one hierarchy node.
//
// UsagePercentage carries the true value and may exceed 100; DisplayPercentage
// is capped at 100 for stacked-bar widths. Over-budget is a visible state,
// not an error, so the true value must survive the capping.
type Summary struct {
	Key               model.NodeKey
	Allocated         decimal.Decimal
	Booked            decimal.Decimal
	Reserved          decimal.Decimal
	Total             decimal.Decimal
	Remaining         decimal.Decimal
	UsagePercentage   decimal.Decimal
	DisplayPercentage decimal.Decimal
	UnassignedCount   int
	OutlierCount      int
	Breakdown         []BreakdownRow
}

// OverBudget reports whether consumption exceeds the allocation.
func (s Summary) OverBudget() bool {
	return s.Remaining.IsNegative()
}

// Builder builds summaries, memoizing them per (node, snapshot digest).
// Assignment transitions invalidate affected nodes explicitly; a changed
// snapshot changes the digest, so stale entries are never served either way.
type Builder struct {
	cache *gocache.Cache
}

// NewBuilder creates a Builder with an empty cache.
func NewBuilder() *Builder {
	return &Builder{cache: gocache.New(gocache.NoExpiration, 0)}
}

// Invalidate drops cached summaries for the given nodes. Implements
// assignment.Invalidator.
func (b *Builder) Invalidate(keys ...model.NodeKey) {
	for cached := range b.cache.Items() {
		for _, k := range keys {
			if strings.HasPrefix(cached, string(k)+"@") {
				b.cache.Delete(cached)
			}
		}
	}
}

// BuildSummary computes the summary for one node from an aggregation result
// and the allocation store.
func (b *Builder) BuildSummary(ctx context.Context, key model.NodeKey, res aggregate.Result, store AllocationGetter) (Summary, error) {
	cacheKey := string(key) + "@" + digest(res)
	if cached, ok := b.cache.Get(cacheKey); ok {
		return cached.(Summary), nil
	}

	allocated, err := lookupAllocated(ctx, key, store)
	if err != nil {
		return Summary{}, err
	}

	totals := res.At(key)
	total := totals.Total()
	remaining := allocated.Sub(total)

	usage := decimal.Zero
	if !allocated.IsZero() {
		usage = total.Div(allocated).Mul(hundred)
	}
	display := usage
	if display.GreaterThan(hundred) {
		display = hundred
	}

	s := Summary{
		Key:               key,
		Allocated:         allocated,
		Booked:            totals.Booked,
		Reserved:          totals.Reserved,
		Total:             total,
		Remaining:         remaining,
		UsagePercentage:   usage,
		DisplayPercentage: display,
		UnassignedCount:   totals.UnassignedCount,
		OutlierCount:      totals.OutlierCount,
		Breakdown:         breakdown(key, res),
	}

	b.cache.Set(cacheKey, s, gocache.NoExpiration)
	return s, nil
}

// lookupAllocated finds the node's budget. Districts carry no allocation of
// their own and read as zero.
func lookupAllocated(ctx context.Context, key model.NodeKey, store AllocationGetter) (decimal.Decimal, error) {
	switch key.Depth() {
	case 1:
		return store.GetAllocation(ctx, allocation.LevelDepartment, string(key))
	case 2:
		return store.GetAllocation(ctx, allocation.LevelRegion, string(key))
	default:
		return decimal.Zero, nil
	}
}

// breakdown collects the node's direct children, sorted descending by total
// with ties broken by ascending name so output is deterministic.
func breakdown(parent model.NodeKey, res aggregate.Result) []BreakdownRow {
	prefix := string(parent) + "|"
	depth := parent.Depth() + 1

	var rows []BreakdownRow
	for _, k := range res.Keys() {
		if k.Depth() != depth || !strings.HasPrefix(string(k), prefix) {
			continue
		}
		t := res.At(k)
		rows = append(rows, BreakdownRow{
			Name:     k.Name(),
			Key:      k,
			Booked:   t.Booked,
			Reserved: t.Reserved,
			Total:    t.Total(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Total.GreaterThan(rows[j].Total)
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// digest fingerprints an aggregation result so cache entries are bound to
// the exact snapshot they were computed from.
func digest(res aggregate.Result) string {
	keys := res.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	h := sha256.New()
	for _, k := range keys {
		t := res.At(k)
		fmt.Fprintf(h, "%s=%s/%s/%d/%d\n", k, t.Booked, t.Reserved, t.UnassignedCount, t.OutlierCount)
	}
	return hex.EncodeToString(h.Sum(nil))
}
