package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnmappedDepartment collects transactions whose department does not match
// any node of the configured hierarchy. They still count toward the grand
// total, so reports always reconcile to the full transaction set.
const UnmappedDepartment = "unmapped"

// NodeKey identifies a node in the department > region > district hierarchy.
// Department keys are the plain department name; deeper levels join segments
// with "|", e.g. "Dept|North" and "Dept|North|D1".
type NodeKey string

// DepartmentKey returns the key for a department node.
func DepartmentKey(department string) NodeKey {
	return NodeKey(department)
}

// RegionKey returns the composite key for a region node.
func RegionKey(department, region string) NodeKey {
	return NodeKey(department + "|" + region)
}

// DistrictKey returns the composite key for a district node.
func DistrictKey(department, region, district string) NodeKey {
	return NodeKey(department + "|" + region + "|" + district)
}

// Segments splits the key into its hierarchy path, outermost first.
func (k NodeKey) Segments() []string {
	return strings.Split(string(k), "|")
}

// Depth returns 1 for a department key, 2 for a region key, 3 for a district
// key.
func (k NodeKey) Depth() int {
	return len(k.Segments())
}

// Parent returns the key one level up, or "" for a department key.
func (k NodeKey) Parent() NodeKey {
	segs := k.Segments()
	if len(segs) <= 1 {
		return ""
	}
	return NodeKey(strings.Join(segs[:len(segs)-1], "|"))
}

// Name returns the last path segment, the node's own name.
func (k NodeKey) Name() string {
	segs := k.Segments()
	return segs[len(segs)-1]
}

// BudgetNode is an operator-set allocation for a department or region.
// Booked, reserved and remaining are derived on read, never stored.
type BudgetNode struct {
	Key       NodeKey
	Allocated decimal.Decimal
}
