package allocation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetlens-dev/budgetlens/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "allocations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetAllocation(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	w, err := s.SetAllocation(ctx, LevelDepartment, "Dept", dec("1000"))
	require.NoError(t, err)
	assert.False(t, w.OverAllocated)

	got, err := s.GetAllocation(ctx, LevelDepartment, "Dept")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1000")))
}

func TestGetAllocation_UnknownKeyReadsZero(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	got, err := s.GetAllocation(ctx, LevelRegion, "Dept|Nowhere")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestSetAllocation_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.SetAllocation(ctx, LevelDepartment, "Dept", dec("1000"))
	require.NoError(t, err)
	_, err = s.SetAllocation(ctx, LevelDepartment, "Dept", dec("1500"))
	require.NoError(t, err)

	got, err := s.GetAllocation(ctx, LevelDepartment, "Dept")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1500")))
}

func TestSetAllocation_NegativeRejected(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.SetAllocation(ctx, LevelDepartment, "Dept", dec("-5"))
	require.Error(t, err)
	var ia model.InvalidAllocationError
	assert.ErrorAs(t, err, &ia)
}

func TestSetAllocation_UnknownLevelRejected(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.SetAllocation(ctx, Level("district"), "Dept|North|D1", dec("5"))
	var ia model.InvalidAllocationError
	assert.ErrorAs(t, err, &ia)
}

func TestSetAllocation_OverAllocationWarnsButWrites(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.SetAllocation(ctx, LevelDepartment, "Dept", dec("1000"))
	require.NoError(t, err)

	w, err := s.SetAllocation(ctx, LevelRegion, "Dept|North", dec("1200"))
	require.NoError(t, err)
	assert.True(t, w.OverAllocated)
	assert.Equal(t, "Dept", w.Department)
	assert.True(t, w.ParentAllocated.Equal(dec("1000")))
	assert.True(t, w.RegionsTotal.Equal(dec("1200")))

	// The write went through regardless.
	got, err := s.GetAllocation(ctx, LevelRegion, "Dept|North")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1200")))
}

func TestSetAllocation_SiblingsCountTowardCap(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.SetAllocation(ctx, LevelDepartment, "Dept", dec("1000"))
	require.NoError(t, err)
	w, err := s.SetAllocation(ctx, LevelRegion, "Dept|North", dec("600"))
	require.NoError(t, err)
	assert.False(t, w.OverAllocated)

	w, err = s.SetAllocation(ctx, LevelRegion, "Dept|South", dec("500"))
	require.NoError(t, err)
	assert.True(t, w.OverAllocated)
	assert.True(t, w.RegionsTotal.Equal(dec("1100")))

	// Re-writing an existing region replaces its own value in the check
	// instead of double counting it.
	w, err = s.SetAllocation(ctx, LevelRegion, "Dept|South", dec("400"))
	require.NoError(t, err)
	assert.False(t, w.OverAllocated)
}

func TestSetAllocation_RegionsOfOtherDepartmentsIgnored(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.SetAllocation(ctx, LevelDepartment, "Dept", dec("1000"))
	require.NoError(t, err)
	_, err = s.SetAllocation(ctx, LevelRegion, "Other|Huge", dec("99999"))
	require.NoError(t, err)

	w, err := s.SetAllocation(ctx, LevelRegion, "Dept|North", dec("100"))
	require.NoError(t, err)
	assert.False(t, w.OverAllocated)
}
