package assignment

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetlens-dev/budgetlens/internal/model"
)

func TestOverlayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignments.csv")
	decisions := []Decision{
		{ID: "M1", Region: "North", District: "D1", AssignedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "M2", Region: "South", District: "D3", AssignedAt: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)},
	}

	require.NoError(t, SaveOverlay(path, decisions))
	got, err := LoadOverlay(path)
	require.NoError(t, err)
	assert.Equal(t, decisions, got)
}

func TestLoadOverlay_MissingFile(t *testing.T) {
	got, err := LoadOverlay(filepath.Join(t.TempDir(), "assignments.csv"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApply(t *testing.T) {
	svc := NewService([]model.Transaction{
		parkedMeasure("M1", "Dept", "500"),
		parkedMeasure("M2", "Dept", "300"),
	}, nil)

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	applied, stale := svc.Apply([]Decision{
		{ID: "M1", Region: "North", District: "D1", AssignedAt: at},
		{ID: "gone", Region: "North", District: "D1", AssignedAt: at},
	})

	assert.Equal(t, 1, applied)
	require.Len(t, stale, 1)
	assert.Equal(t, "gone", stale[0].ID)

	tx, err := svc.Get("M1")
	require.NoError(t, err)
	assert.True(t, tx.ManualAssignment)
	assert.Equal(t, at, tx.AssignedAt, "replay keeps the original timestamp")
}

func TestDecisions_SortedAndFiltered(t *testing.T) {
	svc := NewService([]model.Transaction{
		parkedMeasure("M2", "Dept", "300"),
		parkedMeasure("M1", "Dept", "500"),
		{ID: "T1", Category: model.CategoryDirectCost},
	}, nil)

	_, err := svc.Assign("M2", "South", "D3")
	require.NoError(t, err)
	_, err = svc.Assign("M1", "North", "D1")
	require.NoError(t, err)

	ds := svc.Decisions()
	require.Len(t, ds, 2)
	assert.Equal(t, "M1", ds[0].ID)
	assert.Equal(t, "M2", ds[1].ID)
}
