package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/budgetlens-dev/budgetlens/internal/classify"
	"github.com/budgetlens-dev/budgetlens/internal/model"
)

func TestCostCSVParser(t *testing.T) {
	input := `id,category,amount,department,region,district,booking_date
T1,DIRECT_COST,120.50,Dept,North,D1,2025-03-14
T2,BOOKED_MEASURE,80,Dept,South,D3,2025-03-20
`
	p := &CostCSVParser{}
	records, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "T1", records[0]["id"])
	assert.Equal(t, "DIRECT_COST", records[0]["category"])
	assert.Equal(t, "120.50", records[0]["amount"])
	assert.Equal(t, "North", records[0]["region"])
}

func TestCostCSVParser_RaggedRowsAndExtraColumns(t *testing.T) {
	input := `id,category,amount,cost_center,department
T1,DIRECT_COST,10,CC-7,Dept
T2,DIRECT_COST,20
`
	p := &CostCSVParser{}
	records, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "CC-7", records[0]["cost_center"], "unknown columns pass through")
	_, ok := records[1]["department"]
	assert.False(t, ok)

	// Classifier copes with the short row.
	tx := classify.Classify(records[1])
	assert.Equal(t, model.CategoryDirectCost, tx.Category)
}

func TestCostCSVParser_GeneratesMissingIDs(t *testing.T) {
	input := "id,category,amount\n,DIRECT_COST,5\n"
	p := &CostCSVParser{}
	records, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0]["id"])
}

func TestCostCSVParser_EmptyFile(t *testing.T) {
	p := &CostCSVParser{}
	records, err := p.Parse(strings.NewReader("id,category,amount\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func measureWorkbook(t *testing.T, header []string, rows [][]string) *strings.Reader {
	t.Helper()
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)

	require.NoError(t, wb.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return strings.NewReader(buf.String())
}

func TestMeasureXLSXParser(t *testing.T) {
	r := measureWorkbook(t,
		[]string{"Bestellnummer", "Description", "Estimated Amount", "Date", "Department"},
		[][]string{
			{"4500012345", "New shelving", "500", "2025-02-01", "Dept"},
			{"4500012346", "Forklift service", "1200.99", "2025-02-03", "Dept"},
		})

	p := &MeasureXLSXParser{}
	records, err := p.Parse(r)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "PARKED_MEASURE", records[0]["category"])
	assert.Equal(t, "4500012345", records[0]["order_no"])
	assert.Equal(t, "500", records[0]["estimated_amount"])
	assert.Equal(t, "Dept", records[0]["department"])

	tx := classify.Classify(records[1])
	assert.Equal(t, model.CategoryParkedMeasure, tx.Category)
	assert.Equal(t, "4500012346", tx.ID)
	assert.Equal(t, model.StatusAwaitingAssignment, tx.Status)
}

func TestMeasureXLSXParser_SkipsBlankRows(t *testing.T) {
	r := measureWorkbook(t,
		[]string{"Bestellnummer", "Estimated Amount"},
		[][]string{
			{"4500012345", "500"},
			{"", ""},
			{"4500012346", "600"},
		})

	p := &MeasureXLSXParser{}
	records, err := p.Parse(r)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRegistry_ForFile(t *testing.T) {
	reg := DefaultRegistry()

	assert.IsType(t, &CostCSVParser{}, reg.ForFile("costs-2025-03.CSV"))
	assert.IsType(t, &MeasureXLSXParser{}, reg.ForFile("measures.xlsx"))
	assert.Nil(t, reg.ForFile("notes.txt"))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "costs.csv"), []byte("id\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "measures.xlsx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}
