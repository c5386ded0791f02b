package export

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"expensetracker/internal/core"
)

func records() []core.ExpenseRecord {
	return []core.ExpenseRecord{
		{ID: "1", Date: "2024-03-01", Category: "Food", Description: "lunch", Amount: core.NewAmount(100)},
		{ID: "2", Date: "2024-03-01", Category: "Food", Amount: core.NewAmount(50)},
		{ID: "3", Date: "2024-03-02", Category: "Transport", Description: "bus", Amount: core.NewAmount(25)},
	}
}

func TestWriteXLSXProducesReadableWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, records()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExpensesSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(ExpensesSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 5) // header, 3 records, total
	assert.Equal(t, expenseHeaders, rows[0])
	assert.Equal(t, "2024-03-01", rows[1][0])
	assert.Equal(t, "lunch", rows[1][2])
	assert.Equal(t, "bus", rows[3][2])
	assert.Equal(t, "Total", rows[4][2])

	total, err := strconv.ParseFloat(rows[4][3], 64)
	require.NoError(t, err)
	assert.InDelta(t, 175, total, 1e-9)

	summary, err := f.GetRows(SummarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "Food", summary[1][0])
	food, err := strconv.ParseFloat(summary[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 150, food, 1e-9)
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ExpensesSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Total", rows[1][2])
}

func TestXLSXFilename(t *testing.T) {
	assert.Equal(t, "expenses_2024-03.xlsx", XLSXFilename(core.FilterCriteria{Year: "2024", Month: "03"}))
	assert.Equal(t, "expenses_2024.xlsx", XLSXFilename(core.FilterCriteria{Year: "2024"}))
	assert.Equal(t, "expenses.xlsx", XLSXFilename(core.FilterCriteria{Category: "Food"}))
}
