// Package export writes the filtered expense records out of the tracker:
// as an XLSX workbook download or into a Google Sheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
)

const (
	ExpensesSheet = "Expenses"
	SummarySheet  = "Summary"

	// XLSXContentType is the media type of the workbook.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var expenseHeaders = []string{"Date", "Category", "Description", "Amount"}

// WriteXLSX writes a workbook with one row per record plus a total row, and
// a second sheet with the category totals.
func WriteXLSX(w io.Writer, records []core.ExpenseRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, h := range expenseHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ExpensesSheet, cell, h)
	}
	f.SetCellStyle(ExpensesSheet, "A1", "D1", bold)

	for idx, r := range records {
		row := idx + 2
		f.SetCellValue(ExpensesSheet, fmt.Sprintf("A%d", row), r.Date)
		f.SetCellValue(ExpensesSheet, fmt.Sprintf("B%d", row), r.Category)
		f.SetCellValue(ExpensesSheet, fmt.Sprintf("C%d", row), r.Description)
		f.SetCellValue(ExpensesSheet, fmt.Sprintf("D%d", row), r.Amount.Float64())
	}
	totalRow := len(records) + 2
	f.SetCellValue(ExpensesSheet, fmt.Sprintf("C%d", totalRow), "Total")
	f.SetCellValue(ExpensesSheet, fmt.Sprintf("D%d", totalRow), analytics.Total(records).Float64())
	f.SetCellStyle(ExpensesSheet, "D2", fmt.Sprintf("D%d", totalRow), money)
	f.SetCellStyle(ExpensesSheet, fmt.Sprintf("C%d", totalRow), fmt.Sprintf("D%d", totalRow), bold)

	f.SetColWidth(ExpensesSheet, "A", "A", 12)
	f.SetColWidth(ExpensesSheet, "B", "B", 15)
	f.SetColWidth(ExpensesSheet, "C", "C", 30)
	f.SetColWidth(ExpensesSheet, "D", "D", 12)

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	f.SetCellValue(SummarySheet, "A1", "Category")
	f.SetCellValue(SummarySheet, "B1", "Total")
	f.SetCellStyle(SummarySheet, "A1", "B1", bold)
	totals := analytics.CategoryTotals(records)
	for idx, ct := range totals {
		row := idx + 2
		f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", row), ct.Category)
		f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", row), ct.Total.Float64())
	}
	if len(totals) > 0 {
		f.SetCellStyle(SummarySheet, "B2", fmt.Sprintf("B%d", len(totals)+1), money)
	}
	f.SetColWidth(SummarySheet, "A", "A", 15)
	f.SetColWidth(SummarySheet, "B", "B", 12)

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// XLSXFilename names a download after the active filters, e.g.
// "expenses_2024-03.xlsx".
func XLSXFilename(f core.FilterCriteria) string {
	switch {
	case f.HasMonth():
		return fmt.Sprintf("expenses_%s-%s.xlsx", f.Year, f.Month)
	case f.Year != "":
		return fmt.Sprintf("expenses_%s.xlsx", f.Year)
	default:
		return "expenses.xlsx"
	}
}
