package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

// SheetsConfig selects the target spreadsheet and its credentials. Inline
// JSON wins over the file path.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// SheetsExporter mirrors records into one tab of a Google Sheet. Each export
// clears the tab and rewrites it.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// NewSheetsExporter authenticates with a service account.
func NewSheetsExporter(ctx context.Context, cfg SheetsConfig, logger *applog.Logger) (*SheetsExporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var creds []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		creds = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewSheetsExporterWithService(svc, cfg.SpreadsheetID, cfg.SheetName, logger), nil
}

// NewSheetsExporterWithService wraps an already configured service.
func NewSheetsExporterWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *applog.Logger) *SheetsExporter {
	if sheetName == "" {
		sheetName = ExpensesSheet
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentExport),
	}
}

// Export replaces the tab contents with a header row plus one row per
// record and returns the number of records written.
func (e *SheetsExporter) Export(ctx context.Context, records []core.ExpenseRecord) (int, error) {
	sheet := quoteSheet(e.sheetName)

	_, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, sheet+"!A:D", &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("clear sheet %s: %w", e.sheetName, err)
	}

	values := make([][]interface{}, 0, len(records)+1)
	values = append(values, []interface{}{"Date", "Category", "Description", "Amount"})
	for _, r := range records {
		values = append(values, []interface{}{r.Date, r.Category, r.Description, r.Amount.Float64()})
	}

	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, sheet+"!A1", &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("write sheet %s: %w", e.sheetName, err)
	}

	e.logger.InfoContext(ctx, "Exported expenses to Google Sheets",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(records),
		"sheet", e.sheetName)
	return len(records), nil
}

// quoteSheet quotes a tab name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
