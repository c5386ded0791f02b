package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "expensetracker/internal/log"
)

type sheetsCall struct {
	method string
	path   string
	body   map[string]any
}

func newFakeSheets(t *testing.T, status int) (*gsheet.Service, *[]sheetsCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []sheetsCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		calls = append(calls, sheetsCall{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return svc, &calls
}

func TestSheetsExportClearsThenWrites(t *testing.T) {
	svc, calls := newFakeSheets(t, http.StatusOK)
	exp := NewSheetsExporterWithService(svc, "sheet-id", "My Expenses", applog.Discard())

	n, err := exp.Export(context.Background(), records())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, *calls, 2)
	clear, update := (*calls)[0], (*calls)[1]

	assert.Equal(t, http.MethodPost, clear.method)
	assert.True(t, strings.HasSuffix(clear.path, ":clear"), clear.path)
	assert.Contains(t, clear.path, "/spreadsheets/sheet-id/values/'My Expenses'!A:D")

	assert.Equal(t, http.MethodPut, update.method)
	assert.Contains(t, update.path, "'My Expenses'!A1")
	values, ok := update.body["values"].([]any)
	require.True(t, ok)
	require.Len(t, values, 4)
	assert.Equal(t, []any{"Date", "Category", "Description", "Amount"}, values[0])
	assert.Equal(t, []any{"2024-03-01", "Food", "lunch", 100.0}, values[1])
}

func TestSheetsExportReportsAPIFailure(t *testing.T) {
	svc, calls := newFakeSheets(t, http.StatusForbidden)
	exp := NewSheetsExporterWithService(svc, "sheet-id", "", applog.Discard())

	_, err := exp.Export(context.Background(), records())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear sheet")
	assert.Len(t, *calls, 1, "nothing is written after a failed clear")
}

func TestNewSheetsExporterNeedsCredentials(t *testing.T) {
	_, err := NewSheetsExporter(context.Background(), SheetsConfig{SpreadsheetID: "x"}, applog.Discard())
	assert.ErrorContains(t, err, "credentials")

	_, err = NewSheetsExporter(context.Background(), SheetsConfig{}, applog.Discard())
	assert.ErrorContains(t, err, "spreadsheet id")

	_, err = NewSheetsExporter(context.Background(), SheetsConfig{
		SpreadsheetID:   "x",
		CredentialsFile: "/does/not/exist.json",
	}, applog.Discard())
	assert.ErrorContains(t, err, "read service account file")
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Expenses'", quoteSheet("Expenses"))
	assert.Equal(t, "'Bob''s'", quoteSheet("Bob's"))
}
