package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
	"expensetracker/internal/export"
	applog "expensetracker/internal/log"
	"expensetracker/internal/state"
	"expensetracker/internal/store"
)

// pageData is everything the page templates render.
type pageData struct {
	state.Snapshot
	Categories    []string
	Months        []option
	Pie           []pieSlice
	Trend         trendChart
	SheetsEnabled bool
}

func (s *Server) pageData() pageData {
	snap := s.tracker.View()
	return pageData{
		Snapshot:      snap,
		Categories:    core.Categories,
		Months:        monthOptions(),
		Pie:           pieSlices(snap.Summary),
		Trend:         newTrendChart(snap.Projection.Trend),
		SheetsEnabled: s.sheets != nil,
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// respond finishes a UI action. HTMX requests get the re-rendered dashboard
// panel; plain form posts are redirected home on success and shown the
// full page otherwise.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, status int) {
	if !isHTMX(r) && status < 400 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	name := "dashboard"
	if !isHTMX(r) {
		name = "index.html"
	}
	body, err := s.render(r, name)
	if err != nil {
		InternalServerError("Could not render the page").Write(w)
		return
	}
	b.Status(status).BodyHTML(body).Write(w)
}

func (s *Server) render(r *http.Request, name string) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, s.pageData()); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldOperation, applog.OpRender,
			"template", name,
			applog.FieldError, err)
		return nil, err
	}
	return buf.Bytes(), nil
}

// storeFailure maps a failed store call onto a status and a user message.
func storeFailure(err error, action string) (int, string) {
	switch {
	case core.IsValidationError(err):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "That expense no longer exists."
	default:
		return http.StatusBadGateway, fmt.Sprintf("Could not %s: the expense store is unavailable.", action)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if f, ok := ParseFilters(r.URL.Query()); ok {
		s.tracker.SetFilters(f)
	}
	if !s.tracker.View().Loaded {
		// Failures are kept in the snapshot and shown on the page.
		_ = s.tracker.Load(r.Context())
	}

	body, err := s.render(r, "index.html")
	if err != nil {
		http.Error(w, "could not render the page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the record set has been fetched and the
// last store call succeeded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.View()
	switch {
	case !snap.Loaded:
		http.Error(w, "not ready: records not loaded", http.StatusServiceUnavailable)
	case snap.LastError != "":
		http.Error(w, "not ready: "+snap.LastError, http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	res, err := s.tracker.Submit(r.Context(), ParseDraft(p))
	if err != nil {
		status, msg := storeFailure(err, "save the expense")
		s.respond(w, r, NewHTMXResponse().TriggerErrorNotification(msg), status)
		return
	}

	op, msg, status := applog.OpCreate, "Expense added", http.StatusCreated
	if !res.Created {
		op, msg, status = applog.OpUpdate, "Expense updated", http.StatusOK
	}
	b := NewHTMXResponse().
		TriggerRecordsChanged(op, res.Record.ID.String(), len(s.tracker.View().Records)).
		TriggerFormReset().
		TriggerSuccessNotification(msg)
	s.respond(w, r, b, status)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.tracker.Edit(id); err != nil {
		s.respond(w, r, NewHTMXResponse().TriggerErrorNotification("That expense is not in the list."), http.StatusNotFound)
		return
	}
	s.respond(w, r, NewHTMXResponse(), http.StatusOK)
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.tracker.CancelEdit()
	s.respond(w, r, NewHTMXResponse().TriggerFormReset(), http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.tracker.Delete(r.Context(), id); err != nil {
		status, msg := storeFailure(err, "delete the expense")
		s.respond(w, r, NewHTMXResponse().TriggerErrorNotification(msg), status)
		return
	}
	b := NewHTMXResponse().
		TriggerRecordsChanged(applog.OpDelete, id.String(), len(s.tracker.View().Records)).
		TriggerSuccessNotification("Expense deleted")
	s.respond(w, r, b, http.StatusOK)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.tracker.Select(id); err != nil {
		s.respond(w, r, NewHTMXResponse().TriggerErrorNotification("That expense is not in the list."), http.StatusNotFound)
		return
	}
	s.respond(w, r, NewHTMXResponse(), http.StatusOK)
}

func (s *Server) handleCloseDetail(w http.ResponseWriter, r *http.Request) {
	_ = s.tracker.Select("")
	s.respond(w, r, NewHTMXResponse(), http.StatusOK)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	f, _ := ParseFilters(p.Values())
	s.tracker.SetFilters(f)
	s.respond(w, r, NewHTMXResponse(), http.StatusOK)
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.tracker.ClearFilters()
	s.respond(w, r, NewHTMXResponse(), http.StatusOK)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Load(r.Context()); err != nil {
		s.respond(w, r, NewHTMXResponse().TriggerErrorNotification("Could not reach the expense store."), http.StatusBadGateway)
		return
	}
	s.respond(w, r, NewHTMXResponse().TriggerSuccessNotification("Expenses refreshed"), http.StatusOK)
}

// projectionFor uses the filters in the query when present, leaving the
// dashboard's own filters untouched.
func (s *Server) projectionFor(r *http.Request) (state.Snapshot, analytics.Projection) {
	snap := s.tracker.View()
	if f, ok := ParseFilters(r.URL.Query()); ok {
		return snap, analytics.Project(snap.Records, f)
	}
	return snap, snap.Projection
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	_, proj := s.projectionFor(r)
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	snap, proj := s.projectionFor(r)
	cal := snap.Calendar
	q := r.URL.Query()
	year, yerr := strconv.Atoi(q.Get("cal_year"))
	month, merr := strconv.Atoi(q.Get("cal_month"))
	switch {
	case yerr == nil && merr == nil && month >= 1 && month <= 12:
		cal = analytics.CalendarMonth(proj.Buckets, year, time.Month(month))
	case q.Get("cal_year") != "" || q.Get("cal_month") != "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cal_year and cal_month must be a valid year and month"})
		return
	case proj.Filters != snap.Filters:
		y, m := analytics.DisplayMonth(proj.Filters, s.tracker.Now())
		cal = analytics.CalendarMonth(proj.Buckets, y, m)
	}
	writeJSON(w, http.StatusOK, cal)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	_, proj := s.projectionFor(r)

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, proj.Filtered); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "XLSX export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		http.Error(w, "could not build the workbook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.XLSXFilename(proj.Filters)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.sheets == nil {
		ErrorResponse(http.StatusServiceUnavailable, "Google Sheets export is not configured.").Write(w)
		return
	}
	records := s.tracker.View().Projection.Filtered
	n, err := s.sheets.Export(r.Context(), records)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Google Sheets export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		s.respond(w, r, NewHTMXResponse().TriggerErrorNotification("Google Sheets export failed."), http.StatusBadGateway)
		return
	}
	msg := fmt.Sprintf("Exported %d expense%s to Google Sheets", n, pluralS(n))
	s.respond(w, r, NewHTMXResponse().TriggerSuccessNotification(msg), http.StatusOK)
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
