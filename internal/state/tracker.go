// Package state owns the tracker's in-memory view state: the record cache,
// the active filters and the add/edit form.
//
// Every operation that talks to the record store holds one lock for the
// whole call plus the re-fetch that follows, so store requests never
// overlap and results are applied in issue order. The record set is only
// ever replaced wholesale.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
)

// ErrUnknownRecord is returned when an id is not in the current record set.
var ErrUnknownRecord = errors.New("record not in current set")

// Form is the add/edit form. A zero EditingID means "add".
type Form struct {
	Draft     core.Draft
	EditingID core.RecordID
}

func (f Form) Editing() bool {
	return !f.EditingID.IsZero()
}

type Options struct {
	// ServerSummary fetches category totals from the store's /summary
	// instead of computing them locally.
	ServerSummary bool
	Now           func() time.Time
	Logger        *applog.Logger
}

type Tracker struct {
	ops sync.Mutex // serialises store calls

	mu       sync.RWMutex
	records  []core.ExpenseRecord
	filters  core.FilterCriteria
	form     Form
	selected core.RecordID
	summary  []core.CategoryTotal
	loaded   bool
	lastSync time.Time
	lastErr  error

	gw            store.RecordStore
	serverSummary bool
	now           func() time.Time
	logger        *applog.Logger
	events        *applog.StructuredLogger
}

func New(gw store.RecordStore, opts Options) *Tracker {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentState)
	t := &Tracker{
		gw:            gw,
		serverSummary: opts.ServerSummary,
		now:           now,
		logger:        logger,
		events:        applog.NewStructuredLogger(logger),
	}
	today := now()
	t.filters = core.DefaultFilters(today)
	t.form = Form{Draft: core.BlankDraft(today)}
	return t
}

// Load re-fetches the full record set. On failure the previous set is kept
// and the error is logged and returned.
func (t *Tracker) Load(ctx context.Context) error {
	t.ops.Lock()
	defer t.ops.Unlock()
	return t.refresh(ctx)
}

// refresh must be called with ops held.
func (t *Tracker) refresh(ctx context.Context) error {
	records, err := t.gw.ListAll(ctx)
	if err != nil {
		t.events.LogError(ctx, "Failed to fetch expenses", err, applog.OpList, nil)
		t.mu.Lock()
		t.lastErr = err
		t.mu.Unlock()
		return fmt.Errorf("fetch expenses: %w", err)
	}

	var summary []core.CategoryTotal
	var summaryErr error
	if t.serverSummary {
		summary, summaryErr = t.gw.Summary(ctx)
		if summaryErr != nil {
			t.events.LogError(ctx, "Failed to fetch summary", summaryErr, applog.OpSummary, nil)
		}
	}

	t.mu.Lock()
	t.records = records
	if summaryErr == nil {
		t.summary = summary
	}
	t.loaded = true
	t.lastSync = t.now()
	t.lastErr = nil
	if !t.selected.IsZero() && indexOf(records, t.selected) < 0 {
		t.selected = ""
	}
	t.mu.Unlock()

	t.logger.DebugContext(ctx, "Expenses refreshed", applog.FieldCount, len(records))
	return nil
}

// Submission reports what Submit did.
type Submission struct {
	Record  core.ExpenseRecord
	Created bool // false for an update of the edited record
}

// Submit creates the draft, or updates the record being edited. A draft
// failing required-field checks sends no request. On any failure the form
// keeps the submitted draft so the user can retry.
func (t *Tracker) Submit(ctx context.Context, d core.Draft) (Submission, error) {
	in, err := d.Input()
	if err != nil {
		t.mu.Lock()
		t.form.Draft = d
		t.mu.Unlock()
		t.logger.DebugContext(ctx, "Submission rejected", applog.FieldError, err)
		return Submission{}, err
	}

	t.ops.Lock()
	defer t.ops.Unlock()

	t.mu.Lock()
	t.form.Draft = d
	editing := t.form.EditingID
	t.mu.Unlock()

	var (
		rec core.ExpenseRecord
		op  = applog.OpCreate
	)
	if editing.IsZero() {
		rec, err = t.gw.Create(ctx, in)
	} else {
		op = applog.OpUpdate
		rec, err = t.gw.Update(ctx, editing, in)
	}
	if err != nil {
		fields := applog.NewFields().WithRecord(editing.String(), in.Date, in.Category, in.Amount.String())
		t.events.LogError(ctx, "Failed to save expense", err, op, fields)
		t.mu.Lock()
		t.lastErr = err
		t.mu.Unlock()
		return Submission{}, err
	}
	t.events.LogRecordMutation(ctx, op, rec.ID.String(), rec.Date, rec.Category, rec.Amount.String())

	// Re-fetch failures leave the stale list; the mutation itself succeeded.
	_ = t.refresh(ctx)

	t.mu.Lock()
	t.form = Form{Draft: core.BlankDraft(t.now())}
	t.mu.Unlock()
	return Submission{Record: rec, Created: editing.IsZero()}, nil
}

// Edit loads a record from the current set into the form.
func (t *Tracker) Edit(id core.RecordID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := indexOf(t.records, id)
	if i < 0 {
		return ErrUnknownRecord
	}
	t.form = Form{Draft: core.DraftFrom(t.records[i]), EditingID: id}
	return nil
}

// CancelEdit resets the form to a blank "add" form.
func (t *Tracker) CancelEdit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.form = Form{Draft: core.BlankDraft(t.now())}
}

// Delete removes a record. Deleting the record open in the form resets the
// form. A record the store no longer has counts as deleted. Any other
// failure leaves all state untouched.
func (t *Tracker) Delete(ctx context.Context, id core.RecordID) error {
	t.ops.Lock()
	defer t.ops.Unlock()

	err := t.gw.Remove(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		t.logger.InfoContext(ctx, "Expense already gone from the store", applog.FieldRecordID, id.String())
	case err != nil:
		fields := applog.NewFields()
		fields[applog.FieldRecordID] = id.String()
		t.events.LogError(ctx, "Failed to delete expense", err, applog.OpDelete, fields)
		t.mu.Lock()
		t.lastErr = err
		t.mu.Unlock()
		return err
	default:
		t.events.LogRecordMutation(ctx, applog.OpDelete, id.String(), "", "", "")
	}

	t.mu.Lock()
	if t.form.EditingID == id {
		t.form = Form{Draft: core.BlankDraft(t.now())}
	}
	if t.selected == id {
		t.selected = ""
	}
	t.mu.Unlock()

	_ = t.refresh(ctx)
	return nil
}

// Now is the tracker's clock.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// SetFilters replaces the active filters.
func (t *Tracker) SetFilters(f core.FilterCriteria) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filters = f.Normalize()
}

// ClearFilters restores the current month and year with nothing else set.
func (t *Tracker) ClearFilters() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filters = core.DefaultFilters(t.now())
}

// Select opens the detail view of a record; an empty id closes it.
func (t *Tracker) Select(id core.RecordID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id.IsZero() {
		t.selected = ""
		return nil
	}
	if indexOf(t.records, id) < 0 {
		return ErrUnknownRecord
	}
	t.selected = id
	return nil
}

// Snapshot is a consistent, read-only copy of the state plus every derived
// view.
type Snapshot struct {
	Records     []core.ExpenseRecord
	Filters     core.FilterCriteria
	Form        Form
	Selected    *core.ExpenseRecord
	Projection  analytics.Projection
	YearOptions []string
	Calendar    analytics.Calendar

	// Summary is the category totals shown in the summary panel; it comes
	// from the store when ServerSummary is set and a fetch has succeeded.
	Summary           []core.CategoryTotal
	SummaryFromServer bool
	Loaded            bool
	LastSync          time.Time
	LastError         string
}

// View recomputes every projection from the current records and filters.
func (t *Tracker) View() Snapshot {
	t.mu.RLock()
	records := append([]core.ExpenseRecord(nil), t.records...)
	filters := t.filters
	form := t.form
	selected := t.selected
	summary := append([]core.CategoryTotal(nil), t.summary...)
	loaded, lastSync, lastErr := t.loaded, t.lastSync, t.lastErr
	t.mu.RUnlock()

	now := t.now()
	proj := analytics.Project(records, filters)
	year, month := analytics.DisplayMonth(filters, now)

	s := Snapshot{
		Records:     records,
		Filters:     filters,
		Form:        form,
		Projection:  proj,
		YearOptions: analytics.YearOptions(records, now),
		Calendar:    analytics.CalendarMonth(proj.Buckets, year, month),
		Summary:     proj.Categories,
		Loaded:      loaded,
		LastSync:    lastSync,
	}
	if t.serverSummary && summary != nil {
		s.Summary = summary
		s.SummaryFromServer = true
	}
	if i := indexOf(records, selected); i >= 0 {
		r := records[i]
		s.Selected = &r
	}
	if lastErr != nil {
		s.LastError = lastErr.Error()
	}
	return s
}

func indexOf(records []core.ExpenseRecord, id core.RecordID) int {
	if id.IsZero() {
		return -1
	}
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
