// Package storage is the SQLite-backed expense collection of the reference
// store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRecord(row))
	}
	return out, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, in core.ExpenseInput) (core.ExpenseRecord, error) {
	if err := in.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	id := uuid.NewString()
	err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		ID:          id,
		Date:        in.Date,
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount.Decimal().String(),
	})
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("create expense: %w", err)
	}

	r.logger.InfoContext(ctx, "Expense saved to SQLite",
		applog.FieldRecordID, id,
		applog.FieldDate, in.Date,
		applog.FieldCategory, in.Category,
		applog.FieldAmount, in.Amount.String())

	return in.WithID(core.RecordID(id)), nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id core.RecordID, in core.ExpenseInput) (core.ExpenseRecord, error) {
	if err := in.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	n, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		Date:        in.Date,
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount.Decimal().String(),
		ID:          id.String(),
	})
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("update expense %s: %w", id, err)
	}
	if n == 0 {
		return core.ExpenseRecord{}, store.ErrNotFound
	}
	return in.WithID(id), nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id core.RecordID) error {
	n, err := r.queries.DeleteExpense(ctx, id.String())
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Expense deleted from SQLite", applog.FieldRecordID, id.String())
	return nil
}

// Get returns one record by id.
func (r *SQLiteRepository) Get(ctx context.Context, id core.RecordID) (core.ExpenseRecord, error) {
	row, err := r.queries.GetExpense(ctx, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, store.ErrNotFound
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return toRecord(row), nil
}

// Summary totals every record per category. Amounts are summed as exact
// decimals, so the grouping happens after the scan.
func (r *SQLiteRepository) Summary(ctx context.Context) ([]core.CategoryTotal, error) {
	records, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.CategoryTotals(records), nil
}

func toRecord(e Expense) core.ExpenseRecord {
	return core.ExpenseRecord{
		ID:          core.RecordID(e.ID),
		Date:        e.Date,
		Category:    e.Category,
		Description: e.Description,
		Amount:      core.CoerceAmount(e.Amount),
	}
}

var _ store.RecordStore = (*SQLiteRepository)(nil)
