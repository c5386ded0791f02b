// Package store declares the record-store ports shared by the remote
// gateway, the reference store repositories and the application state.
package store

import (
	"context"
	"errors"

	"expensetracker/internal/core"
)

// ErrNotFound is returned when an update or delete targets an unknown id.
var ErrNotFound = errors.New("expense not found")

// Ports for the expense collection.
type (
	RecordLister interface {
		// ListAll returns the full collection; there is no pagination.
		ListAll(ctx context.Context) ([]core.ExpenseRecord, error)
	}

	RecordWriter interface {
		// Create stores a new record and returns it with its assigned id.
		Create(ctx context.Context, in core.ExpenseInput) (core.ExpenseRecord, error)
		// Update replaces the record with the given id entirely.
		Update(ctx context.Context, id core.RecordID, in core.ExpenseInput) (core.ExpenseRecord, error)
	}

	RecordRemover interface {
		Remove(ctx context.Context, id core.RecordID) error
	}

	// SummaryReader returns server-computed category totals over all records.
	SummaryReader interface {
		Summary(ctx context.Context) ([]core.CategoryTotal, error)
	}

	RecordStore interface {
		RecordLister
		RecordWriter
		RecordRemover
		SummaryReader
	}
)
