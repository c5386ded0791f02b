// Package services orchestrates the reference store: persistence first,
// then best-effort change notifications.
package services

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
)

// ChangePublisher announces collection changes; *amqp.Client implements it.
type ChangePublisher interface {
	PublishRecordChanged(ctx context.Context, change, id string) error
}

// ExpenseService wraps a repository and publishes a record-changed event
// after every successful mutation. Publishing failures never fail the
// request.
type ExpenseService struct {
	repo      store.RecordStore
	publisher ChangePublisher
	logger    *applog.Logger
}

func NewExpenseService(repo store.RecordStore, publisher ChangePublisher, logger *applog.Logger) *ExpenseService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ExpenseService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentStore),
	}
}

func (s *ExpenseService) ListAll(ctx context.Context) ([]core.ExpenseRecord, error) {
	return s.repo.ListAll(ctx)
}

func (s *ExpenseService) Summary(ctx context.Context) ([]core.CategoryTotal, error) {
	return s.repo.Summary(ctx)
}

func (s *ExpenseService) Create(ctx context.Context, in core.ExpenseInput) (core.ExpenseRecord, error) {
	rec, err := s.repo.Create(ctx, in)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}
	s.publish(ctx, amqp.ChangeCreated, rec.ID)
	return rec, nil
}

func (s *ExpenseService) Update(ctx context.Context, id core.RecordID, in core.ExpenseInput) (core.ExpenseRecord, error) {
	rec, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("update expense: %w", err)
	}
	s.publish(ctx, amqp.ChangeUpdated, rec.ID)
	return rec, nil
}

func (s *ExpenseService) Remove(ctx context.Context, id core.RecordID) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, amqp.ChangeDeleted, id)
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, change string, id core.RecordID) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordChanged(ctx, change, id.String()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record changed event",
			"change", change,
			applog.FieldRecordID, id.String(),
			applog.FieldError, err)
	}
}

// Close releases the repository and publisher when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.repo.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}

var _ store.RecordStore = (*ExpenseService)(nil)
