// Package worker reacts to record-changed events by re-fetching the
// tracker's record set.
package worker

import (
	"context"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
)

// Refresher re-fetches the full record set; *state.Tracker implements it.
type Refresher interface {
	Load(ctx context.Context) error
}

type RefreshWorker struct {
	target Refresher
	logger *applog.Logger
}

func NewRefreshWorker(target Refresher, logger *applog.Logger) *RefreshWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &RefreshWorker{target: target, logger: logger.WithComponent(applog.ComponentAMQP)}
}

// HandleRecordChanged re-fetches the list. A failed fetch is logged and the
// event still acknowledged: the tracker keeps its previous set and the next
// event or scheduled resync catches up.
func (w *RefreshWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	w.logger.InfoContext(ctx, "Record changed, refreshing",
		"change", msg.Change,
		applog.FieldRecordID, msg.ID)

	if err := w.target.Load(ctx); err != nil {
		w.logger.WarnContext(ctx, "Refresh after change event failed",
			applog.FieldRecordID, msg.ID,
			applog.FieldError, err)
	}
	return nil
}
