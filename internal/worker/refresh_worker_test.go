package worker

import (
	"context"
	"errors"
	"testing"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
)

type countingRefresher struct {
	calls int
	err   error
}

func (c *countingRefresher) Load(context.Context) error {
	c.calls++
	return c.err
}

func TestHandleRecordChangedRefreshes(t *testing.T) {
	r := &countingRefresher{}
	w := NewRefreshWorker(r, applog.Discard())

	msg := amqp.NewRecordChangedMessage(amqp.ChangeCreated, "1")
	if err := w.HandleRecordChanged(context.Background(), msg); err != nil {
		t.Fatalf("HandleRecordChanged: %v", err)
	}
	if r.calls != 1 {
		t.Errorf("Load calls = %d, want 1", r.calls)
	}
}

func TestHandleRecordChangedAcksOnRefreshFailure(t *testing.T) {
	r := &countingRefresher{err: errors.New("store unreachable")}
	w := NewRefreshWorker(r, applog.Discard())

	err := w.HandleRecordChanged(context.Background(), amqp.NewRecordChangedMessage(amqp.ChangeDeleted, "1"))
	if err != nil {
		t.Errorf("refresh failures should not requeue, got %v", err)
	}
}
