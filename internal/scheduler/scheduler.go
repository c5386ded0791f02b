// Package scheduler runs periodic resyncs of the tracker's record set.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	applog "expensetracker/internal/log"
)

// Refresher re-fetches the full record set.
type Refresher interface {
	Load(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	logger *applog.Logger
}

func New(logger *applog.Logger) *Scheduler {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentScheduler)
	cl := cronLogger{logger}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
	}
}

// AddRefresh schedules r.Load on a standard cron spec or descriptor such as
// "@every 5m".
func (s *Scheduler) AddRefresh(ctx context.Context, spec string, r Refresher) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := r.Load(ctx); err != nil {
			s.logger.WarnContext(ctx, "Scheduled refresh failed", applog.FieldError, err)
			return
		}
		s.logger.DebugContext(ctx, "Scheduled refresh completed")
	})
	if err != nil {
		return fmt.Errorf("schedule refresh %q: %w", spec, err)
	}
	s.logger.Info("Scheduled periodic refresh", "schedule", spec)
	return nil
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Run starts the scheduler and blocks until ctx ends, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	l *applog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, applog.FieldError, err)...)
}
