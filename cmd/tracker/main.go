package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/export"
	"expensetracker/internal/gateway"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/scheduler"
	"expensetracker/internal/state"
	"expensetracker/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig()
	cli.MustValidate(logger, cfg.Validate())

	if err := run(cfg, logger); err != nil {
		logger.Error("Tracker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Tracker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	logger.Info("Starting expense tracker", "port", cfg.Port, "store_url", cfg.StoreURL)

	gw, err := gateway.New(cfg.StoreURL,
		gateway.WithLogger(logger),
		gateway.WithTimeout(cfg.StoreTimeout))
	if err != nil {
		return fmt.Errorf("initialize store client: %w", err)
	}

	tracker := state.New(gw, state.Options{
		ServerSummary: cfg.SummarySource == config.SummaryServer,
		Logger:        logger,
	})

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	opts := apphttp.Options{
		Logger:    logger,
		RateLimit: ratelimit.DefaultConfig(),
	}
	if cfg.SheetsEnabled() {
		sheets, err := export.NewSheetsExporter(ctx, export.SheetsConfig{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			return fmt.Errorf("initialize Google Sheets export: %w", err)
		}
		opts.Sheets = sheets
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, tracker, opts)
	if err != nil {
		return fmt.Errorf("build HTTP server: %w", err)
	}

	var consumer *amqp.Client
	if cfg.AMQPEnabled() {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer consumer.Close()
	}

	var sched *scheduler.Scheduler
	if cfg.RefreshSchedule != "" {
		sched = scheduler.New(logger)
		if err := sched.AddRefresh(ctx, cfg.RefreshSchedule, tracker); err != nil {
			return err
		}
	}

	// The first load may fail; the dashboard shows the error and retries on
	// the next page view.
	if err := tracker.Load(ctx); err != nil {
		logger.Warn("Initial load failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if consumer != nil {
		refresher := worker.NewRefreshWorker(tracker, logger)
		g.Go(func() error {
			err := consumer.ConsumeRecordChanges(gctx, refresher.HandleRecordChanged)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if sched != nil {
		g.Go(func() error { return sched.Run(gctx) })
	}

	return g.Wait()
}
