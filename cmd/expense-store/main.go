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
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storeapi"
)

func main() {
	cfg, logger := cli.LoadConfig()
	cli.MustValidate(logger, cfg.ValidateStore())

	if err := run(cfg, logger); err != nil {
		logger.Error("Store stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Store stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	repo, err := cli.InitStore(logger, cfg)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", cfg.StoreBackend, err)
	}

	// Publishing is optional; without a broker the store serves requests
	// and nobody is told about changes.
	var publisher services.ChangePublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, "", logger)
		if err != nil {
			logger.Warn("AMQP unavailable, change events disabled", applog.FieldError, err)
		} else {
			publisher = client
		}
	}

	svc := services.NewExpenseService(repo, publisher, logger)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close store", applog.FieldError, err)
		}
	}()

	ready := func() error { return nil }
	if p, ok := repo.(interface{ Ping(context.Context) error }); ok {
		ready = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return p.Ping(ctx)
		}
	}

	router := storeapi.NewRouter(storeapi.NewHandler(svc, logger), "/api", ready)
	srv := &http.Server{
		Addr:           ":" + cfg.StorePort,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense store", "port", cfg.StorePort, "backend", cfg.StoreBackend)
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

	return g.Wait()
}
