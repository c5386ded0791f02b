// Package cli provides the startup helpers shared by cmd/tracker and
// cmd/expense-store.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
	"expensetracker/internal/store"
	"expensetracker/internal/store/memory"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the application logger at the LOG_LEVEL style level
// and installs it as the slog default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	logger := applog.New(cfg)
	slog.SetDefault(logger.Logger)
	return logger
}

// LoadConfig reads .env and the environment, then sets up logging.
func LoadConfig() (*config.Config, *applog.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	return cfg, SetupLogger(cfg.LogLevel)
}

// MustValidate exits the process when validation failed.
func MustValidate(logger *applog.Logger, err error) {
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
}

// InitStore opens the backend named by STORE_BACKEND. The SQLite backend
// implements Close and Ping.
func InitStore(logger *applog.Logger, cfg *config.Config) (store.RecordStore, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository at %s: %w", cfg.SQLiteDBPath, err)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
		return repo, nil
	default:
		if cfg.StoreSeedFile == "" {
			logger.Info("Initialized memory backend")
			return memory.New(), nil
		}
		mem, err := memory.NewFromFile(cfg.StoreSeedFile)
		if err != nil {
			return nil, fmt.Errorf("seed memory backend: %w", err)
		}
		logger.Info("Initialized memory backend", "seed_file", cfg.StoreSeedFile)
		return mem, nil
	}
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
