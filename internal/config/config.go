package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Summary sources for the category totals shown on the dashboard.
const (
	SummaryClient = "client"
	SummaryServer = "server"
)

// Record store backends of the reference store.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	// Tracker HTTP server
	Port     string
	LogLevel string

	// Remote record store
	StoreURL      string
	StoreTimeout  time.Duration
	SummarySource string

	// Periodic resync, a standard 5-field cron expression or descriptor
	RefreshSchedule string

	// AMQP change notifications
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Reference store
	StorePort     string
	StoreBackend  string
	SQLiteDBPath  string
	StoreSeedFile string
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreURL:      getEnv("STORE_URL", "http://localhost:5000/api"),
		StoreTimeout:  getEnvDuration("STORE_TIMEOUT", 10*time.Second),
		SummarySource: getEnv("SUMMARY_SOURCE", SummaryClient),

		RefreshSchedule: getEnv("REFRESH_SCHEDULE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expenses"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "tracker_refresh"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		StorePort:     getEnv("STORE_PORT", "5000"),
		StoreBackend:  getEnv("STORE_BACKEND", BackendMemory),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
		StoreSeedFile: getEnv("STORE_SEED_FILE", ""),
	}
}

// SheetsEnabled reports whether a Google Sheets export target is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// AMQPEnabled reports whether change notifications are configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate checks the tracker settings and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	errors = append(errors, validatePort("port", c.Port)...)

	if c.StoreURL == "" {
		errors = append(errors, "store URL cannot be empty")
	} else if u, err := url.Parse(c.StoreURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid store URL '%s': %v", c.StoreURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid store URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.StoreTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid store timeout %v: must be at least 100ms", c.StoreTimeout))
	} else if c.StoreTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid store timeout %v: must be at most 5 minutes", c.StoreTimeout))
	}

	if c.SummarySource != SummaryClient && c.SummarySource != SummaryServer {
		errors = append(errors, fmt.Sprintf("invalid summary source '%s': must be one of [%s %s]", c.SummarySource, SummaryClient, SummaryServer))
	}

	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			errors = append(errors, fmt.Sprintf("invalid refresh schedule '%s': %v", c.RefreshSchedule, err))
		}
	}

	errors = append(errors, c.validateAMQP()...)

	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	return combine(errors)
}

// ValidateStore checks the reference store settings.
func (c *Config) ValidateStore() error {
	var errors []string

	errors = append(errors, validatePort("store port", c.StorePort)...)

	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
			break
		}
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of [%s %s]", c.StoreBackend, BackendMemory, BackendSQLite))
	}

	errors = append(errors, c.validateAMQP()...)

	return combine(errors)
}

func (c *Config) validateAMQP() []string {
	if c.AMQPURL == "" {
		return nil
	}
	var errors []string
	if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
	} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
	}
	if c.AMQPExchange == "" {
		errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
	}
	return errors
}

func validatePort(name, value string) []string {
	port, err := strconv.Atoi(value)
	if err != nil {
		return []string{fmt.Sprintf("invalid %s '%s': must be a number", name, value)}
	}
	if port < 1 || port > 65535 {
		return []string{fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, port)}
	}
	return nil
}

func combine(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
