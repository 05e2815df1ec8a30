package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Web application whose rendered lists are browsed
	BaseURL        string
	RecordEndpoint string
	HTTPTimeout    time.Duration

	// Record lists
	PageSize  int
	ListsFile string
	Theme     string

	// Database
	SQLiteDBPath string

	// Deletion journal upkeep; zero retention keeps every entry
	JournalRetention     time.Duration
	JournalPruneInterval time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	LogLevel string
	LogFile  string
}

func Load() *Config {
	cfg := &Config{
		BaseURL:        getEnv("CONTI_BASE_URL", ""),
		RecordEndpoint: getEnv("CONTI_RECORD_ENDPOINT", "/transactions"),
		HTTPTimeout:    getEnvDuration("CONTI_HTTP_TIMEOUT", 10*time.Second),

		PageSize:  getEnvInt("CONTI_PAGE_SIZE", 5),
		ListsFile: getEnv("CONTI_LISTS_FILE", ""),
		Theme:     getEnv("CONTI_THEME", "light"),

		SQLiteDBPath: getEnv("CONTI_DB_PATH", "./data/conti.db"),

		JournalRetention:     getEnvDuration("CONTI_JOURNAL_RETENTION", 30*24*time.Hour),
		JournalPruneInterval: getEnvDuration("CONTI_JOURNAL_PRUNE_INTERVAL", time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "conti"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Export"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("CONTI_LOG_FILE", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid base URL '%s': %v", c.BaseURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	}

	if c.RecordEndpoint == "" || !strings.HasPrefix(c.RecordEndpoint, "/") {
		errors = append(errors, fmt.Sprintf("invalid record endpoint '%s': must start with '/'", c.RecordEndpoint))
	}

	if c.PageSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be at least 1", c.PageSize))
	} else if c.PageSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be at most 1000", c.PageSize))
	}

	if c.HTTPTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 100ms", c.HTTPTimeout))
	} else if c.HTTPTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at most 5 minutes", c.HTTPTimeout))
	}

	if c.Theme != "light" && c.Theme != "dark" {
		errors = append(errors, fmt.Sprintf("invalid theme '%s': must be 'light' or 'dark'", c.Theme))
	}

	if c.JournalRetention < 0 {
		errors = append(errors, fmt.Sprintf("invalid journal retention %v: must not be negative", c.JournalRetention))
	}
	if c.JournalRetention > 0 && c.JournalPruneInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid journal prune interval %v: must be at least 1 minute", c.JournalPruneInterval))
	}

	if c.ListsFile != "" {
		if _, err := os.Stat(c.ListsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("lists file does not exist: %s", c.ListsFile))
		}
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// AMQP is optional; when configured it must be complete
	if c.AMQPURL != "" {
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
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateExport checks the settings needed by the Sheets exporter.
func (c *Config) ValidateExport() error {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required for export")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "GOOGLE_SHEET_NAME is required for export")
	}
	if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for export")
	}
	if len(errors) > 0 {
		return fmt.Errorf("export configuration invalid:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ServiceAccountCredentials returns the Google credentials JSON from the
// inline variable or the credentials file.
func (c *Config) ServiceAccountCredentials() ([]byte, error) {
	if c.GoogleServiceAccountJSON != "" {
		return []byte(c.GoogleServiceAccountJSON), nil
	}
	if c.GoogleServiceAccountFile == "" {
		return nil, fmt.Errorf("no Google service account configured")
	}
	b, err := os.ReadFile(c.GoogleServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// ResolveURL joins a path onto BaseURL. Absolute URLs are returned unchanged.
func (c *Config) ResolveURL(ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	if r.IsAbs() {
		return r.String(), nil
	}
	if c.BaseURL == "" {
		return "", fmt.Errorf("relative url %q requires CONTI_BASE_URL", ref)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return base.ResolveReference(r).String(), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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
