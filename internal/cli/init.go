// Package cli provides the initialization steps shared by the conti commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"conti/internal/config"
	applog "conti/internal/log"
	"conti/internal/storage"
)

// SetupLogger builds the application logger at the given LOG_LEVEL value and
// makes it the slog default. A nil out writes to stderr.
func SetupLogger(level string, out io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// OpenLogOutput returns the writer logs go to: the named file when set,
// fallback otherwise. The returned closer is never nil.
func OpenLogOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig(logger *applog.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.NewFields().WithError(err).WithErrorType(applog.ErrorTypeConfiguration).ToSlice()...)
		return nil, err
	}
	return cfg, nil
}

// InitSQLite opens the view-state and journal database.
func InitSQLite(logger *applog.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath, logger)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			applog.NewFields().WithError(err).WithErrorType(applog.ErrorTypeDatabase).WithField("path", dbPath).ToSlice()...)
		return nil, err
	}
	return repo, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// It returns a context cancelled on SIGINT/SIGTERM (or when parent ends) and
// a channel closed once cleanup has run.
func GracefulShutdown(parent context.Context, logger *applog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()
		cancel()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
