// Package worker runs background upkeep alongside the long-running commands.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	applog "conti/internal/log"
)

// ErrAlreadyRunning is returned by Start on a pruner that was not stopped.
var ErrAlreadyRunning = errors.New("journal pruner is already running")

// JournalStore is the part of the deletion journal the pruner needs.
type JournalStore interface {
	PruneDeletions(ctx context.Context, maxAge time.Duration) (int64, error)
}

// JournalPrunerConfig holds the retention policy.
type JournalPrunerConfig struct {
	// Interval between prune passes (default: 1h)
	Interval time.Duration

	// Retention is how old an entry must be before it is dropped (default: 30 days)
	Retention time.Duration
}

// DefaultJournalPrunerConfig returns sensible defaults
func DefaultJournalPrunerConfig() JournalPrunerConfig {
	return JournalPrunerConfig{
		Interval:  time.Hour,
		Retention: 30 * 24 * time.Hour,
	}
}

// JournalPruner periodically drops old deletion journal entries.
type JournalPruner struct {
	store  JournalStore
	config JournalPrunerConfig
	logger *applog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	pruned  int64
}

// NewJournalPruner creates a pruner. Zero config fields take the defaults.
func NewJournalPruner(store JournalStore, config JournalPrunerConfig, logger *applog.Logger) *JournalPruner {
	def := DefaultJournalPrunerConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.Retention <= 0 {
		config.Retention = def.Retention
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &JournalPruner{
		store:  store,
		config: config,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// Start prunes once and then on every interval until Stop or ctx is done.
func (p *JournalPruner) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	p.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	p.stopCh, p.doneCh = stopCh, doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	p.logger.InfoContext(ctx, "Journal pruner started",
		"interval", p.config.Interval,
		"retention", p.config.Retention)
	return nil
}

// Stop signals the loop and waits for it to finish or ctx to expire.
func (p *JournalPruner) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		p.logger.DebugContext(ctx, "Journal pruner stopped")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Journal pruner stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the loop is active.
func (p *JournalPruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Pruned returns the number of entries dropped so far.
func (p *JournalPruner) Pruned() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pruned
}

func (p *JournalPruner) runLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.PruneOnce(ctx)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PruneOnce(ctx)
		}
	}
}

// PruneOnce runs a single pass. Failures are logged, never fatal.
func (p *JournalPruner) PruneOnce(ctx context.Context) int64 {
	n, err := p.store.PruneDeletions(ctx, p.config.Retention)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to prune deletion journal",
			applog.NewFields().
				WithOperation(applog.OpPrune).
				WithError(err).
				WithErrorType(applog.ErrorTypeDatabase).
				ToSlice()...)
		return 0
	}
	if n > 0 {
		p.logger.InfoContext(ctx, "Pruned deletion journal", "entries", n)
	}
	p.mu.Lock()
	p.pruned += n
	p.mu.Unlock()
	return n
}
