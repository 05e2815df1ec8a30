package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeJournal struct {
	mu      sync.Mutex
	calls   int
	maxAges []time.Duration
	n       int64
	err     error
	called  chan struct{}
}

func newFakeJournal(n int64, err error) *fakeJournal {
	return &fakeJournal{n: n, err: err, called: make(chan struct{}, 16)}
}

func (f *fakeJournal) PruneDeletions(_ context.Context, maxAge time.Duration) (int64, error) {
	f.mu.Lock()
	f.calls++
	f.maxAges = append(f.maxAges, maxAge)
	f.mu.Unlock()
	select {
	case f.called <- struct{}{}:
	default:
	}
	return f.n, f.err
}

func (f *fakeJournal) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewJournalPruner_Defaults(t *testing.T) {
	p := NewJournalPruner(newFakeJournal(0, nil), JournalPrunerConfig{}, nil)
	if p.config != DefaultJournalPrunerConfig() {
		t.Fatalf("config = %+v, want defaults", p.config)
	}
}

func TestJournalPruner_PruneOnce(t *testing.T) {
	tests := []struct {
		name       string
		n          int64
		err        error
		wantN      int64
		wantPruned int64
	}{
		{name: "drops entries", n: 3, wantN: 3, wantPruned: 3},
		{name: "nothing to drop", n: 0, wantN: 0, wantPruned: 0},
		{name: "store failure is swallowed", n: 7, err: errors.New("disk I/O error"), wantN: 0, wantPruned: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeJournal(tt.n, tt.err)
			p := NewJournalPruner(store, JournalPrunerConfig{Retention: 48 * time.Hour}, nil)

			if got := p.PruneOnce(context.Background()); got != tt.wantN {
				t.Errorf("PruneOnce() = %d, want %d", got, tt.wantN)
			}
			if got := p.Pruned(); got != tt.wantPruned {
				t.Errorf("Pruned() = %d, want %d", got, tt.wantPruned)
			}
			if store.maxAges[0] != 48*time.Hour {
				t.Errorf("maxAge = %v, want 48h", store.maxAges[0])
			}
		})
	}
}

func TestJournalPruner_StartStop(t *testing.T) {
	store := newFakeJournal(1, nil)
	p := NewJournalPruner(store, JournalPrunerConfig{Interval: 10 * time.Millisecond}, nil)
	ctx := context.Background()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := p.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
	if !p.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}

	for i := 0; i < 2; i++ {
		select {
		case <-store.called:
		case <-time.After(2 * time.Second):
			t.Fatalf("prune pass %d never ran", i+1)
		}
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if p.IsRunning() {
		t.Fatal("IsRunning() = true after Stop")
	}
	if store.Calls() < 2 {
		t.Fatalf("calls = %d, want at least 2", store.Calls())
	}
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}

func TestJournalPruner_StopsWithContext(t *testing.T) {
	store := newFakeJournal(0, nil)
	p := NewJournalPruner(store, JournalPrunerConfig{Interval: time.Hour}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-store.called
	cancel()

	select {
	case <-p.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after context cancellation")
	}
}

// blockingJournal holds the first prune pass until release is closed.
type blockingJournal struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (b *blockingJournal) PruneDeletions(ctx context.Context, _ time.Duration) (int64, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		close(b.started)
		<-b.release
	}
	return 0, nil
}

func TestJournalPruner_RestartAfterStopTimeout(t *testing.T) {
	store := &blockingJournal{started: make(chan struct{}), release: make(chan struct{})}
	p := NewJournalPruner(store, JournalPrunerConfig{Interval: time.Hour}, nil)
	ctx := context.Background()

	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	firstDone := p.doneCh
	<-store.started

	expired, cancel := context.WithCancel(ctx)
	cancel()
	if err := p.Stop(expired); !errors.Is(err, context.Canceled) {
		t.Fatalf("Stop() error = %v, want context.Canceled", err)
	}

	if err := p.Start(ctx); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	close(store.release)

	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("first loop kept running after its stop signal")
	}

	stopCtx, stop := context.WithTimeout(ctx, time.Second)
	defer stop()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}
