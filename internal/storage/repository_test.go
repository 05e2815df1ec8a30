package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"conti/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "conti.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestViewState_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.LoadViewState(ctx, "transactions"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	st := core.State{
		Query: "coffee",
		Sorts: []core.SortKey{{Field: "date", Asc: true}, {Field: "amount", Asc: false}},
		Page:  2,
	}
	if err := repo.SaveViewState(ctx, "transactions", st); err != nil {
		t.Fatal(err)
	}
	got, err := repo.LoadViewState(ctx, "transactions")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(st.Sorts, got.Sorts); diff != "" {
		t.Fatalf("sorts (-want +got):\n%s", diff)
	}
	if got.Query != "coffee" || got.Page != 2 || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected state %+v", got)
	}

	st.Query = ""
	st.Sorts = nil
	st.Page = 0
	if err := repo.SaveViewState(ctx, "transactions", st); err != nil {
		t.Fatal(err)
	}
	got, err = repo.LoadViewState(ctx, "transactions")
	if err != nil {
		t.Fatal(err)
	}
	if got.Query != "" || len(got.Sorts) != 0 || got.Page != 1 {
		t.Fatalf("expected overwritten state, got %+v", got)
	}
	if restored := got.CoreState(); restored.Page != 1 {
		t.Fatalf("core state page = %d", restored.Page)
	}

	if err := repo.ClearViewState(ctx, "transactions"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.LoadViewState(ctx, "transactions"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestDeletionJournal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	entries := []DeletionEntry{
		{List: "transactions", Endpoint: "/transactions", RecordID: "1", Status: StatusDeleted, CreatedAt: base},
		{List: "transactions", Endpoint: "/transactions", RecordID: "2", Status: StatusFailed, Error: "Errore eliminazione", CreatedAt: base.Add(time.Minute)},
		{List: "rules", Endpoint: "/rules", RecordID: "9", Status: StatusDeleted, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if _, err := repo.RecordDeletion(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := repo.RecordDeletion(ctx, DeletionEntry{RecordID: "x", Status: "maybe"}); err == nil {
		t.Fatal("expected invalid status error")
	}

	got, err := repo.ListDeletions(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].RecordID != "9" || got[1].RecordID != "2" {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[1].Error != "Errore eliminazione" || !got[1].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected entry %+v", got[1])
	}

	repo.now = func() time.Time { return base.Add(90 * time.Second) }
	n, err := repo.PruneDeletions(ctx, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected one pruned entry, got %d", n)
	}
	all, err := repo.ListDeletions(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two remaining entries, got %d", len(all))
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conti.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}
