// Package storage persists list view state and the deletion journal in SQLite.
// Records themselves are never stored: the rendered page is their source.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"conti/internal/core"
	applog "conti/internal/log"

	_ "modernc.org/sqlite"
)

// Deletion outcomes recorded in the journal.
const (
	StatusDeleted = "deleted"
	StatusFailed  = "failed"
)

// timeLayout is fixed-width UTC so stored timestamps order as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var ErrNotFound = errors.New("not found")

// ViewState is the persisted filter/sort/page state of a named list.
type ViewState struct {
	List      string
	Query     string
	Sorts     []core.SortKey
	Page      int
	UpdatedAt time.Time
}

// CoreState converts the stored state for core.List.Restore.
func (v ViewState) CoreState() core.State {
	return core.State{Query: v.Query, Sorts: v.Sorts, Page: v.Page}
}

// DeletionEntry is one confirmed deletion attempt.
type DeletionEntry struct {
	ID        int64
	List      string
	Endpoint  string
	RecordID  string
	Status    string
	Error     string
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(applog.ComponentStorage),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveViewState stores the state of list, replacing any previous one.
func (r *SQLiteRepository) SaveViewState(ctx context.Context, list string, st core.State) error {
	sorts := st.Sorts
	if sorts == nil {
		sorts = []core.SortKey{}
	}
	encoded, err := json.Marshal(sorts)
	if err != nil {
		return fmt.Errorf("encode sorts: %w", err)
	}
	page := st.Page
	if page < 1 {
		page = 1
	}

	if err := r.queries.UpsertViewState(ctx, viewStateRow{
		ListName:  list,
		Query:     st.Query,
		Sorts:     string(encoded),
		Page:      int64(page),
		UpdatedAt: r.now().UTC().Format(timeLayout),
	}); err != nil {
		return fmt.Errorf("save view state %s: %w", list, err)
	}

	r.logger.DebugContext(ctx, "View state saved",
		applog.FieldList, list, applog.FieldQuery, st.Query, applog.FieldPage, page)
	return nil
}

// LoadViewState returns the stored state of list, or ErrNotFound.
func (r *SQLiteRepository) LoadViewState(ctx context.Context, list string) (ViewState, error) {
	row, err := r.queries.GetViewState(ctx, list)
	if errors.Is(err, sql.ErrNoRows) {
		return ViewState{}, fmt.Errorf("view state %s: %w", list, ErrNotFound)
	}
	if err != nil {
		return ViewState{}, fmt.Errorf("load view state %s: %w", list, err)
	}

	var sorts []core.SortKey
	if err := json.Unmarshal([]byte(row.Sorts), &sorts); err != nil {
		return ViewState{}, fmt.Errorf("decode sorts of %s: %w", list, err)
	}
	updated, err := time.Parse(timeLayout, row.UpdatedAt)
	if err != nil {
		return ViewState{}, fmt.Errorf("parse updated_at of %s: %w", list, err)
	}
	return ViewState{
		List:      row.ListName,
		Query:     row.Query,
		Sorts:     sorts,
		Page:      int(row.Page),
		UpdatedAt: updated,
	}, nil
}

// ClearViewState forgets the state of list.
func (r *SQLiteRepository) ClearViewState(ctx context.Context, list string) error {
	if err := r.queries.DeleteViewState(ctx, list); err != nil {
		return fmt.Errorf("clear view state %s: %w", list, err)
	}
	return nil
}

// RecordDeletion appends an entry to the deletion journal.
func (r *SQLiteRepository) RecordDeletion(ctx context.Context, e DeletionEntry) (int64, error) {
	if e.Status != StatusDeleted && e.Status != StatusFailed {
		return 0, fmt.Errorf("record deletion: invalid status %q", e.Status)
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	id, err := r.queries.InsertDeletion(ctx, deletionRow{
		ListName:  e.List,
		Endpoint:  e.Endpoint,
		RecordID:  e.RecordID,
		Status:    e.Status,
		Error:     e.Error,
		CreatedAt: created.UTC().Format(timeLayout),
	})
	if err != nil {
		return 0, fmt.Errorf("record deletion of %s: %w", e.RecordID, err)
	}

	r.logger.InfoContext(ctx, "Deletion journaled",
		applog.NewFields().WithRecord(e.Endpoint, e.RecordID).WithList(e.List).ToSlice()...)
	return id, nil
}

// ListDeletions returns the most recent journal entries, newest first.
func (r *SQLiteRepository) ListDeletions(ctx context.Context, limit int) ([]DeletionEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.queries.ListDeletions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list deletions: %w", err)
	}

	out := make([]DeletionEntry, 0, len(rows))
	for _, row := range rows {
		created, err := time.Parse(timeLayout, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of deletion %d: %w", row.ID, err)
		}
		out = append(out, DeletionEntry{
			ID:        row.ID,
			List:      row.ListName,
			Endpoint:  row.Endpoint,
			RecordID:  row.RecordID,
			Status:    row.Status,
			Error:     row.Error,
			CreatedAt: created,
		})
	}
	return out, nil
}

// PruneDeletions drops journal entries older than maxAge.
func (r *SQLiteRepository) PruneDeletions(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := r.queries.PruneDeletions(ctx, r.now().Add(-maxAge).UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune deletions: %w", err)
	}
	return n, nil
}
