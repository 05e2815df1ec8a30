package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL statements of the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type viewStateRow struct {
	ListName  string
	Query     string
	Sorts     string
	Page      int64
	UpdatedAt string
}

const upsertViewState = `
INSERT INTO view_state (list_name, query, sorts, page, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (list_name) DO UPDATE SET
    query = excluded.query,
    sorts = excluded.sorts,
    page = excluded.page,
    updated_at = excluded.updated_at`

func (q *Queries) UpsertViewState(ctx context.Context, arg viewStateRow) error {
	_, err := q.db.ExecContext(ctx, upsertViewState, arg.ListName, arg.Query, arg.Sorts, arg.Page, arg.UpdatedAt)
	return err
}

const getViewState = `
SELECT list_name, query, sorts, page, updated_at
FROM view_state
WHERE list_name = ?`

func (q *Queries) GetViewState(ctx context.Context, listName string) (viewStateRow, error) {
	var r viewStateRow
	err := q.db.QueryRowContext(ctx, getViewState, listName).
		Scan(&r.ListName, &r.Query, &r.Sorts, &r.Page, &r.UpdatedAt)
	return r, err
}

const deleteViewState = `DELETE FROM view_state WHERE list_name = ?`

func (q *Queries) DeleteViewState(ctx context.Context, listName string) error {
	_, err := q.db.ExecContext(ctx, deleteViewState, listName)
	return err
}

type deletionRow struct {
	ID        int64
	ListName  string
	Endpoint  string
	RecordID  string
	Status    string
	Error     string
	CreatedAt string
}

const insertDeletion = `
INSERT INTO deletion_journal (list_name, endpoint, record_id, status, error, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) InsertDeletion(ctx context.Context, arg deletionRow) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, insertDeletion,
		arg.ListName, arg.Endpoint, arg.RecordID, arg.Status, arg.Error, arg.CreatedAt).Scan(&id)
	return id, err
}

const listDeletions = `
SELECT id, list_name, endpoint, record_id, status, error, created_at
FROM deletion_journal
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListDeletions(ctx context.Context, limit int64) ([]deletionRow, error) {
	rows, err := q.db.QueryContext(ctx, listDeletions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []deletionRow
	for rows.Next() {
		var r deletionRow
		if err := rows.Scan(&r.ID, &r.ListName, &r.Endpoint, &r.RecordID, &r.Status, &r.Error, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const pruneDeletions = `DELETE FROM deletion_journal WHERE created_at < ?`

func (q *Queries) PruneDeletions(ctx context.Context, before string) (int64, error) {
	res, err := q.db.ExecContext(ctx, pruneDeletions, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
