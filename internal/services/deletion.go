package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"conti/internal/api"
	"conti/internal/core"
	applog "conti/internal/log"
	"conti/internal/storage"
)

// Messages shown around a row deletion.
const (
	ConfirmDeleteMessage = "Sei sicuro di voler eliminare questa transazione?"
	DeleteFailedMessage  = "Errore eliminazione"
)

var (
	ErrNoDeleteID      = errors.New("record has no delete identifier")
	ErrNoDeleter       = errors.New("no deleter configured")
	ErrDeleteInFlight  = errors.New("deletion already in flight")
	ErrDeleteCancelled = errors.New("deletion cancelled")
)

// Deletion is a confirmed, pending row deletion. Do performs only the network
// call and may run off the UI loop; the result goes back through
// CompleteDelete.
type Deletion struct {
	Card     *core.Card
	Endpoint string
	ID       string

	deleter Deleter
}

// Do issues the deletion request.
func (d *Deletion) Do(ctx context.Context) error {
	return d.deleter.DeleteRecord(ctx, d.Endpoint, d.ID)
}

// BeginDelete asks for confirmation and reserves the record. A second
// deletion of the same record is refused while the first is in flight.
func (r *RecordList) BeginDelete(ctx context.Context, c *core.Card) (*Deletion, error) {
	if r.Inert() {
		return nil, ErrInert
	}
	if r.deps.Deleter == nil {
		return nil, ErrNoDeleter
	}
	if c == nil || c.DeleteID == "" {
		return nil, ErrNoDeleteID
	}
	if r.inFlight[c.DeleteID] {
		r.logger.Debug("Deletion already in flight", applog.FieldRecordID, c.DeleteID)
		return nil, ErrDeleteInFlight
	}
	if r.deps.Confirmer != nil && !r.deps.Confirmer.Confirm(ctx, ConfirmDeleteMessage) {
		return nil, ErrDeleteCancelled
	}
	r.inFlight[c.DeleteID] = true
	return &Deletion{Card: c, Endpoint: r.endpoint, ID: c.DeleteID, deleter: r.deps.Deleter}, nil
}

// CompleteDelete applies the outcome of d.Do. On success the record and its
// row are removed; on failure the error is surfaced and the record stays.
// Journal and event failures are logged only.
func (r *RecordList) CompleteDelete(ctx context.Context, d *Deletion, err error) error {
	delete(r.inFlight, d.ID)
	if err == nil && !r.DeleteCard(d.Card) {
		// the rows were rescanned while the request ran
		r.DeleteCardByID(d.ID)
	}
	return settle(ctx, r.deps, r.logger, r.name, d.Endpoint, d.ID, err)
}

// DeleteRecord deletes a record that is not on any loaded list: confirmation,
// request, journal, event and failure notice go through deps the same way they
// do for RecordList.
func DeleteRecord(ctx context.Context, deps Deps, list, endpoint, id string) error {
	if deps.Deleter == nil {
		return ErrNoDeleter
	}
	if id == "" {
		return ErrNoDeleteID
	}
	if deps.Confirmer != nil && !deps.Confirmer.Confirm(ctx, ConfirmDeleteMessage) {
		return ErrDeleteCancelled
	}
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentList).With(applog.FieldList, list)
	err := deps.Deleter.DeleteRecord(ctx, endpoint, id)
	return settle(ctx, deps, logger, list, endpoint, id, err)
}

// settle records the outcome of a deletion request.
func settle(ctx context.Context, deps Deps, logger *applog.Logger, list, endpoint, id string, err error) error {
	entry := storage.DeletionEntry{
		List:     list,
		Endpoint: endpoint,
		RecordID: id,
		Status:   storage.StatusDeleted,
	}
	fields := applog.NewFields().
		WithOperation(applog.OpDelete).
		WithRecord(endpoint, id)

	if err != nil {
		logger.ErrorContext(ctx, "Delete failed",
			fields.WithError(err).WithErrorType(applog.ErrorTypeNetwork).ToSlice()...)
		if deps.Notifier != nil {
			deps.Notifier.Notify(deleteFailureMessage(err))
		}
		entry.Status = storage.StatusFailed
		entry.Error = err.Error()
		journal(ctx, deps, logger, entry)
		return fmt.Errorf("delete record %s: %w", id, err)
	}

	logger.InfoContext(ctx, "Record deleted", fields.ToSlice()...)
	journal(ctx, deps, logger, entry)

	if deps.Publisher != nil {
		if perr := deps.Publisher.PublishRecordDeleted(ctx, list, endpoint, id); perr != nil {
			logger.WarnContext(ctx, "Failed to publish deletion event",
				applog.NewFields().WithError(perr).WithOperation(applog.OpPublish).ToSlice()...)
		}
	}
	return nil
}

// ConfirmAndDelete runs a whole deletion synchronously.
func (r *RecordList) ConfirmAndDelete(ctx context.Context, c *core.Card) error {
	d, err := r.BeginDelete(ctx, c)
	if err != nil {
		return err
	}
	return r.CompleteDelete(ctx, d, d.Do(ctx))
}

// Deleting reports whether a deletion of id is in flight.
func (r *RecordList) Deleting(id string) bool { return r.inFlight[id] }

func journal(ctx context.Context, deps Deps, logger *applog.Logger, e storage.DeletionEntry) {
	if deps.Journal == nil {
		return
	}
	if _, err := deps.Journal.RecordDeletion(ctx, e); err != nil {
		logger.WarnContext(ctx, "Failed to journal deletion",
			applog.NewFields().WithError(err).WithErrorType(applog.ErrorTypeDatabase).ToSlice()...)
	}
}

// deleteFailureMessage prefixes a rejected request with the generic message
// and keeps transport errors as they are.
func deleteFailureMessage(err error) string {
	var se *api.StatusError
	if !errors.As(err, &se) {
		return err.Error()
	}
	detail := strings.TrimSpace(se.Body)
	if detail == "" {
		detail = se.Status
	}
	if detail == "" {
		return DeleteFailedMessage
	}
	return fmt.Sprintf("%s: %s", DeleteFailedMessage, detail)
}
