package services

import (
	"context"

	"conti/internal/storage"
)

// Deleter issues the network deletion of a record.
type Deleter interface {
	DeleteRecord(ctx context.Context, endpoint, id string) error
}

// DeletionJournal records confirmed deletion attempts.
type DeletionJournal interface {
	RecordDeletion(ctx context.Context, e storage.DeletionEntry) (int64, error)
}

// EventPublisher announces deleted records.
type EventPublisher interface {
	PublishRecordDeleted(ctx context.Context, list, endpoint, id string) error
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// Notifier surfaces an error message to the user.
type Notifier interface {
	Notify(message string)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool { return f(ctx, message) }

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(message string)

func (f NotifyFunc) Notify(message string) { f(message) }
