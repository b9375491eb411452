package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
)

// =====================================================
// REPOSITORY INTERFACES
// =====================================================

// TransactionManager runs a function inside one database transaction.
// Implemented by the pgx pool wrapper; tests substitute an in-memory fake.
type TransactionManager interface {
	ExecuteInTransaction(ctx context.Context, fn func(pgx.Tx) error) error
}

// IntentRepository is the per-booking payment-intent history. The *Tx
// methods compose inside a booking mutation's transaction.
type IntentRepository interface {
	// InsertTx appends an intent row.
	InsertTx(ctx context.Context, tx pgx.Tx, intent *model.PaymentIntent) error

	// GetAuthorizedForUpdateTx locks and returns the booking's AUTHORIZED
	// intent. Returns model.ErrNoAuthorizedIntent when none exists.
	GetAuthorizedForUpdateTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*model.PaymentIntent, error)

	// GetByRefForUpdateTx locks and returns the intent with the given
	// provider reference. Returns model.ErrIntentNotFound when missing.
	GetByRefForUpdateTx(ctx context.Context, tx pgx.Tx, provider, providerRef string) (*model.PaymentIntent, error)

	// UpdateStatusTx moves an intent from one status to another.
	// The update is conditional on the current status; zero affected rows
	// is reported as model.ErrIntentNotFound.
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, fromStatus, toStatus string) error

	// ListByBooking returns the booking's full intent history.
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.PaymentIntent, error)
}

// WebhookRepository is the idempotency ledger keyed on (provider, event_id).
type WebhookRepository interface {
	// GetForUpdateTx locks and returns the ledger row, or nil when the
	// event has never been seen.
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, provider, eventID string) (*model.WebhookEvent, error)

	// UpsertPendingTx records the event as PENDING, stashing the payload
	// and refreshing last_seen.
	UpsertPendingTx(ctx context.Context, tx pgx.Tx, provider, eventID string, payload []byte) error

	// SetStatusTx moves the ledger row to the given status.
	SetStatusTx(ctx context.Context, tx pgx.Tx, provider, eventID, status string) error

	// MarkFailed records a FAILED outcome outside the rolled-back
	// processing transaction so the event stays retriable.
	MarkFailed(ctx context.Context, provider, eventID string, payload []byte) error
}
