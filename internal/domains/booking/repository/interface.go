package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/model"
)

// =====================================================
// REPOSITORY INTERFACES
// =====================================================

// TransactionManager runs a function inside one database transaction.
// Implemented by the pgx pool wrapper; tests substitute an in-memory fake.
type TransactionManager interface {
	ExecuteInTransaction(ctx context.Context, fn func(pgx.Tx) error) error
}

// BookingRepository persists bookings and their audit trail. Mutations are
// conditional on the expected current status so the row lock plus the
// guard catch any drift between read and write.
type BookingRepository interface {
	// InsertTx appends a new booking row.
	InsertTx(ctx context.Context, tx pgx.Tx, b *model.Booking) error

	// GetForUpdateTx locks the booking row for the transaction.
	// Returns model.ErrBookingNotFound when absent.
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Booking, error)

	// GetByID is the unlocked read used by GET endpoints.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)

	// UpdateStatusTx moves status from -> to. Zero affected rows is
	// reported as model.ErrStatusDrift.
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) error

	// AssignProviderTx is the accept write: status from -> to and
	// provider_id set, guarded on status AND provider_id being null or
	// already the same uid.
	AssignProviderTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, providerUID, from, to string) error

	// ClearProviderTx is the provider-cancel write: status from -> to and
	// provider_id nulled, candidate list untouched.
	ClearProviderTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) error

	// SetCompletePendingTx moves the booking into COMPLETE_PENDING with
	// the grace deadline.
	SetCompletePendingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from string, until time.Time) error

	// SetPaymentRefTx records the gateway reference of the booking's main
	// payment intent.
	SetPaymentRefTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, providerRef string) error

	// AppendEventTx writes one audit row.
	AppendEventTx(ctx context.Context, tx pgx.Tx, event *model.BookingEvent) error

	// ListByCustomer returns the customer's bookings, newest first.
	ListByCustomer(ctx context.Context, customerID string, q model.ListQuery) ([]model.Booking, error)

	// ListByProvider returns bookings claimed by the provider, newest first.
	ListByProvider(ctx context.Context, providerUID string, q model.ListQuery) ([]model.Booking, error)

	// SweepExpired expires PENDING_PAYMENT bookings created before the
	// cutoff in one conditional UPDATE and returns the affected count.
	SweepExpired(ctx context.Context, cutoff time.Time) (int64, error)

	// FindGraceExpired returns ids of COMPLETE_PENDING bookings whose
	// grace deadline has passed.
	FindGraceExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}
