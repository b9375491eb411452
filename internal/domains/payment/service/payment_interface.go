package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
)

// =====================================================
// SERVICE INTERFACES
// =====================================================

// PaymentService is the per-booking intent ledger. Every operation takes
// the caller's transaction handle so it composes atomically with the
// booking mutation that triggered it.
type PaymentService interface {
	// CreateIntent inserts a CREATED intent for the booking, requesting a
	// manual-capture authorization from the gateway. Amount is the price
	// snapshot, or the fallback when the booking carries none.
	CreateIntent(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, priceSnapshotCents *int64) (*model.PaymentIntent, error)

	// Capture converts the booking's AUTHORIZED intent into a charge.
	// Errors if no AUTHORIZED intent exists.
	Capture(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*model.PaymentIntent, error)

	// Release voids the booking's AUTHORIZED intent. A booking without
	// one (never authorized) is a no-op.
	Release(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error

	// Fee appends a SUCCEEDED fee intent with a pi_fee_ reference.
	Fee(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, amountCents int64) (*model.PaymentIntent, error)

	// ListIntents returns a booking's full intent history.
	ListIntents(ctx context.Context, bookingID uuid.UUID) ([]model.PaymentIntent, error)
}

// BookingAuthorizer is the slice of the booking engine the webhook
// pipeline needs: moving a booking out of PENDING_PAYMENT once its
// authorization lands. Declared here (and wired by the container) to keep
// the dependency direction booking -> payment.
type BookingAuthorizer interface {
	MarkPaidSearchingTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error
}

// WebhookService is the idempotent webhook pipeline.
type WebhookService interface {
	// VerifySignature checks the HMAC signature over the raw body.
	// Outside production an empty configured secret accepts the literal
	// dev fallback signature.
	VerifySignature(payload []byte, signature string) error

	// ProcessStripeEvent runs the event through the idempotency ledger.
	// Returns OutcomeProcessed or OutcomeDuplicate.
	ProcessStripeEvent(ctx context.Context, eventID string, payload []byte) (string, error)
}
