package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/model"
	paymentmodel "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
)

// BookingService is the transactional core of the marketplace. Every
// mutation runs in one database transaction with the booking row locked,
// writes its audit event on the same transaction, and enforces the
// transition table plus the semantic gates on top of it.
type BookingService interface {
	// Create inserts a PENDING_PAYMENT booking with service snapshot,
	// dispatch candidates and a fresh OTP.
	Create(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error)

	// Pay opens the payment authorization for an unpaid booking.
	Pay(ctx context.Context, bookingID uuid.UUID, actorUID, actorRole string) (*paymentmodel.PayResponse, error)

	// Accept atomically claims a PAID_SEARCHING booking for a candidate
	// provider. Exactly one concurrent caller wins.
	Accept(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error)

	// Travel, Arrived and Start are the assigned provider's progress
	// transitions; Start additionally verifies the customer's OTP.
	Travel(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error)
	Arrived(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error)
	Start(ctx context.Context, bookingID uuid.UUID, providerUID, otp string) (*model.Booking, error)

	// Complete captures the payment and opens the grace window. A capture
	// failure keeps the booking IN_PROGRESS and surfaces CAPTURE_FAILED;
	// the failure event and notification still commit.
	Complete(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error)

	// ProviderComplete opens the grace window without capturing; the
	// capture happens at confirm time or when the window lapses.
	ProviderComplete(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error)

	// ConfirmComplete is the customer's early confirmation: capture
	// anything still authorized and close. Idempotent once CLOSED.
	ConfirmComplete(ctx context.Context, bookingID uuid.UUID, actorUID, actorRole string) (*model.Booking, error)

	// Cancel ends the booking for a user or admin. A user cancelling
	// after the provider is en route or on site is charged the fixed fee;
	// any remaining authorization is released.
	Cancel(ctx context.Context, bookingID uuid.UUID, actorUID, actorRole string) (*model.Booking, error)

	// ProviderCancel re-dispatches: the assigned provider backs out and
	// the booking returns to PAID_SEARCHING with its candidates intact.
	ProviderCancel(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error)

	// Issue flags a COMPLETE_PENDING booking for admin review within the
	// grace window.
	Issue(ctx context.Context, bookingID uuid.UUID, userUID, reason string) (*model.Booking, error)

	// ResolveReview settles a NEEDS_REVIEW booking: CLOSED captures any
	// remaining authorization, CANCELLED releases it.
	ResolveReview(ctx context.Context, bookingID uuid.UUID, adminUID string, req model.ResolveReviewRequest) (*model.Booking, error)

	// Get returns the booking as visible to the viewer. The OTP is
	// stripped for providers and candidates.
	Get(ctx context.Context, bookingID uuid.UUID, viewerUID, viewerRole string) (*model.BookingResponse, error)

	// ListMine returns the customer's bookings; ListClaimed the bookings
	// assigned to a provider.
	ListMine(ctx context.Context, customerID string, q model.ListQuery) ([]model.BookingResponse, error)
	ListClaimed(ctx context.Context, providerUID string, q model.ListQuery) ([]model.BookingResponse, error)

	// SweepExpired expires stale unpaid bookings in one statement.
	SweepExpired(ctx context.Context) (int64, error)

	// CloseGraced closes COMPLETE_PENDING bookings whose grace window has
	// lapsed, capturing any remaining authorization.
	CloseGraced(ctx context.Context) (int64, error)

	// MarkPaidSearchingTx releases a paid booking into dispatch. Called by
	// the webhook pipeline inside its own transaction.
	MarkPaidSearchingTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error
}
