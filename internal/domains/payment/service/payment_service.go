package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/gateway"
	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
	repo "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/repository"
	"github.com/AfroSamurai-hub/OzzServe/pkg/ident"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// =====================================================
// PAYMENT SERVICE IMPLEMENTATION
// =====================================================

type paymentService struct {
	intentRepo repo.IntentRepository
	stripe     gateway.StripeGateway
	clock      ident.Clock
}

func NewPaymentService(
	intentRepo repo.IntentRepository,
	stripe gateway.StripeGateway,
	clock ident.Clock,
) PaymentService {
	return &paymentService{
		intentRepo: intentRepo,
		stripe:     stripe,
		clock:      clock,
	}
}

// =====================================================
// CREATE INTENT
// =====================================================

// CreateIntent requests an authorization with manual capture and records
// the CREATED row. The AUTHORIZED status is only set later by the
// provider's webhook, never optimistically here.
func (s *paymentService) CreateIntent(
	ctx context.Context,
	tx pgx.Tx,
	bookingID uuid.UUID,
	priceSnapshotCents *int64,
) (*model.PaymentIntent, error) {
	amount := model.FallbackAmountCents
	if priceSnapshotCents != nil {
		amount = *priceSnapshotCents
	}

	ref, err := s.stripe.AuthorizeIntent(ctx, gateway.AuthorizeRequest{
		AmountCents: amount,
		Currency:    model.DefaultCurrency,
		BookingID:   bookingID.String(),
	})
	if err != nil {
		return nil, model.NewGatewayError("authorize", err)
	}

	now := s.clock.Now()
	intent := &model.PaymentIntent{
		ID:          ident.NewID(),
		BookingID:   bookingID,
		Provider:    model.ProviderStripe,
		ProviderRef: ref,
		AmountCents: amount,
		Currency:    model.DefaultCurrency,
		Status:      model.IntentStatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.intentRepo.InsertTx(ctx, tx, intent); err != nil {
		return nil, err
	}

	logger.Info("payment intent created", map[string]interface{}{
		"booking_id":   bookingID.String(),
		"provider_ref": ref,
		"amount_cents": amount,
	})
	return intent, nil
}

// =====================================================
// CAPTURE
// =====================================================

func (s *paymentService) Capture(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*model.PaymentIntent, error) {
	intent, err := s.intentRepo.GetAuthorizedForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, model.ErrNoAuthorizedIntent) {
			return nil, model.NewNoAuthorizedIntentError(bookingID.String())
		}
		return nil, err
	}

	// Mock references never leave the process.
	if !intent.IsMock() {
		if err := s.stripe.CaptureIntent(ctx, intent.ProviderRef); err != nil {
			return nil, model.NewGatewayError("capture", err)
		}
	}

	if err := s.intentRepo.UpdateStatusTx(ctx, tx, intent.ID, model.IntentStatusAuthorized, model.IntentStatusSucceeded); err != nil {
		return nil, err
	}
	intent.Status = model.IntentStatusSucceeded

	logger.Info("payment captured", map[string]interface{}{
		"booking_id":   bookingID.String(),
		"provider_ref": intent.ProviderRef,
		"amount_cents": intent.AmountCents,
	})
	return intent, nil
}

// =====================================================
// RELEASE
// =====================================================

func (s *paymentService) Release(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error {
	intent, err := s.intentRepo.GetAuthorizedForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, model.ErrNoAuthorizedIntent) {
			// Nothing held, nothing to void.
			return nil
		}
		return err
	}

	if !intent.IsMock() {
		if err := s.stripe.CancelIntent(ctx, intent.ProviderRef); err != nil {
			return model.NewGatewayError("cancel", err)
		}
	}

	return s.intentRepo.UpdateStatusTx(ctx, tx, intent.ID, model.IntentStatusAuthorized, model.IntentStatusCancelled)
}

// =====================================================
// FEE
// =====================================================

// Fee is charged off-session against the customer's stored method by the
// external provider; the ledger records it directly as SUCCEEDED.
func (s *paymentService) Fee(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, amountCents int64) (*model.PaymentIntent, error) {
	now := s.clock.Now()
	intent := &model.PaymentIntent{
		ID:          ident.NewID(),
		BookingID:   bookingID,
		Provider:    model.ProviderStripe,
		ProviderRef: ident.FeeIntentRef(),
		AmountCents: amountCents,
		Currency:    model.DefaultCurrency,
		Status:      model.IntentStatusSucceeded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.intentRepo.InsertTx(ctx, tx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func (s *paymentService) ListIntents(ctx context.Context, bookingID uuid.UUID) ([]model.PaymentIntent, error) {
	return s.intentRepo.ListByBooking(ctx, bookingID)
}
