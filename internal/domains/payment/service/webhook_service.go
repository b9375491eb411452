package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
	repo "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/repository"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// =====================================================
// WEBHOOK SERVICE IMPLEMENTATION
// =====================================================

type webhookService struct {
	txManager   repo.TransactionManager
	webhookRepo repo.WebhookRepository
	intentRepo  repo.IntentRepository
	authorizer  BookingAuthorizer

	secret     string
	production bool
}

func NewWebhookService(
	txManager repo.TransactionManager,
	webhookRepo repo.WebhookRepository,
	intentRepo repo.IntentRepository,
	secret string,
	production bool,
) *webhookService {
	return &webhookService{
		txManager:   txManager,
		webhookRepo: webhookRepo,
		intentRepo:  intentRepo,
		secret:      secret,
		production:  production,
	}
}

// SetBookingAuthorizer wires the booking engine in after construction.
// The container calls this once at startup.
func (s *webhookService) SetBookingAuthorizer(a BookingAuthorizer) {
	s.authorizer = a
}

// =====================================================
// SIGNATURE VERIFICATION
// =====================================================

func (s *webhookService) VerifySignature(payload []byte, signature string) error {
	if s.secret == "" {
		if !s.production && signature == model.DevFallbackSignature {
			return nil
		}
		return model.NewPaymentError(model.CodeInvalidSignature, "webhook secret not configured", model.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return model.NewPaymentError(model.CodeInvalidSignature, "signature mismatch", model.ErrInvalidSignature)
	}
	return nil
}

// =====================================================
// EVENT PROCESSING
// =====================================================

// ProcessStripeEvent runs the idempotency ledger algorithm:
//
//  1. lock the (provider, event_id) ledger row
//  2. PROCESSED row means a duplicate delivery; acknowledge without re-running
//  3. otherwise upsert PENDING, apply the event, flip to PROCESSED
//
// All of it happens in one transaction. A handler error rolls the whole
// transaction back (including the PENDING upsert) and the FAILED status is
// recorded on a separate connection so the provider's retry gets a clean run.
func (s *webhookService) ProcessStripeEvent(ctx context.Context, eventID string, payload []byte) (string, error) {
	if eventID == "" {
		return "", model.NewPaymentError(model.CodeMissingEventID, "event id required", model.ErrMissingEventID)
	}

	outcome := model.OutcomeProcessed

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := s.webhookRepo.GetForUpdateTx(ctx, tx, model.ProviderStripe, eventID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == model.WebhookStatusProcessed {
			outcome = model.OutcomeDuplicate
			return nil
		}

		// FAILED and PENDING rows fall through: the event gets another run.
		if err := s.webhookRepo.UpsertPendingTx(ctx, tx, model.ProviderStripe, eventID, payload); err != nil {
			return err
		}

		if err := s.applyEvent(ctx, tx, payload); err != nil {
			return err
		}

		return s.webhookRepo.SetStatusTx(ctx, tx, model.ProviderStripe, eventID, model.WebhookStatusProcessed)
	})
	if err != nil {
		if markErr := s.webhookRepo.MarkFailed(ctx, model.ProviderStripe, eventID, payload); markErr != nil {
			logger.Error("failed to record webhook failure", markErr)
		}
		return "", err
	}

	if outcome == model.OutcomeDuplicate {
		logger.Info("duplicate webhook delivery acknowledged", map[string]interface{}{
			"provider": model.ProviderStripe,
			"event_id": eventID,
		})
	}
	return outcome, nil
}

func (s *webhookService) applyEvent(ctx context.Context, tx pgx.Tx, payload []byte) error {
	var event model.StripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode stripe event: %w", err)
	}

	switch event.Type {
	case model.EventPaymentCapturableUpdate, model.EventPaymentSucceeded:
		return s.applyAuthorization(ctx, tx, event)
	case model.EventPaymentFailed:
		return s.applyFailure(ctx, tx, event)
	default:
		// Unhandled event types are acknowledged so the provider stops
		// retrying them.
		logger.Info("ignoring unhandled stripe event type", map[string]interface{}{
			"event_id": event.ID,
			"type":     event.Type,
		})
		return nil
	}
}

// applyAuthorization moves the referenced intent CREATED -> AUTHORIZED and
// releases the booking into dispatch. Intents past CREATED are left alone,
// which makes out-of-order and repeated deliveries harmless.
func (s *webhookService) applyAuthorization(ctx context.Context, tx pgx.Tx, event model.StripeEvent) error {
	obj, err := decodeIntentObject(event)
	if err != nil {
		return err
	}

	intent, err := s.intentRepo.GetByRefForUpdateTx(ctx, tx, model.ProviderStripe, obj.ID)
	if err != nil {
		if errors.Is(err, model.ErrIntentNotFound) {
			// Events for intents we never issued (fee charges, other
			// accounts) are acknowledged and dropped.
			logger.Warn("stripe event references unknown intent", map[string]interface{}{
				"event_id":     event.ID,
				"provider_ref": obj.ID,
			})
			return nil
		}
		return err
	}

	if intent.Status != model.IntentStatusCreated {
		return nil
	}

	if err := s.intentRepo.UpdateStatusTx(ctx, tx, intent.ID, model.IntentStatusCreated, model.IntentStatusAuthorized); err != nil {
		return err
	}

	if err := s.authorizer.MarkPaidSearchingTx(ctx, tx, intent.BookingID); err != nil {
		return err
	}

	logger.Info("payment authorized, booking released to dispatch", map[string]interface{}{
		"booking_id":   intent.BookingID.String(),
		"provider_ref": intent.ProviderRef,
	})
	return nil
}

func (s *webhookService) applyFailure(ctx context.Context, tx pgx.Tx, event model.StripeEvent) error {
	obj, err := decodeIntentObject(event)
	if err != nil {
		return err
	}

	intent, err := s.intentRepo.GetByRefForUpdateTx(ctx, tx, model.ProviderStripe, obj.ID)
	if err != nil {
		if errors.Is(err, model.ErrIntentNotFound) {
			return nil
		}
		return err
	}

	if intent.Status != model.IntentStatusCreated {
		return nil
	}

	return s.intentRepo.UpdateStatusTx(ctx, tx, intent.ID, model.IntentStatusCreated, model.IntentStatusFailed)
}

func decodeIntentObject(event model.StripeEvent) (*model.StripeIntentObject, error) {
	var obj model.StripeIntentObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return nil, fmt.Errorf("decode intent object: %w", err)
	}
	if obj.ID == "" {
		return nil, fmt.Errorf("stripe event %s carries no intent id", event.ID)
	}
	return &obj, nil
}
