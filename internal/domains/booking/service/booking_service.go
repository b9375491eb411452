package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/model"
	"github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/repository"
	catalogrepo "github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/repository"
	catalogservice "github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/service"
	notification "github.com/AfroSamurai-hub/OzzServe/internal/domains/notification/model"
	outboxrepo "github.com/AfroSamurai-hub/OzzServe/internal/domains/notification/repository"
	paymentmodel "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
	paymentservice "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/service"
	providerservice "github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/service"
	"github.com/AfroSamurai-hub/OzzServe/pkg/ident"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// adminRecipient is the outbox recipient for review-queue notifications.
const adminRecipient = "admin"

// graceCloseBatch caps how many lapsed bookings one CloseGraced run
// handles.
const graceCloseBatch = 100

// =====================================================
// BOOKING SERVICE IMPLEMENTATION
// =====================================================

type bookingService struct {
	txManager repository.TransactionManager
	bookings  repository.BookingRepository
	outbox    outboxrepo.OutboxRepository
	payments  paymentservice.PaymentService
	catalog   catalogservice.CatalogService
	providers providerservice.ProviderService
	clock     ident.Clock
}

func NewBookingService(
	txManager repository.TransactionManager,
	bookings repository.BookingRepository,
	outbox outboxrepo.OutboxRepository,
	payments paymentservice.PaymentService,
	catalog catalogservice.CatalogService,
	providers providerservice.ProviderService,
	clock ident.Clock,
) BookingService {
	return &bookingService{
		txManager: txManager,
		bookings:  bookings,
		outbox:    outbox,
		payments:  payments,
		catalog:   catalog,
		providers: providers,
		clock:     clock,
	}
}

// =====================================================
// CREATE
// =====================================================

func (s *bookingService) Create(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error) {
	now := s.clock.Now()

	// 1. Snapshot the service. A missing catalogue row does not block the
	// booking; the payment falls back to the default amount.
	var nameSnapshot *string
	var priceSnapshot *int64
	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	switch {
	case err == nil:
		nameSnapshot = &svc.Name
		priceSnapshot = &svc.PriceCents
	case errors.Is(err, catalogrepo.ErrServiceNotFound):
		logger.Warn("booking created against unknown service", map[string]interface{}{
			"service_id": req.ServiceID.String(),
		})
	default:
		return nil, err
	}

	// 2. Dispatch candidates: first online providers offering the service.
	candidates, err := s.providers.Candidates(ctx, req.ServiceID, model.MaxCandidates)
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []string{}
	}

	otp, err := ident.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	booking := &model.Booking{
		ID:                  ident.NewID(),
		Status:              model.StatusPendingPayment,
		CustomerID:          req.UserID,
		ServiceID:           req.ServiceID,
		SlotID:              req.SlotID,
		CandidateList:       candidates,
		OTP:                 otp,
		ExpiresAt:           now.Add(model.PaymentWindow),
		ServiceNameSnapshot: nameSnapshot,
		PriceSnapshotCents:  priceSnapshot,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.bookings.InsertTx(ctx, tx, booking); err != nil {
			return err
		}
		return s.appendEvent(ctx, tx, booking.ID, model.EventCreateBooking,
			&req.UserID, roleStr(model.RoleUser), nil, &booking.Status, nil)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("booking created", map[string]interface{}{
		"booking_id": booking.ID.String(),
		"customer":   booking.CustomerID,
		"candidates": len(candidates),
	})
	return booking, nil
}

// =====================================================
// PAY
// =====================================================

func (s *bookingService) Pay(ctx context.Context, bookingID uuid.UUID, actorUID, actorRole string) (*paymentmodel.PayResponse, error) {
	var resp paymentmodel.PayResponse

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if actorRole == string(model.RoleUser) && b.CustomerID != actorUID {
			return model.NewForbiddenError("booking belongs to another customer")
		}
		if b.Status != model.StatusPendingPayment {
			return model.NewInvalidTransitionError(b.Status, model.StatusPaidSearching, model.Role(actorRole))
		}

		intent, err := s.payments.CreateIntent(ctx, tx, bookingID, b.PriceSnapshotCents)
		if err != nil {
			return err
		}
		if err := s.bookings.SetPaymentRefTx(ctx, tx, bookingID, intent.ProviderRef); err != nil {
			return err
		}

		resp = paymentmodel.NewPayResponse(intent)
		return s.appendEvent(ctx, tx, bookingID, model.EventPaymentCreated,
			&actorUID, &actorRole, &b.Status, nil, &intent.ProviderRef)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// =====================================================
// ACCEPT
// =====================================================

// Accept is the dispatch race. The row lock serializes concurrent
// attempts; the guarded UPDATE turns any remaining drift into an explicit
// error instead of a double assignment.
func (s *bookingService) Accept(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error) {
	var result *model.Booking

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		// 1. Status gate.
		if b.Status != model.StatusPaidSearching {
			return model.NewInvalidTransitionError(b.Status, model.StatusAccepted, model.RoleProvider)
		}

		// 2. Ownership gate: a booking already claimed by someone else is
		// never reassignable here.
		if b.ProviderID != nil && *b.ProviderID != providerUID {
			return model.NewOwnedByOtherProviderError()
		}

		// 3. Candidate gate.
		if !b.IsCandidate(providerUID) {
			return model.NewNotACandidateError(providerUID)
		}

		if !model.CanTransition(b.Status, model.StatusAccepted, model.RoleProvider) {
			return model.NewInvalidTransitionError(b.Status, model.StatusAccepted, model.RoleProvider)
		}

		// 4. Guarded write: zero rows means the row moved under us.
		if err := s.bookings.AssignProviderTx(ctx, tx, bookingID, providerUID, model.StatusPaidSearching, model.StatusAccepted); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(model.StatusPaidSearching, b.Status)
			}
			return err
		}

		if err := s.appendEvent(ctx, tx, bookingID, model.EventAccepted,
			&providerUID, roleStr(model.RoleProvider), &b.Status, strPtr(model.StatusAccepted), nil); err != nil {
			return err
		}

		if err := s.outbox.EnqueueTx(ctx, tx, bookingID, b.CustomerID, notification.KindBookingAccepted, map[string]interface{}{
			"provider_uid": providerUID,
		}); err != nil {
			return err
		}

		b.Status = model.StatusAccepted
		b.ProviderID = &providerUID
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =====================================================
// PROVIDER PROGRESS: TRAVEL / ARRIVED / START
// =====================================================

func (s *bookingService) Travel(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error) {
	return s.providerTransition(ctx, bookingID, providerUID, model.StatusEnRoute, model.EventTravel, nil)
}

func (s *bookingService) Arrived(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error) {
	return s.providerTransition(ctx, bookingID, providerUID, model.StatusArrived, model.EventArrived, nil)
}

func (s *bookingService) Start(ctx context.Context, bookingID uuid.UUID, providerUID, otp string) (*model.Booking, error) {
	return s.providerTransition(ctx, bookingID, providerUID, model.StatusInProgress, model.EventStarted,
		func(b *model.Booking) error {
			if !b.OTPMatches(otp) {
				return model.NewInvalidOTPError()
			}
			return nil
		})
}

// providerTransition runs one assigned-provider status move with the
// shared gates: row lock, ownership, transition table, optional extra
// check, guarded write, audit event.
func (s *bookingService) providerTransition(
	ctx context.Context,
	bookingID uuid.UUID,
	providerUID, to, eventType string,
	gate func(*model.Booking) error,
) (*model.Booking, error) {
	var result *model.Booking

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsAssignedTo(providerUID) {
			return model.NewOwnedByOtherProviderError()
		}
		if !model.CanTransition(b.Status, to, model.RoleProvider) {
			return model.NewInvalidTransitionError(b.Status, to, model.RoleProvider)
		}
		if gate != nil {
			if err := gate(b); err != nil {
				return err
			}
		}

		if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, b.Status, to); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(b.Status, to)
			}
			return err
		}

		if err := s.appendEvent(ctx, tx, bookingID, eventType,
			&providerUID, roleStr(model.RoleProvider), &b.Status, &to, nil); err != nil {
			return err
		}

		b.Status = to
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =====================================================
// COMPLETE (CAPTURE) / PROVIDER COMPLETE
// =====================================================

func (s *bookingService) Complete(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error) {
	var result *model.Booking
	var captureErr error

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsAssignedTo(providerUID) {
			return model.NewOwnedByOtherProviderError()
		}
		if !model.CanTransition(b.Status, model.StatusCompletePending, model.RoleProvider) {
			return model.NewInvalidTransitionError(b.Status, model.StatusCompletePending, model.RoleProvider)
		}

		if _, err := s.payments.Capture(ctx, tx, bookingID); err != nil {
			// The booking stays IN_PROGRESS; the failure event and the
			// customer notification commit so the retry is visible.
			captureErr = err
			if evErr := s.appendEvent(ctx, tx, bookingID, model.EventCaptureFailed,
				&providerUID, roleStr(model.RoleProvider), &b.Status, nil, strPtr(err.Error())); evErr != nil {
				return evErr
			}
			if obErr := s.outbox.EnqueueTx(ctx, tx, bookingID, b.CustomerID, notification.KindCaptureFailed, nil); obErr != nil {
				return obErr
			}
			result = b
			return nil
		}

		until := s.clock.Now().Add(model.GraceWindow)
		if err := s.bookings.SetCompletePendingTx(ctx, tx, bookingID, b.Status, until); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(b.Status, model.StatusCompletePending)
			}
			return err
		}

		if err := s.appendEvent(ctx, tx, bookingID, model.EventCompleted,
			&providerUID, roleStr(model.RoleProvider), &b.Status, strPtr(model.StatusCompletePending), nil); err != nil {
			return err
		}

		b.Status = model.StatusCompletePending
		b.CompletePendingUntil = &until
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if captureErr != nil {
		return nil, model.NewCaptureFailedError(captureErr)
	}
	return result, nil
}

func (s *bookingService) ProviderComplete(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error) {
	var result *model.Booking

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsAssignedTo(providerUID) {
			return model.NewOwnedByOtherProviderError()
		}
		if !model.CanTransition(b.Status, model.StatusCompletePending, model.RoleProvider) {
			return model.NewInvalidTransitionError(b.Status, model.StatusCompletePending, model.RoleProvider)
		}

		until := s.clock.Now().Add(model.GraceWindow)
		if err := s.bookings.SetCompletePendingTx(ctx, tx, bookingID, b.Status, until); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(b.Status, model.StatusCompletePending)
			}
			return err
		}

		if err := s.appendEvent(ctx, tx, bookingID, model.EventCompleted,
			&providerUID, roleStr(model.RoleProvider), &b.Status, strPtr(model.StatusCompletePending), nil); err != nil {
			return err
		}

		b.Status = model.StatusCompletePending
		b.CompletePendingUntil = &until
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =====================================================
// CONFIRM COMPLETE
// =====================================================

func (s *bookingService) ConfirmComplete(ctx context.Context, bookingID uuid.UUID, actorUID, actorRole string) (*model.Booking, error) {
	var result *model.Booking

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if actorRole == string(model.RoleUser) && b.CustomerID != actorUID {
			return model.NewForbiddenError("booking belongs to another customer")
		}

		// Repeat confirmations are acknowledged, not rejected.
		if b.Status == model.StatusClosed {
			result = b
			return nil
		}
		if b.Status != model.StatusCompletePending {
			return model.NewInvalidTransitionError(b.Status, model.StatusClosed, model.Role(actorRole))
		}

		if err := s.captureRemaining(ctx, tx, bookingID); err != nil {
			return err
		}

		if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, b.Status, model.StatusClosed); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(b.Status, model.StatusClosed)
			}
			return err
		}

		if err := s.appendEvent(ctx, tx, bookingID, model.EventConfirmComplete,
			&actorUID, &actorRole, &b.Status, strPtr(model.StatusClosed), nil); err != nil {
			return err
		}

		if b.ProviderID != nil {
			if err := s.outbox.EnqueueTx(ctx, tx, bookingID, *b.ProviderID, notification.KindBookingClosed, nil); err != nil {
				return err
			}
		}

		b.Status = model.StatusClosed
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// captureRemaining captures the booking's AUTHORIZED intent if one is
// still open. Bookings captured at complete time have none left; that is
// not an error.
func (s *bookingService) captureRemaining(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error {
	if _, err := s.payments.Capture(ctx, tx, bookingID); err != nil {
		if errors.Is(err, paymentmodel.ErrNoAuthorizedIntent) {
			return nil
		}
		return model.NewCaptureFailedError(err)
	}
	return nil
}

// =====================================================
// CANCEL / PROVIDER CANCEL
// =====================================================

func (s *bookingService) Cancel(ctx context.Context, bookingID uuid.UUID, actorUID, actorRole string) (*model.Booking, error) {
	var result *model.Booking
	role := model.Role(actorRole)

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if role == model.RoleUser && b.CustomerID != actorUID {
			return model.NewForbiddenError("booking belongs to another customer")
		}
		if role == model.RoleProvider && !b.IsAssignedTo(actorUID) {
			return model.NewOwnedByOtherProviderError()
		}
		if !model.CanTransition(b.Status, model.StatusCancelled, role) {
			return model.NewInvalidTransitionError(b.Status, model.StatusCancelled, role)
		}

		feeApplied := false
		if model.CancellationFeeApplies(b.Status, role) {
			if _, err := s.payments.Fee(ctx, tx, bookingID, model.CancellationFeeCents); err != nil {
				return err
			}
			feeApplied = true
		}

		// Void whatever is still held. Unpaid bookings have nothing.
		if err := s.payments.Release(ctx, tx, bookingID); err != nil {
			return err
		}

		if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, b.Status, model.StatusCancelled); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(b.Status, model.StatusCancelled)
			}
			return err
		}

		detail := ""
		if feeApplied {
			detail = fmt.Sprintf("cancellation fee %d cents", model.CancellationFeeCents)
		}
		var detailPtr *string
		if detail != "" {
			detailPtr = &detail
		}
		if err := s.appendEvent(ctx, tx, bookingID, model.EventCancelled,
			&actorUID, &actorRole, &b.Status, strPtr(model.StatusCancelled), detailPtr); err != nil {
			return err
		}

		if b.ProviderID != nil && *b.ProviderID != actorUID {
			if err := s.outbox.EnqueueTx(ctx, tx, bookingID, *b.ProviderID, notification.KindBookingClosed, map[string]interface{}{
				"reason": "cancelled",
			}); err != nil {
				return err
			}
		}

		b.Status = model.StatusCancelled
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *bookingService) ProviderCancel(ctx context.Context, bookingID uuid.UUID, providerUID string) (*model.Booking, error) {
	var result *model.Booking

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsAssignedTo(providerUID) {
			return model.NewOwnedByOtherProviderError()
		}
		if !model.CanTransition(b.Status, model.StatusPaidSearching, model.RoleProvider) {
			return model.NewInvalidTransitionError(b.Status, model.StatusPaidSearching, model.RoleProvider)
		}

		// Back to dispatch: provider slot cleared, candidates preserved so
		// the rest of the list can still claim it.
		if err := s.bookings.ClearProviderTx(ctx, tx, bookingID, b.Status, model.StatusPaidSearching); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(b.Status, model.StatusPaidSearching)
			}
			return err
		}

		if err := s.appendEvent(ctx, tx, bookingID, model.EventProviderCancel,
			&providerUID, roleStr(model.RoleProvider), &b.Status, strPtr(model.StatusPaidSearching), nil); err != nil {
			return err
		}

		if err := s.outbox.EnqueueTx(ctx, tx, bookingID, b.CustomerID, notification.KindProviderCancelled, nil); err != nil {
			return err
		}

		b.Status = model.StatusPaidSearching
		b.ProviderID = nil
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =====================================================
// ISSUE / REVIEW
// =====================================================

func (s *bookingService) Issue(ctx context.Context, bookingID uuid.UUID, userUID, reason string) (*model.Booking, error) {
	var result *model.Booking

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.CustomerID != userUID {
			return model.NewForbiddenError("booking belongs to another customer")
		}
		if b.Status != model.StatusCompletePending {
			return model.NewInvalidTransitionError(b.Status, model.StatusNeedsReview, model.RoleUser)
		}
		if b.GraceExpired(s.clock.Now()) {
			return model.NewGraceExpiredError()
		}

		if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, b.Status, model.StatusNeedsReview); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(b.Status, model.StatusNeedsReview)
			}
			return err
		}

		if err := s.appendEvent(ctx, tx, bookingID, model.EventIssueRaised,
			&userUID, roleStr(model.RoleUser), &b.Status, strPtr(model.StatusNeedsReview), &reason); err != nil {
			return err
		}

		if err := s.outbox.EnqueueTx(ctx, tx, bookingID, adminRecipient, notification.KindIssueRaised, map[string]interface{}{
			"reason": reason,
		}); err != nil {
			return err
		}

		b.Status = model.StatusNeedsReview
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *bookingService) ResolveReview(ctx context.Context, bookingID uuid.UUID, adminUID string, req model.ResolveReviewRequest) (*model.Booking, error) {
	var result *model.Booking

	err := s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !model.CanTransition(b.Status, req.Outcome, model.RoleAdmin) {
			return model.NewInvalidTransitionError(b.Status, req.Outcome, model.RoleAdmin)
		}

		switch req.Outcome {
		case model.StatusClosed:
			if err := s.captureRemaining(ctx, tx, bookingID); err != nil {
				return err
			}
		case model.StatusCancelled:
			if err := s.payments.Release(ctx, tx, bookingID); err != nil {
				return err
			}
		}

		if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, b.Status, req.Outcome); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(b.Status, req.Outcome)
			}
			return err
		}

		var notePtr *string
		if req.Note != "" {
			notePtr = &req.Note
		}
		if err := s.appendEvent(ctx, tx, bookingID, model.EventReviewResolved,
			&adminUID, roleStr(model.RoleAdmin), &b.Status, &req.Outcome, notePtr); err != nil {
			return err
		}

		if err := s.outbox.EnqueueTx(ctx, tx, bookingID, b.CustomerID, notification.KindBookingClosed, map[string]interface{}{
			"outcome": req.Outcome,
		}); err != nil {
			return err
		}

		b.Status = req.Outcome
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =====================================================
// READS
// =====================================================

func (s *bookingService) Get(ctx context.Context, bookingID uuid.UUID, viewerUID, viewerRole string) (*model.BookingResponse, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	visible := viewerRole == string(model.RoleAdmin) ||
		b.CustomerID == viewerUID ||
		b.IsAssignedTo(viewerUID) ||
		b.IsCandidate(viewerUID)
	if !visible {
		// Indistinguishable from a missing booking.
		return nil, model.ErrBookingNotFound
	}

	resp := model.BookingResponseFor(b, viewerUID, viewerRole)
	return &resp, nil
}

func (s *bookingService) ListMine(ctx context.Context, customerID string, q model.ListQuery) ([]model.BookingResponse, error) {
	bookings, err := s.bookings.ListByCustomer(ctx, customerID, q)
	if err != nil {
		return nil, err
	}
	return s.toResponses(bookings, customerID, string(model.RoleUser)), nil
}

func (s *bookingService) ListClaimed(ctx context.Context, providerUID string, q model.ListQuery) ([]model.BookingResponse, error) {
	bookings, err := s.bookings.ListByProvider(ctx, providerUID, q)
	if err != nil {
		return nil, err
	}
	return s.toResponses(bookings, providerUID, string(model.RoleProvider)), nil
}

func (s *bookingService) toResponses(bookings []model.Booking, viewerUID, viewerRole string) []model.BookingResponse {
	out := make([]model.BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, model.BookingResponseFor(&bookings[i], viewerUID, viewerRole))
	}
	return out
}

// =====================================================
// SWEEP / GRACE CLOSE
// =====================================================

func (s *bookingService) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-model.SweepAge)
	swept, err := s.bookings.SweepExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		logger.Info("expired stale unpaid bookings", map[string]interface{}{
			"count": swept,
		})
	}
	return swept, nil
}

func (s *bookingService) CloseGraced(ctx context.Context) (int64, error) {
	ids, err := s.bookings.FindGraceExpired(ctx, s.clock.Now(), graceCloseBatch)
	if err != nil {
		return 0, err
	}

	var closed int64
	for _, id := range ids {
		if err := s.closeGracedOne(ctx, id); err != nil {
			// Capture trouble on one booking must not stall the rest.
			logger.Error("grace close failed", err)
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *bookingService) closeGracedOne(ctx context.Context, bookingID uuid.UUID) error {
	return s.txManager.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		// Re-check under the lock; the customer may have confirmed or
		// flagged in the meantime.
		if b.Status != model.StatusCompletePending || !b.GraceExpired(s.clock.Now()) {
			return nil
		}

		if err := s.captureRemaining(ctx, tx, bookingID); err != nil {
			return err
		}

		if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, b.Status, model.StatusClosed); err != nil {
			if errors.Is(err, model.ErrStatusDrift) {
				return model.NewStatusDriftError(b.Status, model.StatusClosed)
			}
			return err
		}

		if err := s.appendEvent(ctx, tx, bookingID, model.EventClosed,
			nil, roleStr(model.RoleSystem), &b.Status, strPtr(model.StatusClosed), strPtr("grace window lapsed")); err != nil {
			return err
		}

		return s.outbox.EnqueueTx(ctx, tx, bookingID, b.CustomerID, notification.KindBookingClosed, nil)
	})
}

// =====================================================
// WEBHOOK-DRIVEN TRANSITION
// =====================================================

// MarkPaidSearchingTx implements the payment pipeline's BookingAuthorizer.
// It runs on the webhook transaction, so the intent flip and the booking
// release commit or roll back together.
func (s *bookingService) MarkPaidSearchingTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) error {
	b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}

	// A replayed or late authorization for a booking already released (or
	// cancelled) is ignored rather than failed.
	if b.Status != model.StatusPendingPayment {
		logger.Warn("authorization for booking not awaiting payment", map[string]interface{}{
			"booking_id": bookingID.String(),
			"status":     b.Status,
		})
		return nil
	}

	if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, model.StatusPendingPayment, model.StatusPaidSearching); err != nil {
		if errors.Is(err, model.ErrStatusDrift) {
			return model.NewStatusDriftError(model.StatusPendingPayment, b.Status)
		}
		return err
	}

	return s.appendEvent(ctx, tx, bookingID, model.EventAuthorized,
		nil, roleStr(model.RoleSystem), strPtr(model.StatusPendingPayment), strPtr(model.StatusPaidSearching), nil)
}

// =====================================================
// HELPERS
// =====================================================

func (s *bookingService) appendEvent(
	ctx context.Context,
	tx pgx.Tx,
	bookingID uuid.UUID,
	eventType string,
	actorUID, actorRole, fromStatus, toStatus, detail *string,
) error {
	return s.bookings.AppendEventTx(ctx, tx, &model.BookingEvent{
		ID:         ident.NewID(),
		BookingID:  bookingID,
		EventType:  eventType,
		ActorUID:   actorUID,
		ActorRole:  actorRole,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Detail:     detail,
		CreatedAt:  s.clock.Now(),
	})
}

func roleStr(r model.Role) *string {
	s := string(r)
	return &s
}

func strPtr(s string) *string {
	return &s
}
