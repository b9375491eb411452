package model

import "time"

// =====================================================
// BOOKING STATUS CONSTANTS
// =====================================================
const (
	StatusPendingPayment  = "PENDING_PAYMENT"
	StatusPaidSearching   = "PAID_SEARCHING"
	StatusAccepted        = "ACCEPTED"
	StatusEnRoute         = "EN_ROUTE"
	StatusArrived         = "ARRIVED"
	StatusInProgress      = "IN_PROGRESS"
	StatusCompletePending = "COMPLETE_PENDING"
	StatusNeedsReview     = "NEEDS_REVIEW"
	StatusClosed          = "CLOSED"
	StatusCancelled       = "CANCELLED"
	StatusExpired         = "EXPIRED"
)

var ValidStatuses = []string{
	StatusPendingPayment,
	StatusPaidSearching,
	StatusAccepted,
	StatusEnRoute,
	StatusArrived,
	StatusInProgress,
	StatusCompletePending,
	StatusNeedsReview,
	StatusClosed,
	StatusCancelled,
	StatusExpired,
}

// =====================================================
// ACTOR ROLES
// =====================================================

// Role is the actor role a transition is evaluated under. System covers
// webhook-driven and scheduled transitions.
type Role string

const (
	RoleUser     Role = "user"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
	RoleSystem   Role = "system"
)

// =====================================================
// EVENT TYPES
// =====================================================
const (
	EventCreateBooking   = "create_booking"
	EventPaymentCreated  = "payment_created"
	EventAuthorized      = "payment_authorized"
	EventAccepted        = "accept"
	EventTravel          = "travel"
	EventArrived         = "arrived"
	EventStarted         = "start"
	EventCompleted       = "complete"
	EventCaptureFailed   = "capture_failed"
	EventConfirmComplete = "confirm_complete"
	EventCancelled       = "cancel"
	EventProviderCancel  = "provider_cancel"
	EventIssueRaised     = "issue_raised"
	EventReviewResolved  = "review_resolved"
	EventExpired         = "expired"
	EventClosed          = "closed"
)

// =====================================================
// BUSINESS CONSTANTS
// =====================================================
const (
	// PaymentWindow is how long a booking may sit unpaid before it is
	// eligible for expiry at creation time (expires_at).
	PaymentWindow = 15 * time.Minute

	// SweepAge is the age at which the sweeper expires unpaid bookings.
	SweepAge = 24 * time.Hour

	// GraceWindow is the customer's issue-flag window after the provider
	// marks the job complete.
	GraceWindow = 30 * time.Minute

	// MaxCandidates caps the dispatch candidate list.
	MaxCandidates = 5

	// CancellationFeeCents is charged when a user cancels after the
	// provider is en route or on site.
	CancellationFeeCents int64 = 1000

	// MinIssueReasonLen guards the issue-flag free-text reason.
	MinIssueReasonLen = 5
)
