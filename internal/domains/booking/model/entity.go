package model

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
)

// =====================================================
// ENTITY: Booking
// =====================================================

// Booking is the root aggregate. provider_id stays null until ACCEPTED and
// is immutable afterwards except for provider re-dispatch, which nulls it.
// Price and name snapshots are captured at creation and never mutated.
type Booking struct {
	ID                    uuid.UUID  `json:"id"`
	Status                string     `json:"status"`
	CustomerID            string     `json:"customer_id"`
	ProviderID            *string    `json:"provider_id,omitempty"`
	ServiceID             uuid.UUID  `json:"service_id"`
	SlotID                string     `json:"slot_id"`
	CandidateList         []string   `json:"candidate_list"`
	OTP                   string     `json:"-"`
	ExpiresAt             time.Time  `json:"expires_at"`
	CompletePendingUntil  *time.Time `json:"complete_pending_until,omitempty"`
	ServiceNameSnapshot   *string    `json:"service_name_snapshot,omitempty"`
	PriceSnapshotCents    *int64     `json:"price_snapshot_cents,omitempty"`
	StripePaymentIntentID *string    `json:"stripe_payment_intent_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// IsCandidate reports whether uid is in the dispatch candidate list.
func (b *Booking) IsCandidate(uid string) bool {
	for _, c := range b.CandidateList {
		if c == uid {
			return true
		}
	}
	return false
}

// IsAssignedTo reports whether uid is the assigned provider.
func (b *Booking) IsAssignedTo(uid string) bool {
	return b.ProviderID != nil && *b.ProviderID == uid
}

// OTPMatches compares the supplied passcode in constant time.
func (b *Booking) OTPMatches(otp string) bool {
	return subtle.ConstantTimeCompare([]byte(b.OTP), []byte(otp)) == 1
}

// GraceExpired reports whether the issue-flag window has passed.
func (b *Booking) GraceExpired(now time.Time) bool {
	return b.CompletePendingUntil != nil && now.After(*b.CompletePendingUntil)
}

// IsTerminal reports whether the booking reached a terminal status.
func (b *Booking) IsTerminal() bool {
	return IsTerminal(b.Status)
}

// =====================================================
// ENTITY: BookingEvent
// =====================================================

// BookingEvent is the append-only audit record, one row per accepted
// transition or significant action, written in the same transaction.
type BookingEvent struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	EventType  string    `json:"event_type"`
	ActorUID   *string   `json:"actor_uid,omitempty"`
	ActorRole  *string   `json:"actor_role,omitempty"`
	FromStatus *string   `json:"from_status,omitempty"`
	ToStatus   *string   `json:"to_status,omitempty"`
	Detail     *string   `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
