package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =====================================================
// PAYMENT INTENT ENTITY
// =====================================================

// PaymentIntent is one row of the per-booking intent history. A booking
// may own several rows (main authorization plus a separate fee charge),
// but at most one AUTHORIZED row at any time.
type PaymentIntent struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"provider_ref"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsMock reports whether the reference was issued by the mock flow and
// must never be sent to the real payment API.
func (p *PaymentIntent) IsMock() bool {
	return strings.HasPrefix(p.ProviderRef, "pi_mock_")
}

// IsFee reports whether this row is a cancellation-fee charge.
func (p *PaymentIntent) IsFee() bool {
	return strings.HasPrefix(p.ProviderRef, "pi_fee_")
}

// =====================================================
// WEBHOOK EVENT ENTITY
// =====================================================

// WebhookEvent is a row of the idempotency ledger, unique on
// (provider, event_id). Only PROCESSED suppresses re-execution; FAILED
// rows are retriable.
type WebhookEvent struct {
	Provider  string    `json:"provider"`
	EventID   string    `json:"event_id"`
	Status    string    `json:"status"`
	Payload   []byte    `json:"payload,omitempty"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
}
