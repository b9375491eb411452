package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// NOTIFICATION KINDS
// =====================================================
const (
	KindBookingAccepted   = "BOOKING_ACCEPTED"
	KindProviderCancelled = "PROVIDER_CANCELLED"
	KindCaptureFailed     = "CAPTURE_FAILED"
	KindIssueRaised       = "ISSUE_RAISED"
	KindBookingClosed     = "BOOKING_CLOSED"
)

// OutboxRow is an append-only notification intent, written in the same
// transaction as the state change it announces. Delivery is an external
// concern; nothing in this repo reads the rows back except ops tooling.
type OutboxRow struct {
	ID           uuid.UUID `json:"id"`
	BookingID    uuid.UUID `json:"booking_id"`
	RecipientUID string    `json:"recipient_uid"`
	Kind         string    `json:"kind"`
	Payload      []byte    `json:"payload,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
