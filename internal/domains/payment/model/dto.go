package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// PAY RESPONSE
// =====================================================

// PayResponse is returned from POST /bookings/:id/pay. Amount is in major
// currency units for display; the ledger stores cents.
type PayResponse struct {
	PaymentIntentID uuid.UUID       `json:"payment_intent_id"`
	ProviderRef     string          `json:"provider_ref"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	AmountCents     int64           `json:"amount_cents"`
	Currency        string          `json:"currency"`
}

// NewPayResponse converts a freshly created intent to its wire form.
func NewPayResponse(intent *PaymentIntent) PayResponse {
	return PayResponse{
		PaymentIntentID: intent.ID,
		ProviderRef:     intent.ProviderRef,
		Status:          intent.Status,
		Amount:          decimal.NewFromInt(intent.AmountCents).Div(decimal.NewFromInt(100)),
		AmountCents:     intent.AmountCents,
		Currency:        intent.Currency,
	}
}

// =====================================================
// STRIPE WEBHOOK ENVELOPE
// =====================================================

// StripeEvent is the subset of the Stripe event envelope the core reads.
type StripeEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data StripeEventData `json:"data"`
}

type StripeEventData struct {
	Object json.RawMessage `json:"object"`
}

// StripeIntentObject is the payment-intent object inside an event.
type StripeIntentObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// WebhookResponse reports the ledger outcome to the delivery caller.
type WebhookResponse struct {
	Status string `json:"status"` // PROCESSED or DUPLICATE
}
