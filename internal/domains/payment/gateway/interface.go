package gateway

import (
	"context"
)

// =====================================================
// GATEWAY INTERFACE
// =====================================================

// StripeGateway is the external payment provider surface the ledger
// composes with. AuthorizeIntent requests a hold with manual capture
// semantics: funds are reserved but not taken until CaptureIntent.
type StripeGateway interface {
	// AuthorizeIntent creates a payment intent and returns its provider
	// reference.
	AuthorizeIntent(ctx context.Context, req AuthorizeRequest) (string, error)

	// CaptureIntent converts an authorization into an actual charge.
	CaptureIntent(ctx context.Context, providerRef string) error

	// CancelIntent voids an authorization, releasing the hold.
	CancelIntent(ctx context.Context, providerRef string) error
}

// AuthorizeRequest carries everything the gateway needs for an
// authorization.
type AuthorizeRequest struct {
	AmountCents int64
	Currency    string
	BookingID   string // forwarded as metadata for reconciliation
}
