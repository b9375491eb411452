package model

// =====================================================
// PAYMENT PROVIDERS
// =====================================================
const (
	ProviderStripe = "STRIPE"
)

// =====================================================
// INTENT STATUS
// =====================================================
const (
	IntentStatusCreated    = "CREATED"
	IntentStatusAuthorized = "AUTHORIZED"
	IntentStatusSucceeded  = "SUCCEEDED" // captured
	IntentStatusCancelled  = "CANCELLED" // voided
	IntentStatusFailed     = "FAILED"
)

// =====================================================
// WEBHOOK EVENT STATUS
// =====================================================
const (
	WebhookStatusPending   = "PENDING"
	WebhookStatusProcessed = "PROCESSED"
	WebhookStatusFailed    = "FAILED"
)

// ProcessOutcome is what the idempotency ledger reports to the caller.
const (
	OutcomeProcessed = "PROCESSED"
	OutcomeDuplicate = "DUPLICATE"
)

// =====================================================
// STRIPE EVENT TYPES
// =====================================================
const (
	EventPaymentSucceeded        = "payment_intent.succeeded"
	EventPaymentCapturableUpdate = "payment_intent.amount_capturable_updated"
	EventPaymentFailed           = "payment_intent.payment_failed"
)

// =====================================================
// PAYMENT CONFIGURATION
// =====================================================
const (
	// FallbackAmountCents is charged when the booking carries no price
	// snapshot (service row was missing at creation).
	FallbackAmountCents int64 = 10000

	// DefaultCurrency for all intents.
	DefaultCurrency = "ZAR"

	// DevFallbackSignature is accepted for webhook deliveries when no
	// webhook secret is configured outside production.
	DevFallbackSignature = "dev_signature"
)
