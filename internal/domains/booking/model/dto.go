package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/AfroSamurai-hub/OzzServe/internal/shared"
)

// =====================================================
// REQUEST DTOs
// =====================================================

type CreateBookingRequest struct {
	ServiceID uuid.UUID `json:"service_id"`
	SlotID    string    `json:"slot_id"`
	UserID    string    `json:"user_id"`
}

func (r CreateBookingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ServiceID, validation.By(requiredUUID)),
		validation.Field(&r.SlotID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
	)
}

type StartRequest struct {
	OTP string `json:"otp"`
}

func (r StartRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OTP, validation.Required, validation.Length(4, 4)),
	)
}

type IssueRequest struct {
	Reason string `json:"reason"`
}

func (r IssueRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Required, validation.Length(MinIssueReasonLen, 500)),
	)
}

type ResolveReviewRequest struct {
	Outcome string `json:"outcome"` // CLOSED or CANCELLED
	Note    string `json:"note"`
}

func (r ResolveReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Outcome, validation.Required, validation.In(StatusClosed, StatusCancelled)),
	)
}

// ListQuery carries the pagination and status filter for list endpoints.
type ListQuery struct {
	Status string
	Limit  int
	Offset int
}

func (q *ListQuery) Normalize() {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

func (q ListQuery) Validate() error {
	if q.Status == "" {
		return nil
	}
	return validation.Validate(q.Status, validation.In(statusesAsAny()...))
}

func statusesAsAny() []interface{} {
	out := make([]interface{}, len(ValidStatuses))
	for i, s := range ValidStatuses {
		out[i] = s
	}
	return out
}

func requiredUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

// =====================================================
// RESPONSE DTOs
// =====================================================

// BookingResponse is the wire representation of a booking. The OTP is the
// only customer-shared secret; it is present only for the owning customer
// and admins.
type BookingResponse struct {
	ID                   uuid.UUID  `json:"id"`
	Status               string     `json:"status"`
	CustomerID           string     `json:"customer_id"`
	ProviderID           *string    `json:"provider_id,omitempty"`
	ServiceID            uuid.UUID  `json:"service_id"`
	SlotID               string     `json:"slot_id"`
	CandidateList        []string   `json:"candidate_list,omitempty"`
	OTP                  string     `json:"otp,omitempty"`
	ExpiresAt            time.Time  `json:"expires_at"`
	CompletePendingUntil *time.Time `json:"complete_pending_until,omitempty"`
	ServiceName          *string    `json:"service_name,omitempty"`
	PriceCents           *int64     `json:"price_cents,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// BookingResponseFor builds the response visible to the given viewer.
// Providers and candidates never see the OTP.
func BookingResponseFor(b *Booking, viewerUID, viewerRole string) BookingResponse {
	resp := BookingResponse{
		ID:                   b.ID,
		Status:               b.Status,
		CustomerID:           b.CustomerID,
		ProviderID:           b.ProviderID,
		ServiceID:            b.ServiceID,
		SlotID:               b.SlotID,
		CandidateList:        b.CandidateList,
		ExpiresAt:            b.ExpiresAt,
		CompletePendingUntil: b.CompletePendingUntil,
		ServiceName:          b.ServiceNameSnapshot,
		PriceCents:           b.PriceSnapshotCents,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}

	if viewerRole == shared.RoleAdmin || (viewerRole == shared.RoleUser && b.CustomerID == viewerUID) {
		resp.OTP = b.OTP
	}
	return resp
}

type AcceptResponse struct {
	Status string `json:"status"`
}

type SweepResponse struct {
	Swept int64 `json:"swept"`
}
