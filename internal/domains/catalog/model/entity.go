package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ENTITY: Service
// =====================================================

// Service is a catalogue row. Bookings snapshot name and price at creation,
// so later catalogue edits never affect existing bookings.
type Service struct {
	ID         uuid.UUID `json:"id"`
	Category   string    `json:"category"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// ServiceResponse adds the display amount in major units.
type ServiceResponse struct {
	ID         uuid.UUID       `json:"id"`
	Category   string          `json:"category"`
	Name       string          `json:"name"`
	PriceCents int64           `json:"price_cents"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}

func NewServiceResponse(s Service) ServiceResponse {
	return ServiceResponse{
		ID:         s.ID,
		Category:   s.Category,
		Name:       s.Name,
		PriceCents: s.PriceCents,
		Price:      decimal.NewFromInt(s.PriceCents).Div(decimal.NewFromInt(100)),
		Currency:   "ZAR",
	}
}
