package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// ENTITY: Provider
// =====================================================

// Provider is a service-provider profile. UserUID is the auth identity;
// booking candidate lists and provider_id store this uid, not the row id.
type Provider struct {
	ID          uuid.UUID   `json:"id"`
	UserUID     string      `json:"user_uid"`
	DisplayName string      `json:"display_name"`
	IsOnline    bool        `json:"is_online"`
	ServiceIDs  []uuid.UUID `json:"service_ids,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Location is the provider's last reported position.
type Location struct {
	ProviderID uuid.UUID `json:"provider_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	UpdatedAt  time.Time `json:"updated_at"`
}
