package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// =====================================================
// REQUEST DTOs
// =====================================================

type RegisterProviderRequest struct {
	DisplayName string      `json:"display_name"`
	ServiceIDs  []uuid.UUID `json:"service_ids"`
}

func (r RegisterProviderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.ServiceIDs, validation.Required, validation.Length(1, 20)),
	)
}

type SetOnlineRequest struct {
	Online bool `json:"online"`
}

type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r UpdateLocationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}
