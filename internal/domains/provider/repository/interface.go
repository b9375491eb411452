package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/model"
)

// ProviderRepository backs provider profiles and dispatch candidate
// selection.
type ProviderRepository interface {
	// Create inserts the profile and its offered services in one tx.
	// Returns model.ErrAlreadyRegistered when the uid already has one.
	Create(ctx context.Context, p *model.Provider) error

	// GetByUID returns the profile for an auth uid, with offered service
	// ids. Returns model.ErrProviderNotFound when absent.
	GetByUID(ctx context.Context, uid string) (*model.Provider, error)

	// CandidatesForService returns up to limit uids of online providers
	// offering the service, oldest profile first.
	CandidatesForService(ctx context.Context, serviceID uuid.UUID, limit int) ([]string, error)

	// SetOnline flips the availability toggle.
	SetOnline(ctx context.Context, uid string, online bool) error

	// UpsertLocation records the provider's last reported position.
	UpsertLocation(ctx context.Context, uid string, latitude, longitude float64) error
}
