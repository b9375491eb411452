package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/model"
	"github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/repository"
	"github.com/AfroSamurai-hub/OzzServe/pkg/ident"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// ProviderService manages provider profiles and answers dispatch
// candidate queries for the booking engine.
type ProviderService interface {
	Register(ctx context.Context, uid string, req model.RegisterProviderRequest) (*model.Provider, error)
	Get(ctx context.Context, uid string) (*model.Provider, error)
	SetOnline(ctx context.Context, uid string, online bool) error
	UpdateLocation(ctx context.Context, uid string, latitude, longitude float64) error

	// Candidates returns dispatch candidates for a service, capped at limit.
	Candidates(ctx context.Context, serviceID uuid.UUID, limit int) ([]string, error)
}

type providerService struct {
	repo repository.ProviderRepository
}

func NewProviderService(repo repository.ProviderRepository) ProviderService {
	return &providerService{repo: repo}
}

func (s *providerService) Register(ctx context.Context, uid string, req model.RegisterProviderRequest) (*model.Provider, error) {
	p := &model.Provider{
		ID:          ident.NewID(),
		UserUID:     uid,
		DisplayName: req.DisplayName,
		ServiceIDs:  req.ServiceIDs,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info("provider registered", map[string]interface{}{
		"uid":      uid,
		"services": len(req.ServiceIDs),
	})
	return p, nil
}

func (s *providerService) Get(ctx context.Context, uid string) (*model.Provider, error) {
	return s.repo.GetByUID(ctx, uid)
}

func (s *providerService) SetOnline(ctx context.Context, uid string, online bool) error {
	return s.repo.SetOnline(ctx, uid, online)
}

func (s *providerService) UpdateLocation(ctx context.Context, uid string, latitude, longitude float64) error {
	return s.repo.UpsertLocation(ctx, uid, latitude, longitude)
}

func (s *providerService) Candidates(ctx context.Context, serviceID uuid.UUID, limit int) ([]string, error) {
	return s.repo.CandidatesForService(ctx, serviceID, limit)
}
