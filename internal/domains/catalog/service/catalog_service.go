package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/model"
	"github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/repository"
	"github.com/AfroSamurai-hub/OzzServe/pkg/cache"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

const (
	serviceListCacheKey = "catalog:services:active"
	serviceListCacheTTL = 5 * time.Minute
)

// CatalogService serves the static services catalogue. The list read is
// cached; single-row lookups for booking snapshots go straight to the
// database.
type CatalogService interface {
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
	ListServices(ctx context.Context) ([]model.ServiceResponse, error)
}

type catalogService struct {
	repo  repository.ServiceRepository
	cache cache.Cache
}

func NewCatalogService(repo repository.ServiceRepository, c cache.Cache) CatalogService {
	return &catalogService{repo: repo, cache: c}
}

func (s *catalogService) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *catalogService) ListServices(ctx context.Context) ([]model.ServiceResponse, error) {
	if s.cache != nil {
		var cached []model.ServiceResponse
		if hit, err := s.cache.Get(ctx, serviceListCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	services, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.ServiceResponse, 0, len(services))
	for _, svc := range services {
		out = append(out, model.NewServiceResponse(svc))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, serviceListCacheKey, out, serviceListCacheTTL); err != nil {
			logger.Warn("catalog cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return out, nil
}
