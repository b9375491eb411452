package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/model"
	"github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/repository"
	"github.com/AfroSamurai-hub/OzzServe/pkg/ident"
)

type fakeServiceRepo struct {
	services []model.Service
	listed   int
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Service, error) {
	for _, s := range r.services {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrServiceNotFound
}

func (r *fakeServiceRepo) ListActive(_ context.Context) ([]model.Service, error) {
	r.listed++
	return r.services, nil
}

type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
	}
	return nil
}

func (c *fakeCache) Ping(_ context.Context) error { return nil }

func TestListServicesCaches(t *testing.T) {
	repo := &fakeServiceRepo{services: []model.Service{
		{ID: ident.NewID(), Category: "plumbing", Name: "Geyser repair", PriceCents: 45000, IsActive: true},
	}}
	cache := &fakeCache{store: map[string][]byte{}}
	svc := NewCatalogService(repo, cache)

	first, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "450", first[0].Price.String())

	// Second read is served from the cache.
	second, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, first[0].Price.Equal(second[0].Price))
	assert.Equal(t, 1, repo.listed)
}

func TestListServicesWithoutCache(t *testing.T) {
	repo := &fakeServiceRepo{services: []model.Service{
		{ID: ident.NewID(), Category: "plumbing", Name: "Geyser repair", PriceCents: 45000, IsActive: true},
	}}
	svc := NewCatalogService(repo, nil)

	_, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	_, err = svc.ListServices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listed)
}

func TestGetServiceNotFound(t *testing.T) {
	svc := NewCatalogService(&fakeServiceRepo{}, nil)

	_, err := svc.GetService(context.Background(), ident.NewID())
	assert.ErrorIs(t, err, repository.ErrServiceNotFound)
}
