package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/model"
)

var ErrServiceNotFound = errors.New("service not found")

// ServiceRepository reads the static services catalogue.
type ServiceRepository interface {
	// GetByID returns the service row, ErrServiceNotFound when absent or
	// inactive.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error)

	// ListActive returns all active services ordered by category, name.
	ListActive(ctx context.Context) ([]model.Service, error)
}
