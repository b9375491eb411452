package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/model"
)

// =====================================================
// SERVICE REPOSITORY
// =====================================================

type serviceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

func (r *serviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, category, name, price_cents, is_active, created_at
		FROM services
		WHERE id = $1 AND is_active = TRUE
	`

	var svc model.Service
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.Category,
		&svc.Name,
		&svc.PriceCents,
		&svc.IsActive,
		&svc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &svc, nil
}

func (r *serviceRepository) ListActive(ctx context.Context) ([]model.Service, error) {
	query := `
		SELECT id, category, name, price_cents, is_active, created_at
		FROM services
		WHERE is_active = TRUE
		ORDER BY category, name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(&svc.ID, &svc.Category, &svc.Name, &svc.PriceCents, &svc.IsActive, &svc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}
