package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/model"
	"github.com/AfroSamurai-hub/OzzServe/internal/infrastructure/database"
)

// =====================================================
// PROVIDER REPOSITORY
// =====================================================

type providerRepository struct {
	db *database.PostgresDB
}

func NewProviderRepository(db *database.PostgresDB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) Create(ctx context.Context, p *model.Provider) error {
	err := r.db.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO providers (id, user_uid, display_name, is_online)
			VALUES ($1, $2, $3, FALSE)
		`, p.ID, p.UserUID, p.DisplayName)
		if err != nil {
			return err
		}

		for _, serviceID := range p.ServiceIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO provider_services (provider_id, service_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, p.ID, serviceID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrAlreadyRegistered
		}
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}

func (r *providerRepository) GetByUID(ctx context.Context, uid string) (*model.Provider, error) {
	query := `
		SELECT id, user_uid, display_name, is_online, created_at, updated_at
		FROM providers
		WHERE user_uid = $1
	`

	var p model.Provider
	err := r.db.Pool.QueryRow(ctx, query, uid).Scan(
		&p.ID,
		&p.UserUID,
		&p.DisplayName,
		&p.IsOnline,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT service_id FROM provider_services WHERE provider_id = $1`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("get provider services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var serviceID uuid.UUID
		if err := rows.Scan(&serviceID); err != nil {
			return nil, fmt.Errorf("scan provider service: %w", err)
		}
		p.ServiceIDs = append(p.ServiceIDs, serviceID)
	}
	return &p, rows.Err()
}

func (r *providerRepository) CandidatesForService(ctx context.Context, serviceID uuid.UUID, limit int) ([]string, error) {
	query := `
		SELECT p.user_uid
		FROM providers p
		JOIN provider_services ps ON ps.provider_id = p.id
		WHERE ps.service_id = $1 AND p.is_online = TRUE
		ORDER BY p.created_at ASC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, serviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("select candidates: %w", err)
	}
	defer rows.Close()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		uids = append(uids, uid)
	}
	return uids, rows.Err()
}

func (r *providerRepository) SetOnline(ctx context.Context, uid string, online bool) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE providers SET is_online = $1, updated_at = now() WHERE user_uid = $2
	`, online, uid)
	if err != nil {
		return fmt.Errorf("set online: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProviderNotFound
	}
	return nil
}

func (r *providerRepository) UpsertLocation(ctx context.Context, uid string, latitude, longitude float64) error {
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO provider_locations (provider_id, latitude, longitude, updated_at)
		SELECT id, $2, $3, now() FROM providers WHERE user_uid = $1
		ON CONFLICT (provider_id) DO UPDATE
		SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, updated_at = now()
	`, uid, latitude, longitude)
	if err != nil {
		return fmt.Errorf("upsert location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProviderNotFound
	}
	return nil
}
