package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
)

// =====================================================
// WEBHOOK IDEMPOTENCY LEDGER
// =====================================================

type webhookRepository struct {
	pool *pgxpool.Pool
}

func NewWebhookRepository(pool *pgxpool.Pool) WebhookRepository {
	return &webhookRepository{pool: pool}
}

func (r *webhookRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, provider, eventID string) (*model.WebhookEvent, error) {
	query := `
		SELECT provider, event_id, status, payload, last_seen, created_at
		FROM webhook_events
		WHERE provider = $1 AND event_id = $2
		FOR UPDATE
	`

	var event model.WebhookEvent
	err := tx.QueryRow(ctx, query, provider, eventID).Scan(
		&event.Provider,
		&event.EventID,
		&event.Status,
		&event.Payload,
		&event.LastSeen,
		&event.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get webhook event: %w", err)
	}
	return &event, nil
}

func (r *webhookRepository) UpsertPendingTx(ctx context.Context, tx pgx.Tx, provider, eventID string, payload []byte) error {
	query := `
		INSERT INTO webhook_events (provider, event_id, status, payload, last_seen)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (provider, event_id) DO UPDATE
		SET status = EXCLUDED.status, payload = EXCLUDED.payload, last_seen = now()
	`

	if _, err := tx.Exec(ctx, query, provider, eventID, model.WebhookStatusPending, payload); err != nil {
		return fmt.Errorf("upsert webhook event: %w", err)
	}
	return nil
}

func (r *webhookRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, provider, eventID, status string) error {
	query := `
		UPDATE webhook_events
		SET status = $1, last_seen = now()
		WHERE provider = $2 AND event_id = $3
	`

	if _, err := tx.Exec(ctx, query, status, provider, eventID); err != nil {
		return fmt.Errorf("set webhook status: %w", err)
	}
	return nil
}

// MarkFailed runs on the pool, outside the rolled-back processing
// transaction, so the FAILED row survives and the event can be retried.
func (r *webhookRepository) MarkFailed(ctx context.Context, provider, eventID string, payload []byte) error {
	query := `
		INSERT INTO webhook_events (provider, event_id, status, payload, last_seen)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (provider, event_id) DO UPDATE
		SET status = EXCLUDED.status, last_seen = now()
	`

	if _, err := r.pool.Exec(ctx, query, provider, eventID, model.WebhookStatusFailed, payload); err != nil {
		return fmt.Errorf("mark webhook failed: %w", err)
	}
	return nil
}
