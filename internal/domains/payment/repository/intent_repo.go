package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
)

// =====================================================
// PAYMENT INTENT REPOSITORY
// =====================================================

type intentRepository struct {
	pool *pgxpool.Pool
}

func NewIntentRepository(pool *pgxpool.Pool) IntentRepository {
	return &intentRepository{pool: pool}
}

const intentColumns = `id, booking_id, provider, provider_ref, amount_cents, currency, status, created_at, updated_at`

func scanIntent(row pgx.Row) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	err := row.Scan(
		&intent.ID,
		&intent.BookingID,
		&intent.Provider,
		&intent.ProviderRef,
		&intent.AmountCents,
		&intent.Currency,
		&intent.Status,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *intentRepository) InsertTx(ctx context.Context, tx pgx.Tx, intent *model.PaymentIntent) error {
	query := `
		INSERT INTO payment_intents (
			id, booking_id, provider, provider_ref, amount_cents, currency, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		intent.ID,
		intent.BookingID,
		intent.Provider,
		intent.ProviderRef,
		intent.AmountCents,
		intent.Currency,
		intent.Status,
		intent.CreatedAt,
		intent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment intent: %w", err)
	}
	return nil
}

func (r *intentRepository) GetAuthorizedForUpdateTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*model.PaymentIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM payment_intents
		WHERE booking_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`

	intent, err := scanIntent(tx.QueryRow(ctx, query, bookingID, model.IntentStatusAuthorized))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNoAuthorizedIntent
	}
	if err != nil {
		return nil, fmt.Errorf("get authorized intent: %w", err)
	}
	return intent, nil
}

func (r *intentRepository) GetByRefForUpdateTx(ctx context.Context, tx pgx.Tx, provider, providerRef string) (*model.PaymentIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM payment_intents
		WHERE provider = $1 AND provider_ref = $2
		FOR UPDATE
	`

	intent, err := scanIntent(tx.QueryRow(ctx, query, provider, providerRef))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrIntentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get intent by ref: %w", err)
	}
	return intent, nil
}

func (r *intentRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, fromStatus, toStatus string) error {
	query := `
		UPDATE payment_intents
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`

	tag, err := tx.Exec(ctx, query, toStatus, id, fromStatus)
	if err != nil {
		return fmt.Errorf("update intent status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrIntentNotFound
	}
	return nil
}

func (r *intentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.PaymentIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM payment_intents
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list intents: %w", err)
	}
	defer rows.Close()

	var intents []model.PaymentIntent
	for rows.Next() {
		intent, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intent: %w", err)
		}
		intents = append(intents, *intent)
	}
	return intents, rows.Err()
}
