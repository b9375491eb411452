package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/model"
)

// =====================================================
// BOOKING REPOSITORY
// =====================================================

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingColumns = `id, status, customer_id, provider_id, service_id, slot_id,
	candidate_list, otp, expires_at, complete_pending_until,
	service_name_snapshot, price_snapshot_cents, stripe_payment_intent_id,
	created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.Status,
		&b.CustomerID,
		&b.ProviderID,
		&b.ServiceID,
		&b.SlotID,
		pq.Array(&b.CandidateList),
		&b.OTP,
		&b.ExpiresAt,
		&b.CompletePendingUntil,
		&b.ServiceNameSnapshot,
		&b.PriceSnapshotCents,
		&b.StripePaymentIntentID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) InsertTx(ctx context.Context, tx pgx.Tx, b *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, status, customer_id, provider_id, service_id, slot_id,
			candidate_list, otp, expires_at, complete_pending_until,
			service_name_snapshot, price_snapshot_cents, stripe_payment_intent_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.Exec(ctx, query,
		b.ID,
		b.Status,
		b.CustomerID,
		b.ProviderID,
		b.ServiceID,
		b.SlotID,
		pq.Array(b.CandidateList),
		b.OTP,
		b.ExpiresAt,
		b.CompletePendingUntil,
		b.ServiceNameSnapshot,
		b.PriceSnapshotCents,
		b.StripePaymentIntentID,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	b, err := scanBooking(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking for update: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`

	tag, err := tx.Exec(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStatusDrift
	}
	return nil
}

func (r *bookingRepository) AssignProviderTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, providerUID, from, to string) error {
	query := `
		UPDATE bookings
		SET status = $1, provider_id = $2, updated_at = now()
		WHERE id = $3 AND status = $4
		  AND (provider_id IS NULL OR provider_id = $2)
	`

	tag, err := tx.Exec(ctx, query, to, providerUID, id, from)
	if err != nil {
		return fmt.Errorf("assign provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStatusDrift
	}
	return nil
}

func (r *bookingRepository) ClearProviderTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) error {
	query := `
		UPDATE bookings
		SET status = $1, provider_id = NULL, updated_at = now()
		WHERE id = $2 AND status = $3
	`

	tag, err := tx.Exec(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("clear provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStatusDrift
	}
	return nil
}

func (r *bookingRepository) SetCompletePendingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from string, until time.Time) error {
	query := `
		UPDATE bookings
		SET status = $1, complete_pending_until = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`

	tag, err := tx.Exec(ctx, query, model.StatusCompletePending, until, id, from)
	if err != nil {
		return fmt.Errorf("set complete pending: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStatusDrift
	}
	return nil
}

func (r *bookingRepository) SetPaymentRefTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, providerRef string) error {
	query := `
		UPDATE bookings
		SET stripe_payment_intent_id = $1, updated_at = now()
		WHERE id = $2
	`

	tag, err := tx.Exec(ctx, query, providerRef, id)
	if err != nil {
		return fmt.Errorf("set payment ref: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookingNotFound
	}
	return nil
}

func (r *bookingRepository) AppendEventTx(ctx context.Context, tx pgx.Tx, event *model.BookingEvent) error {
	query := `
		INSERT INTO booking_events (
			id, booking_id, event_type, actor_uid, actor_role, from_status, to_status, detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		event.ID,
		event.BookingID,
		event.EventType,
		event.ActorUID,
		event.ActorRole,
		event.FromStatus,
		event.ToStatus,
		event.Detail,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append booking event: %w", err)
	}
	return nil
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID string, q model.ListQuery) ([]model.Booking, error) {
	return r.list(ctx, `customer_id`, customerID, q)
}

func (r *bookingRepository) ListByProvider(ctx context.Context, providerUID string, q model.ListQuery) ([]model.Booking, error) {
	return r.list(ctx, `provider_id`, providerUID, q)
}

func (r *bookingRepository) list(ctx context.Context, ownerColumn, owner string, q model.ListQuery) ([]model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + ownerColumn + ` = $1`
	args := []interface{}{owner}

	if q.Status != "" {
		query += ` AND status = $2`
		args = append(args, q.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, q.Limit, q.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) SweepExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE status = $2 AND created_at < $3
	`

	tag, err := r.pool.Exec(ctx, query, model.StatusExpired, model.StatusPendingPayment, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep expired bookings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *bookingRepository) FindGraceExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM bookings
		WHERE status = $1 AND complete_pending_until IS NOT NULL AND complete_pending_until < $2
		ORDER BY complete_pending_until ASC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, model.StatusCompletePending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("find grace expired: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booking id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
