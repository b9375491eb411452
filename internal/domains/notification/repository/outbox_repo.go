package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AfroSamurai-hub/OzzServe/pkg/ident"
)

// OutboxRepository appends notification rows. Always called with the
// transaction of the state change being announced, so a rolled-back
// transition never notifies anyone.
type OutboxRepository interface {
	EnqueueTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, recipientUID, kind string, payload map[string]interface{}) error
}

type outboxRepository struct{}

func NewOutboxRepository() OutboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) EnqueueTx(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, recipientUID, kind string, payload map[string]interface{}) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal outbox payload: %w", err)
		}
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO notification_outbox (id, booking_id, recipient_uid, kind, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, ident.NewID(), bookingID, recipientUID, kind, body)
	if err != nil {
		return fmt.Errorf("enqueue outbox row: %w", err)
	}
	return nil
}
