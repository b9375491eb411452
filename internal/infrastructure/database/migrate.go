package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// migration is a single schema step. Statements must be idempotent
// (IF NOT EXISTS / ON CONFLICT DO NOTHING) so a partially applied step
// can be re-run safely.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in ascending Version order; each applied step is
// recorded in schema_versions.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create_services",
		SQL: `
			CREATE TABLE IF NOT EXISTS services (
				id          UUID PRIMARY KEY,
				category    TEXT NOT NULL,
				name        TEXT NOT NULL,
				price_cents BIGINT NOT NULL,
				is_active   BOOLEAN NOT NULL DEFAULT TRUE,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_providers",
		SQL: `
			CREATE TABLE IF NOT EXISTS providers (
				id           UUID PRIMARY KEY,
				user_uid     TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				is_online    BOOLEAN NOT NULL DEFAULT FALSE,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			CREATE TABLE IF NOT EXISTS provider_services (
				provider_id UUID NOT NULL REFERENCES providers(id),
				service_id  UUID NOT NULL REFERENCES services(id),
				PRIMARY KEY (provider_id, service_id)
			);

			CREATE TABLE IF NOT EXISTS provider_locations (
				provider_id UUID PRIMARY KEY REFERENCES providers(id),
				latitude    DOUBLE PRECISION NOT NULL,
				longitude   DOUBLE PRECISION NOT NULL,
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_bookings",
		SQL: `
			CREATE TABLE IF NOT EXISTS bookings (
				id                       UUID PRIMARY KEY,
				status                   TEXT NOT NULL,
				customer_id              TEXT NOT NULL,
				provider_id              TEXT,
				service_id               UUID NOT NULL,
				slot_id                  TEXT NOT NULL,
				candidate_list           TEXT[] NOT NULL DEFAULT '{}',
				otp                      TEXT NOT NULL,
				expires_at               TIMESTAMPTZ NOT NULL,
				complete_pending_until   TIMESTAMPTZ,
				service_name_snapshot    TEXT,
				price_snapshot_cents     BIGINT,
				stripe_payment_intent_id TEXT,
				created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			CREATE INDEX IF NOT EXISTS idx_bookings_customer ON bookings(customer_id);
			CREATE INDEX IF NOT EXISTS idx_bookings_provider ON bookings(provider_id);
			CREATE INDEX IF NOT EXISTS idx_bookings_status   ON bookings(status);
		`,
	},
	{
		Version: 4,
		Name:    "create_booking_events",
		SQL: `
			CREATE TABLE IF NOT EXISTS booking_events (
				id         UUID PRIMARY KEY,
				booking_id UUID NOT NULL REFERENCES bookings(id),
				event_type TEXT NOT NULL,
				actor_uid  TEXT,
				actor_role TEXT,
				from_status TEXT,
				to_status   TEXT,
				detail      TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			CREATE INDEX IF NOT EXISTS idx_booking_events_booking ON booking_events(booking_id);
		`,
	},
	{
		Version: 5,
		Name:    "create_payment_intents",
		SQL: `
			CREATE TABLE IF NOT EXISTS payment_intents (
				id           UUID PRIMARY KEY,
				booking_id   UUID NOT NULL REFERENCES bookings(id),
				provider     TEXT NOT NULL,
				provider_ref TEXT NOT NULL,
				amount_cents BIGINT NOT NULL,
				currency     TEXT NOT NULL,
				status       TEXT NOT NULL,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			CREATE INDEX IF NOT EXISTS idx_payment_intents_booking ON payment_intents(booking_id);
			CREATE INDEX IF NOT EXISTS idx_payment_intents_ref     ON payment_intents(provider_ref);
		`,
	},
	{
		Version: 6,
		Name:    "create_webhook_events",
		SQL: `
			CREATE TABLE IF NOT EXISTS webhook_events (
				provider   TEXT NOT NULL,
				event_id   TEXT NOT NULL,
				status     TEXT NOT NULL,
				payload    JSONB,
				last_seen  TIMESTAMPTZ NOT NULL DEFAULT now(),
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (provider, event_id)
			);
		`,
	},
	{
		Version: 7,
		Name:    "create_notification_outbox",
		SQL: `
			CREATE TABLE IF NOT EXISTS notification_outbox (
				id            UUID PRIMARY KEY,
				booking_id    UUID NOT NULL REFERENCES bookings(id),
				recipient_uid TEXT NOT NULL,
				kind          TEXT NOT NULL,
				payload       JSONB,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			CREATE INDEX IF NOT EXISTS idx_outbox_created ON notification_outbox(created_at);
		`,
	},
	{
		Version: 8,
		Name:    "seed_services",
		SQL: `
			INSERT INTO services (id, category, name, price_cents, is_active) VALUES
				('7b6a1a10-0001-4c8a-9f10-000000000001', 'plumbing',    'Geyser repair',        45000, TRUE),
				('7b6a1a10-0001-4c8a-9f10-000000000002', 'plumbing',    'Burst pipe call-out',  38000, TRUE),
				('7b6a1a10-0001-4c8a-9f10-000000000003', 'electrical',  'DB board inspection',  52000, TRUE),
				('7b6a1a10-0001-4c8a-9f10-000000000004', 'gardening',   'Garden cleanup',       28000, TRUE),
				('7b6a1a10-0001-4c8a-9f10-000000000005', 'cleaning',    'Deep home clean',      60000, TRUE)
			ON CONFLICT (id) DO NOTHING;
		`,
	},
}

// Migrate applies all pending migrations in ascending version order.
// Each step runs in its own transaction together with its
// schema_versions bookkeeping row.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version    INT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		err := db.Pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_versions WHERE version = $1)`, m.Version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check schema version %d: %w", m.Version, err)
		}
		if exists {
			continue
		}

		err = db.ExecuteInTransaction(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO schema_versions (version, name) VALUES ($1, $2)`,
				m.Version, m.Name,
			); err != nil {
				return fmt.Errorf("record migration %d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		logger.Info("migration applied", map[string]interface{}{
			"version": m.Version,
			"name":    m.Name,
		})
	}

	return nil
}
