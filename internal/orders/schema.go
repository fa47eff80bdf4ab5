package orders

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id          UUID PRIMARY KEY,
			user_id     UUID NOT NULL,
			amount      NUMERIC(18,2) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS order_outbox (
			id         UUID PRIMARY KEY,
			order_id   UUID NOT NULL,
			payload    JSONB NOT NULL,
			is_sent    BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_order_outbox_unsent
			ON order_outbox (created_at) WHERE is_sent = false;
	`)
	return err
}
