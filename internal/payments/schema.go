package payments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			user_id UUID PRIMARY KEY,
			balance NUMERIC(18,2) NOT NULL DEFAULT 0,
			CHECK (balance >= 0)
		);
		CREATE TABLE IF NOT EXISTS payment_inbox (
			message_key TEXT PRIMARY KEY,
			order_id    UUID NOT NULL,
			user_id     UUID NOT NULL,
			amount      NUMERIC(18,2) NOT NULL,
			processed   BOOLEAN NOT NULL DEFAULT false,
			created_at  TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS payment_outbox (
			id         UUID PRIMARY KEY,
			order_id   UUID NOT NULL,
			is_success BOOLEAN NOT NULL,
			payload    JSONB NOT NULL,
			is_sent    BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_payment_outbox_unsent
			ON payment_outbox (created_at) WHERE is_sent = false;
	`)
	return err
}
