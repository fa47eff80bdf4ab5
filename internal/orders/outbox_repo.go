package orders

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artishokq/order-payments-saga/internal/outbox"
)

// OutboxRepo implement outbox.Source di atas tabel order_outbox.
type OutboxRepo struct{ DB *pgxpool.Pool }

func (r *OutboxRepo) FetchUnsent(ctx context.Context, limit int) ([]outbox.Entry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, payload
		FROM order_outbox
		WHERE is_sent = false
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outbox.Entry
	for rows.Next() {
		var id, orderID string
		var payload []byte
		if err := rows.Scan(&id, &orderID, &payload); err != nil {
			return nil, err
		}
		out = append(out, outbox.Entry{ID: id, Key: orderID, Payload: payload})
	}
	return out, rows.Err()
}

func (r *OutboxRepo) MarkSent(ctx context.Context, ids []string) error {
	_, err := r.DB.Exec(ctx, `UPDATE order_outbox SET is_sent = true WHERE id = ANY($1::uuid[])`, ids)
	return err
}
