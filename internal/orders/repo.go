package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

var ErrNotFound = errors.New("order not found")

// CreateOrderTx: INSERT order (status NEW) + INSERT baris outbox dengan payload
// PaymentTask dalam SATU transaksi. Dua-duanya commit bareng atau tidak sama
// sekali; pesan tidak mungkin ada tanpa state-nya, dan sebaliknya.
func (r *Repo) CreateOrderTx(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*Order, error) {
	now := time.Now().UTC()
	order := &Order{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Status:      StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	payload, err := json.Marshal(PaymentTask{
		OrderID: order.ID,
		UserID:  order.UserID,
		Amount:  order.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payment task: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, amount, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, order.ID, order.UserID, order.Amount, order.Description, order.Status, now)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_outbox(id, order_id, payload, is_sent, created_at)
		VALUES ($1, $2, $3, false, $4)
	`, uuid.New(), order.ID, payload, now)
	if err != nil {
		return nil, fmt.Errorf("insert outbox: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, amount, description, status, created_at, updated_at
		FROM orders WHERE id = $1
	`, id).Scan(&o.ID, &o.UserID, &o.Amount, &o.Description, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, amount, description, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Amount, &o.Description, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Finalize set status terminal dengan guard status='NEW': status final tidak
// pernah dibalik, jadi redelivery hasil yang sama otomatis no-op.
// Return false kalau order tidak ada atau sudah final.
func (r *Repo) Finalize(ctx context.Context, id uuid.UUID, to Status) (bool, error) {
	if !CanTransition(StatusNew, to) {
		return false, fmt.Errorf("invalid terminal status %q", to)
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`, id, to, time.Now().UTC(), StatusNew)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
