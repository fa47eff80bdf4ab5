package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/artishokq/order-payments-saga/internal/orders"
)

var (
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
)

type Store struct{ DB *pgxpool.Pool }

func (s *Store) CreateAccount(ctx context.Context, userID uuid.UUID) error {
	ct, err := s.DB.Exec(ctx, `
		INSERT INTO accounts(user_id, balance) VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrAccountExists
	}
	return nil
}

func (s *Store) TopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE accounts SET balance = balance + $2 WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *Store) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var b decimal.Decimal
	err := s.DB.QueryRow(ctx, `SELECT balance FROM accounts WHERE user_id = $1`, userID).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrAccountNotFound
	}
	return b, err
}

// Seen: cek inbox. Baris ada = task sudah pernah diterima, boleh langsung
// di-ack tanpa proses ulang.
func (s *Store) Seen(ctx context.Context, messageKey string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM payment_inbox WHERE message_key = $1)
	`, messageKey).Scan(&exists)
	return exists, err
}

// taskTx: irisan pgx.Tx yang dipakai applyTask. Seam tipis biar alur
// transaksinya bisa diuji tanpa DB.
type taskTx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ApplyTask mengerjakan satu task pembayaran dalam SATU transaksi:
// insert inbox (unprocessed) -> lock akun -> evaluasi debit -> insert
// payment_outbox dengan hasilnya -> tandai inbox processed -> commit.
// Error apapun nge-rollback semuanya; duplicate key di inbox (dua delivery
// barengan) juga jatuh ke sini dan diserap lewat Seen pada retry.
func (s *Store) ApplyTask(ctx context.Context, messageKey string, task orders.PaymentTask) (orders.PaymentResult, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return orders.PaymentResult{OrderID: task.OrderID}, err
	}
	return applyTask(ctx, tx, messageKey, task)
}

func applyTask(ctx context.Context, tx taskTx, messageKey string, task orders.PaymentTask) (orders.PaymentResult, error) {
	res := orders.PaymentResult{OrderID: task.OrderID}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	_, err := tx.Exec(ctx, `
		INSERT INTO payment_inbox(message_key, order_id, user_id, amount, processed, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
	`, messageKey, task.OrderID, task.UserID, task.Amount, now)
	if err != nil {
		return res, fmt.Errorf("insert inbox: %w", err)
	}

	var balance decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE
	`, task.UserID).Scan(&balance)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		res.IsSuccess, res.FailureReason = evaluate(nil, task.Amount)
	case err != nil:
		return res, fmt.Errorf("load account: %w", err)
	default:
		res.IsSuccess, res.FailureReason = evaluate(&balance, task.Amount)
		if res.IsSuccess {
			if _, err := tx.Exec(ctx, `
				UPDATE accounts SET balance = balance - $2 WHERE user_id = $1
			`, task.UserID, task.Amount); err != nil {
				return res, fmt.Errorf("debit account: %w", err)
			}
		}
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return res, fmt.Errorf("marshal result: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO payment_outbox(id, order_id, is_success, payload, is_sent, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
	`, uuid.New(), task.OrderID, res.IsSuccess, payload, now)
	if err != nil {
		return res, fmt.Errorf("insert outbox: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE payment_inbox SET processed = true WHERE message_key = $1
	`, messageKey); err != nil {
		return res, fmt.Errorf("mark inbox processed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// evaluate: aturan bisnis debit. Saldo kurang / akun tidak ada itu OUTCOME
// (success=false + reason), bukan error; error dipakai cuma untuk infra.
func evaluate(balance *decimal.Decimal, amount decimal.Decimal) (bool, string) {
	if balance == nil {
		return false, "Account not found"
	}
	if balance.LessThan(amount) {
		return false, fmt.Sprintf("Insufficient balance. Required: %s, Available: %s", amount, balance)
	}
	return true, ""
}
