package payments

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artishokq/order-payments-saga/internal/orders"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestEvaluateAccountMissing(t *testing.T) {
	ok, reason := evaluate(nil, dec("10"))
	assert.False(t, ok)
	assert.Equal(t, "Account not found", reason)
}

func TestEvaluateInsufficientBalance(t *testing.T) {
	b := dec("100")
	ok, reason := evaluate(&b, dec("500"))
	assert.False(t, ok)
	assert.Equal(t, "Insufficient balance. Required: 500, Available: 100", reason)
}

func TestEvaluateExactBalanceSucceeds(t *testing.T) {
	// saldo == amount boleh: invariant cuma melarang saldo negatif
	b := dec("50")
	ok, reason := evaluate(&b, dec("50"))
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestEvaluateSufficientBalance(t *testing.T) {
	b := dec("100.50")
	ok, _ := evaluate(&b, dec("0.50"))
	assert.True(t, ok)
}

// ---- alur transaksi applyTask ----

// fakeLedger = state yang sudah commit; mutasi cuma masuk lewat Commit.
type fakeLedger struct {
	inbox    map[string]bool // message_key -> processed
	balances map[uuid.UUID]decimal.Decimal
	outbox   [][]byte
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		inbox:    map[string]bool{},
		balances: map[uuid.UUID]decimal.Decimal{},
	}
}

func (l *fakeLedger) begin() *fakeTx { return &fakeTx{ledger: l} }

// fakeTx implement taskTx: write di-stage dulu, baru kelihatan setelah
// Commit; Rollback buang semuanya. failOn maksa satu statement gagal.
type fakeTx struct {
	ledger     *fakeLedger
	staged     []func(*fakeLedger)
	failOn     string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.failOn != "" && strings.Contains(sql, t.failOn) {
		return pgconn.CommandTag{}, errors.New("forced write failure")
	}
	switch {
	case strings.Contains(sql, "INSERT INTO payment_inbox"):
		key := args[0].(string)
		if _, ok := t.ledger.inbox[key]; ok {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505", ConstraintName: "payment_inbox_pkey"}
		}
		t.staged = append(t.staged, func(l *fakeLedger) { l.inbox[key] = false })
	case strings.Contains(sql, "UPDATE accounts SET balance = balance -"):
		user, amount := args[0].(uuid.UUID), args[1].(decimal.Decimal)
		t.staged = append(t.staged, func(l *fakeLedger) { l.balances[user] = l.balances[user].Sub(amount) })
	case strings.Contains(sql, "INSERT INTO payment_outbox"):
		payload := append([]byte(nil), args[3].([]byte)...)
		t.staged = append(t.staged, func(l *fakeLedger) { l.outbox = append(l.outbox, payload) })
	case strings.Contains(sql, "UPDATE payment_inbox SET processed"):
		key := args[0].(string)
		t.staged = append(t.staged, func(l *fakeLedger) { l.inbox[key] = true })
	}
	return pgconn.CommandTag{}, nil
}

type fakeRow struct {
	balance decimal.Decimal
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*decimal.Decimal)) = r.balance
	return nil
}

func (t *fakeTx) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	b, ok := t.ledger.balances[args[0].(uuid.UUID)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{balance: b}
}

func (t *fakeTx) Commit(_ context.Context) error {
	for _, apply := range t.staged {
		apply(t.ledger)
	}
	t.committed = true
	t.staged = nil
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	t.staged = nil
	return nil
}

func testTask(user uuid.UUID, amount string) orders.PaymentTask {
	return orders.PaymentTask{OrderID: uuid.New(), UserID: user, Amount: dec(amount)}
}

func TestApplyTaskCommitsAllEffectsTogether(t *testing.T) {
	ledger := newFakeLedger()
	user := uuid.New()
	ledger.balances[user] = dec("100")
	task := testTask(user, "50")
	tx := ledger.begin()

	res, err := applyTask(context.Background(), tx, task.OrderID.String(), task)
	require.NoError(t, err)
	assert.True(t, res.IsSuccess)
	assert.True(t, tx.committed)

	// keempat efek kelihatan bareng setelah commit
	processed, ok := ledger.inbox[task.OrderID.String()]
	require.True(t, ok)
	assert.True(t, processed)
	assert.Equal(t, "50", ledger.balances[user].String())
	require.Len(t, ledger.outbox, 1)

	var out orders.PaymentResult
	require.NoError(t, json.Unmarshal(ledger.outbox[0], &out))
	assert.Equal(t, task.OrderID, out.OrderID)
	assert.True(t, out.IsSuccess)
}

func TestApplyTaskMidTransactionFailurePersistsNothing(t *testing.T) {
	ledger := newFakeLedger()
	user := uuid.New()
	ledger.balances[user] = dec("100")
	task := testTask(user, "50")

	// gagal setelah insert inbox, sebelum insert outbox: all-or-nothing
	tx := ledger.begin()
	tx.failOn = "INSERT INTO payment_outbox"

	_, err := applyTask(context.Background(), tx, task.OrderID.String(), task)
	require.Error(t, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)

	assert.Empty(t, ledger.inbox, "no inbox row survives the abort")
	assert.Empty(t, ledger.outbox)
	assert.Equal(t, "100", ledger.balances[user].String(), "debit rolled back")
}

func TestApplyTaskDuplicateKeyAbortsLoserTransaction(t *testing.T) {
	ledger := newFakeLedger()
	user := uuid.New()
	ledger.balances[user] = dec("100")
	task := testTask(user, "50")
	key := task.OrderID.String()

	tx1 := ledger.begin()
	_, err := applyTask(context.Background(), tx1, key, task)
	require.NoError(t, err)

	// delivery kedua dengan key sama: unique violation di insert inbox
	// nge-abort SELURUH transaksi, bukan cuma statement-nya
	tx2 := ledger.begin()
	_, err = applyTask(context.Background(), tx2, key, task)
	require.Error(t, err)
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23505", pgErr.Code)
	assert.False(t, tx2.committed)
	assert.True(t, tx2.rolledBack)

	// persis satu baris inbox, satu debit, satu baris outbox
	assert.Len(t, ledger.inbox, 1)
	assert.Equal(t, "50", ledger.balances[user].String())
	assert.Len(t, ledger.outbox, 1)
}

func TestApplyTaskMissingAccountStillRecordsOutcome(t *testing.T) {
	ledger := newFakeLedger()
	task := testTask(uuid.New(), "10")
	tx := ledger.begin()

	res, err := applyTask(context.Background(), tx, task.OrderID.String(), task)
	require.NoError(t, err)
	assert.False(t, res.IsSuccess)
	assert.Equal(t, "Account not found", res.FailureReason)

	// outcome bisnis tetap dicommit: inbox + outbox ada, tanpa debit
	assert.True(t, tx.committed)
	assert.Len(t, ledger.inbox, 1)
	require.Len(t, ledger.outbox, 1)
}

func TestApplyTaskInsufficientBalanceLeavesBalance(t *testing.T) {
	ledger := newFakeLedger()
	user := uuid.New()
	ledger.balances[user] = dec("100")
	task := testTask(user, "500")
	tx := ledger.begin()

	res, err := applyTask(context.Background(), tx, task.OrderID.String(), task)
	require.NoError(t, err)
	assert.False(t, res.IsSuccess)
	assert.Contains(t, res.FailureReason, "Insufficient balance")
	assert.True(t, tx.committed)
	assert.Equal(t, "100", ledger.balances[user].String())
}
