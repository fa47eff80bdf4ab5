package payments

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/artishokq/order-payments-saga/internal/orders"
)

// TaskStore: bagian store yang dibutuhkan processor. Implementasi pg ada di
// Store; test pakai fake.
type TaskStore interface {
	Seen(ctx context.Context, messageKey string) (bool, error)
	ApplyTask(ctx context.Context, messageKey string, task orders.PaymentTask) (orders.PaymentResult, error)
}

// Processor: inbox-guarded consumer untuk topic order-payment-tasks.
// Per pesan: RECEIVED -> (duplikat? SKIP) -> satu transaksi
// inbox+debit+outbox -> baru ack. Ack = return nil.
type Processor struct {
	Store TaskStore
}

func (p *Processor) Handle(ctx context.Context, m kafkago.Message) error {
	var task orders.PaymentTask
	if err := json.Unmarshal(m.Value, &task); err != nil {
		// poison: ack langsung tanpa proses, jangan retry
		log.Printf("[payments] invalid task at offset %d: %v", m.Offset, err)
		return nil
	}
	if task.OrderID == uuid.Nil {
		log.Printf("[payments] task without order id at offset %d", m.Offset)
		return nil
	}

	// identitas pesan = key yang dipakai waktu publish (orderId sebagai text)
	key := string(m.Key)
	if key == "" {
		key = task.OrderID.String()
	}

	seen, err := p.Store.Seen(ctx, key)
	if err != nil {
		return err
	}
	if seen {
		// retry redelivery diserap di sini: skip business logic, ack aja
		log.Printf("[payments] task %s already in inbox, skipping", key)
		return nil
	}

	res, err := p.Store.ApplyTask(ctx, key, task)
	if err != nil {
		// transaksi sudah rollback; jangan ack, pesan bakal diproses ulang
		return err
	}

	if res.IsSuccess {
		log.Printf("[payments] order %s: debited %s from user %s", task.OrderID, task.Amount, task.UserID)
	} else {
		log.Printf("[payments] order %s: debit failed: %s", task.OrderID, res.FailureReason)
	}
	return nil
}
