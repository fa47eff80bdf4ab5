package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/artishokq/order-payments-saga/internal/kafka"
	"github.com/artishokq/order-payments-saga/internal/redisx"
)

type Finalizer interface {
	Finalize(ctx context.Context, id uuid.UUID, to Status) (bool, error)
}

// ResultConsumer dengerin topic payment-results dan set status terminal order.
// Tidak ada inbox di sisi ini: guard status='NEW' di Finalize sudah bikin
// redelivery no-op.
type ResultConsumer struct {
	Orders Finalizer
	Redis  *redis.Client // optional, refresh cache status
}

// Handle dipasang sebagai handler consumer. Return nil = ack (commit offset).
func (c *ResultConsumer) Handle(ctx context.Context, m kafkago.Message) error {
	var res PaymentResult
	if err := json.Unmarshal(m.Value, &res); err != nil {
		// poison: drop setelah ack, jangan retry
		log.Printf("[results] invalid payload at offset %d: %v", m.Offset, err)
		return nil
	}
	if res.OrderID == uuid.Nil {
		log.Printf("[results] payload without order id at offset %d", m.Offset)
		return nil
	}

	to := StatusCancelled
	if res.IsSuccess {
		to = StatusFinished
	}

	ok, err := c.Orders.Finalize(ctx, res.OrderID, to)
	if err != nil {
		// infra error: jangan ack, biar diproses ulang
		return fmt.Errorf("finalize order %s: %w", res.OrderID, err)
	}
	if !ok {
		log.Printf("[results] order %s not found or already final, skipping", res.OrderID)
		return nil
	}

	log.Printf("[results] order %s -> %s (reason=%q)", res.OrderID, to, res.FailureReason)

	if c.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, res.OrderID)
		val := kafkax.MustMarshal(map[string]any{"Status": to})
		if err := c.Redis.Set(ctx, key, val, redisx.TTLStatusCache).Err(); err != nil {
			log.Printf("[results] cache refresh failed for %s: %v", res.OrderID, err)
		}
	}
	return nil
}
