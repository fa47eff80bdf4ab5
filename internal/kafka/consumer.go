package kafka

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
// Pesan poison di-handle di dalam handler (log lalu return nil supaya di-ack).
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	backoff time.Duration
}

func NewConsumer(brokers []string, group, topic string) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return &Consumer{r: r, backoff: time.Second}
}

// Run: single-threaded poll loop. Offset dicommit hanya setelah handler sukses;
// kalau handler error, pesan yang sama diproses ulang setelah backoff
// (at-least-once, posisi log tidak maju).
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	defer c.r.Close()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		for {
			if err := h(ctx, m); err == nil {
				break
			} else {
				log.Printf("handler error at %s[%d]@%d: %v", m.Topic, m.Partition, m.Offset, err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
		}

		if err := c.r.CommitMessages(ctx, m); err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
	}
}
