// Package outbox berisi relay generik dari tabel outbox ke broker.
// Dua service pakai bentuk yang sama, beda cuma Source + topic.
package outbox

import (
	"context"
	"log"
	"time"
)

// Entry satu baris outbox yang belum terkirim. Key = aggregate id (order id),
// dipakai sebagai partition key biar urutan per-order kejaga.
type Entry struct {
	ID      string
	Key     string
	Payload []byte
}

type Source interface {
	// FetchUnsent ambil maksimal limit baris is_sent=false, paling tua duluan.
	FetchUnsent(ctx context.Context, limit int) ([]Entry, error)
	// MarkSent flip is_sent=true untuk ids dalam satu commit.
	MarkSent(ctx context.Context, ids []string) error
}

type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Publisher struct {
	Name     string
	Source   Source
	Producer Producer
	Interval time.Duration
	Batch    int
}

// Run: loop polling kooperatif. Tiap tick, drain batch sampai kosong lalu
// tidur lagi. Stop signal dicek di antara iterasi, tidak pernah motong
// transaksi yang lagi jalan.
func (p *Publisher) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	log.Printf("[%s] outbox publisher started (interval=%s batch=%d)", p.Name, interval, p.batch())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] outbox publisher stopped", p.Name)
			return
		case <-ticker.C:
		}

		for {
			n, err := p.RunOnce(ctx)
			if err != nil {
				// infra error: log dan tunggu tick berikutnya, cadence polling
				// sekalian jadi rate limit retry
				log.Printf("[%s] outbox cycle: %v", p.Name, err)
				break
			}
			if n == 0 || ctx.Err() != nil {
				break
			}
		}
	}
}

// RunOnce satu siklus: ambil batch, publish per baris, lalu commit semua flag
// sent sekali jalan. Return jumlah baris yang sukses terkirim.
//
// Gagal publish satu baris tidak ngeblok baris lain; baris itu dibiarkan
// unsent buat siklus berikutnya. Crash di antara ack broker dan MarkSent
// bikin baris yang sama dikirim ulang — makanya semua consumer downstream
// wajib idempotent.
func (p *Publisher) RunOnce(ctx context.Context) (int, error) {
	entries, err := p.Source.FetchUnsent(ctx, p.batch())
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	sent := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := p.Producer.Publish(ctx, []byte(e.Key), e.Payload); err != nil {
			log.Printf("[%s] publish %s (key=%s): %v", p.Name, e.ID, e.Key, err)
			continue
		}
		sent = append(sent, e.ID)
	}

	if len(sent) > 0 {
		if err := p.Source.MarkSent(ctx, sent); err != nil {
			return 0, err
		}
	}
	return len(sent), nil
}

func (p *Publisher) batch() int {
	if p.Batch <= 0 {
		return 10
	}
	return p.Batch
}
