package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/artishokq/order-payments-saga/internal/config"
	"github.com/artishokq/order-payments-saga/internal/httpx"
	kafkax "github.com/artishokq/order-payments-saga/internal/kafka"
	"github.com/artishokq/order-payments-saga/internal/outbox"
	"github.com/artishokq/order-payments-saga/internal/payments"
	"github.com/artishokq/order-payments-saga/internal/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.ConnectRetry(ctx, cfg.PostgresDSN, 5)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := payments.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	store := &payments.Store{DB: db}

	// Outbox publisher: payment_outbox -> topic payment-results
	prod := kafkax.NewProducer(cfg.KafkaBrokers, cfg.ResultsTopic)
	defer prod.Close()
	pub := &outbox.Publisher{
		Name:     "payments",
		Source:   &payments.OutboxRepo{DB: db},
		Producer: prod,
		Interval: cfg.OutboxInterval,
		Batch:    cfg.OutboxBatch,
	}
	go pub.Run(ctx)

	// Inbox-guarded processor: topic order-payment-tasks -> debit akun
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.GroupID, cfg.TasksTopic)
	proc := &payments.Processor{Store: store}
	go func() {
		log.Printf("payment processor started: group=%s topic=%s", cfg.GroupID, cfg.TasksTopic)
		if err := cons.Run(ctx, proc.Handle); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// HTTP
	router := httpx.NewRouter()
	ah := &httpx.AccountsHandler{Store: store}
	ah.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	time.Sleep(500 * time.Millisecond)
}
