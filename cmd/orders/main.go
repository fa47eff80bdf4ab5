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
	"github.com/artishokq/order-payments-saga/internal/orders"
	"github.com/artishokq/order-payments-saga/internal/outbox"
	"github.com/artishokq/order-payments-saga/internal/postgres"
	"github.com/artishokq/order-payments-saga/internal/redisx"
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
	if err := orders.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	repo := &orders.Repo{DB: db}

	// Outbox publisher: order_outbox -> topic order-payment-tasks
	prod := kafkax.NewProducer(cfg.KafkaBrokers, cfg.TasksTopic)
	defer prod.Close()
	pub := &outbox.Publisher{
		Name:     "orders",
		Source:   &orders.OutboxRepo{DB: db},
		Producer: prod,
		Interval: cfg.OutboxInterval,
		Batch:    cfg.OutboxBatch,
	}
	go pub.Run(ctx)

	// Result consumer: topic payment-results -> status order
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.GroupID, cfg.ResultsTopic)
	rc := &orders.ResultConsumer{Orders: repo, Redis: rdb}
	go func() {
		log.Printf("result consumer started: group=%s topic=%s", cfg.GroupID, cfg.ResultsTopic)
		if err := cons.Run(ctx, rc.Handle); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// HTTP
	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Repo: repo, Redis: rdb}
	oh.Register(router)

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
	time.Sleep(500 * time.Millisecond) // kasih waktu loop selesai siklusnya
}
