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
	"github.com/artishokq/order-payments-saga/internal/gateway"
	"github.com/artishokq/order-payments-saga/internal/httpx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	proxy, err := gateway.New(cfg.OrdersURL, cfg.PaymentsURL)
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}

	router := httpx.NewRouter()
	proxy.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.Printf("gateway listening at %s (orders=%s payments=%s)", cfg.HTTPAddr, cfg.OrdersURL, cfg.PaymentsURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
