package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront-cart/internal/api"
	"github.com/example/storefront-cart/internal/config"
	"github.com/example/storefront-cart/internal/infrastructure/kafka"
	"github.com/example/storefront-cart/internal/infrastructure/store"
	"github.com/example/storefront-cart/internal/projection"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Projector] Invalid configuration: %v", err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}
	httpPort := os.Getenv("PROJECTOR_HTTP_PORT")
	if httpPort == "" {
		httpPort = "8081"
	}

	log.Println("[Projector] ========================================")
	log.Println("[Projector] Storefront Cart - Activity Projector")
	log.Println("[Projector] ========================================")
	log.Printf("[Projector] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Projector] Topic: %s", cfg.KafkaTopic)
	log.Printf("[Projector] Group: %s", cfg.ConsumerGroup)

	var readStore store.ReadStoreInterface
	if cfg.StorageBackend == config.BackendPostgres {
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[Projector] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()
		pg := store.NewPostgresReadStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("[Projector] Failed to prepare read_cart_activity table: %v", err)
		}
		readStore = pg
		log.Println("[Projector] Connected to PostgreSQL (Read DB)")
	} else {
		readStore = store.NewReadStore()
		log.Println("[Projector] Using in-memory read model")
	}

	projector := projection.NewProjector(readStore)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ConsumerGroup)
	defer consumer.Close()

	go func() {
		log.Println("[Projector] Starting event consumer...")
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[Projector] Consumer error: %v", err)
		}
	}()

	server := &http.Server{
		Addr:        ":" + httpPort,
		Handler:     api.NewActivityRouter(api.NewActivityHandlers(readStore), cfg.RequestTimeout),
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[Projector] Activity API on :%s", httpPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Projector] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Projector] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
