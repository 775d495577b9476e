package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/example/storefront-cart/internal/api"
	"github.com/example/storefront-cart/internal/config"
	"github.com/example/storefront-cart/internal/domain/cart"
	"github.com/example/storefront-cart/internal/domain/checkout"
	"github.com/example/storefront-cart/internal/infrastructure/kafka"
	"github.com/example/storefront-cart/internal/infrastructure/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Invalid configuration: %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Storefront Cart API")
	log.Println("[API] ========================================")
	log.Printf("[API] Storage: %s", cfg.StorageBackend)
	log.Printf("[API] Free shipping from %s, otherwise %s",
		cfg.Pricing.FreeShippingThreshold.Format("KES"), cfg.Pricing.BaseShippingFee.Format("KES"))
	log.Printf("[API] Order API: %s", cfg.OrderAPIURL)

	kv, closeKV := openStorage(ctx, cfg)
	defer closeKV()

	var opts []cart.Option
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		opts = append(opts, cart.WithObserver(kafka.NewCartPublisher(producer)))
		log.Printf("[API] Publishing cart events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	} else {
		log.Println("[API] KAFKA_BROKERS not set, cart events are not published")
	}

	registry := cart.NewRegistry(cfg.Pricing, kv, opts...)
	orderClient := checkout.NewOrderClient(cfg.OrderAPIURL, cfg.OrderAPITimeout)
	handlers := api.NewHandlers(checkout.NewService(orderClient))

	router := api.NewRouter(api.RouterConfig{
		Handlers:       handlers,
		Registry:       registry,
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[API] Server started on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Forced shutdown: %v", err)
	}
	log.Printf("[API] Served %d carts", registry.Len())
}

// openStorage connects the configured snapshot backend
func openStorage(ctx context.Context, cfg *config.Config) (store.KV, func()) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		pg := store.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("[API] Failed to prepare cart_snapshots table: %v", err)
		}
		log.Println("[API] Connected to PostgreSQL")
		return pg, closer(db)

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("[API] Redis connection failed: %v", err)
		}
		log.Printf("[API] Connected to Redis at %s (ttl %s)", cfg.RedisAddr, cfg.RedisTTL)
		return store.NewRedisStore(client, cfg.RedisTTL), func() { client.Close() }

	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("[API] Failed to load AWS config: %v", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if endpoint := os.Getenv("DYNAMO_ENDPOINT"); endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
		log.Printf("[API] Using DynamoDB table %s", cfg.DynamoTable)
		return store.NewDynamoStore(client, cfg.DynamoTable), func() {}
	}

	log.Println("[API] Using in-memory storage, carts are lost on restart")
	return store.NewMemoryStore(), func() {}
}

func closer(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Printf("[API] Error closing database: %v", err)
		}
	}
}
