package config

import (
	"testing"
	"time"

	"github.com/example/storefront-cart/internal/domain/pricing"
	"github.com/example/storefront-cart/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_PORT", "STORAGE_BACKEND", "FREE_SHIPPING_THRESHOLD", "BASE_SHIPPING_FEE",
		"DATABASE_URL", "REDIS_ADDR", "REDIS_TTL", "DYNAMO_TABLE", "KAFKA_BROKERS",
		"KAFKA_TOPIC", "KAFKA_CONSUMER_GROUP", "ORDER_API_URL", "ORDER_API_TIMEOUT", "REQUEST_TIMEOUT", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, pricing.DefaultConfig(), cfg.Pricing)
	assert.Equal(t, 720*time.Hour, cfg.RedisTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "cart-events", cfg.KafkaTopic)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "7500.50")
	t.Setenv("BASE_SHIPPING_FEE", "250")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("REDIS_TTL", "1h")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.co.ke,http://localhost:5173")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, money.Amount(750050), cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, money.Amount(25000), cfg.Pricing.BaseShippingFee)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.RedisTTL)
	assert.Equal(t, []string{"https://shop.example.co.ke", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative threshold", "FREE_SHIPPING_THRESHOLD", "-1"},
		{"garbage fee", "BASE_SHIPPING_FEE", "five hundred"},
		{"fractional cent", "BASE_SHIPPING_FEE", "0.001"},
		{"unknown backend", "STORAGE_BACKEND", "cassandra"},
		{"bad duration", "REDIS_TTL", "forever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
