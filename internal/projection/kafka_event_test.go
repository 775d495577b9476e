package projection

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/storefront-cart/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kafkaRecord(offset int64, key string, value []byte) events.KafkaRecord {
	return events.KafkaRecord{
		Topic:  "cart-events",
		Offset: offset,
		Key:    base64.StdEncoding.EncodeToString([]byte(key)),
		Value:  base64.StdEncoding.EncodeToString(value),
	}
}

func TestProjector_HandleKafkaEvent(t *testing.T) {
	projector, readStore := newTestProjector()
	items := []cart.LineItem{{ProductID: "P1", UnitPrice: 100, Quantity: 1, AvailableStock: 3}}

	batch := events.KafkaEvent{
		EventSource: "aws:kafka",
		Records: map[string][]events.KafkaRecord{
			"cart-events-0": {
				kafkaRecord(1, "cart-123", makeEvent("e1", cart.EventItemAdded, items)),
				kafkaRecord(2, "cart-123", []byte("garbage")),
				{Topic: "cart-events", Offset: 3, Value: "%%%not-base64"},
				kafkaRecord(4, "cart-123", makeEvent("e2", cart.EventCartCleared, []cart.LineItem{})),
			},
		},
	}

	applied, err := projector.HandleKafkaEvent(context.Background(), batch)

	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	a, ok := readStore.Get("cart-123")
	require.True(t, ok)
	assert.Equal(t, 2, a.Mutations)
	assert.True(t, a.Cleared)
}

func TestProjector_HandleKafkaEvent_Empty(t *testing.T) {
	projector, _ := newTestProjector()

	applied, err := projector.HandleKafkaEvent(context.Background(), events.KafkaEvent{})

	require.NoError(t, err)
	assert.Equal(t, 0, applied)
}
