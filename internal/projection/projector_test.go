package projection

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/example/storefront-cart/internal/domain/cart"
	"github.com/example/storefront-cart/internal/domain/pricing"
	"github.com/example/storefront-cart/internal/infrastructure/store"
	"github.com/example/storefront-cart/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProjector() (*Projector, *store.ReadStore) {
	readStore := store.NewReadStore()
	projector := NewProjector(readStore)
	return projector, readStore
}

func makeEvent(id, eventType string, items []cart.LineItem) []byte {
	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		lines[i] = pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	event := cart.Event{
		ID:         id,
		CartID:     "cart-123",
		Type:       eventType,
		Items:      items,
		Totals:     pricing.ComputeTotals(lines, pricing.Config{FreeShippingThreshold: 10000, BaseShippingFee: 500}),
		OccurredAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	result, _ := json.Marshal(event)
	return result
}

// ============================================
// Cart Event Tests
// ============================================

func TestProjector_HandleItemAdded(t *testing.T) {
	projector, readStore := newTestProjector()
	items := []cart.LineItem{{ProductID: "P1", UnitPrice: 4500, Quantity: 2, AvailableStock: 5}}

	err := projector.HandleEvent(context.Background(), []byte("cart-123"), makeEvent("e1", cart.EventItemAdded, items))

	require.NoError(t, err)
	a, ok := readStore.Get("cart-123")
	require.True(t, ok)
	assert.Equal(t, 1, a.Mutations)
	assert.Equal(t, 1, a.ItemsAdded)
	assert.Equal(t, 1, a.LineCount)
	assert.Equal(t, 2, a.ItemCount)
	assert.Equal(t, money.Amount(9000), a.Subtotal)
	assert.Equal(t, money.Amount(500), a.ShippingCost)
	assert.Equal(t, money.Amount(9500), a.Total)
	assert.False(t, a.Cleared)
	assert.Equal(t, "e1", a.LastEventID)
}

func TestProjector_PartialCheckout(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()
	two := []cart.LineItem{
		{ProductID: "P1", UnitPrice: 4500, Quantity: 1, AvailableStock: 5},
		{ProductID: "P2", UnitPrice: 800, Quantity: 1, AvailableStock: 5},
	}
	left := []cart.LineItem{{ProductID: "P2", UnitPrice: 800, Quantity: 1, AvailableStock: 5}}

	require.NoError(t, projector.HandleEvent(ctx, nil, makeEvent("e1", cart.EventItemAdded, two)))
	require.NoError(t, projector.HandleEvent(ctx, nil, makeEvent("e2", cart.EventItemsOrdered, left)))

	a, ok := readStore.Get("cart-123")
	require.True(t, ok)
	assert.Equal(t, 2, a.Mutations)
	assert.Equal(t, 1, a.PartialCheckouts)
	assert.Equal(t, 0, a.Clears)
	assert.Equal(t, 1, a.LineCount)
	assert.Equal(t, money.Amount(800), a.Subtotal)
	assert.False(t, a.Cleared)
}

func TestProjector_MutationSequence(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()
	one := []cart.LineItem{{ProductID: "P1", UnitPrice: 4500, Quantity: 1, AvailableStock: 5}}
	three := []cart.LineItem{{ProductID: "P1", UnitPrice: 4500, Quantity: 3, AvailableStock: 5}}

	require.NoError(t, projector.HandleEvent(ctx, nil, makeEvent("e1", cart.EventItemAdded, one)))
	require.NoError(t, projector.HandleEvent(ctx, nil, makeEvent("e2", cart.EventQuantityChanged, three)))
	require.NoError(t, projector.HandleEvent(ctx, nil, makeEvent("e3", cart.EventItemRemoved, []cart.LineItem{})))

	a, _ := readStore.Get("cart-123")
	assert.Equal(t, 3, a.Mutations)
	assert.Equal(t, 1, a.ItemsAdded)
	assert.Equal(t, 1, a.QuantityChanges)
	assert.Equal(t, 1, a.ItemsRemoved)
	assert.Equal(t, 0, a.ItemCount)
	assert.Equal(t, money.Amount(0), a.Total)
	assert.Equal(t, cart.EventItemRemoved, a.LastEventType)
}

func TestProjector_HandleCartCleared(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()
	items := []cart.LineItem{{ProductID: "P1", UnitPrice: 12000, Quantity: 1, AvailableStock: 2}}

	require.NoError(t, projector.HandleEvent(ctx, nil, makeEvent("e1", cart.EventItemAdded, items)))
	require.NoError(t, projector.HandleEvent(ctx, nil, makeEvent("e2", cart.EventCartCleared, []cart.LineItem{})))

	a, _ := readStore.Get("cart-123")
	assert.True(t, a.Cleared)
	assert.Equal(t, 1, a.Clears)
	assert.Equal(t, 0, a.LineCount)
	assert.Equal(t, money.Amount(0), a.ShippingCost)

	// Adding again resets the cleared flag
	require.NoError(t, projector.HandleEvent(ctx, nil, makeEvent("e3", cart.EventItemAdded, items)))
	a, _ = readStore.Get("cart-123")
	assert.False(t, a.Cleared)
}

func TestProjector_IgnoresRedeliveredEvent(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()
	value := makeEvent("e1", cart.EventItemAdded, []cart.LineItem{{ProductID: "P1", UnitPrice: 100, Quantity: 1, AvailableStock: 1}})

	require.NoError(t, projector.HandleEvent(ctx, nil, value))
	require.NoError(t, projector.HandleEvent(ctx, nil, value))

	a, _ := readStore.Get("cart-123")
	assert.Equal(t, 1, a.Mutations)
}

func TestProjector_UsesKeyWhenCartIDMissing(t *testing.T) {
	projector, readStore := newTestProjector()
	value := []byte(`{"id":"e1","event_type":"CartCleared","items":[],"totals":{}}`)

	require.NoError(t, projector.HandleEvent(context.Background(), []byte("cart-from-key"), value))

	_, ok := readStore.Get("cart-from-key")
	assert.True(t, ok)
}

func TestProjector_UnknownEventIgnored(t *testing.T) {
	projector, readStore := newTestProjector()

	err := projector.HandleEvent(context.Background(), nil, makeEvent("e1", "ProductCreated", nil))

	require.NoError(t, err)
	assert.Empty(t, readStore.GetAll())
}

func TestProjector_InvalidJSON(t *testing.T) {
	projector, _ := newTestProjector()

	err := projector.HandleEvent(context.Background(), nil, []byte("not json"))

	assert.Error(t, err)
}
