package projection

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/storefront-cart/internal/domain/cart"
	"github.com/example/storefront-cart/internal/infrastructure/store"
	"github.com/example/storefront-cart/internal/readmodel"
)

type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

// HandleEvent folds one published cart event into the activity read model.
// Redelivery of the most recently applied event is ignored.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event cart.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}
	if event.CartID == "" {
		event.CartID = string(key)
	}

	log.Printf("[Projector] Received event: %s (cart: %s)", event.Type, event.CartID)

	switch event.Type {
	case cart.EventItemAdded, cart.EventItemRemoved, cart.EventQuantityChanged, cart.EventCartCleared, cart.EventItemsOrdered:
	default:
		return nil
	}

	p.readStore.Upsert(event.CartID, func(a *readmodel.CartActivityReadModel) *readmodel.CartActivityReadModel {
		if event.ID != "" && a.LastEventID == event.ID {
			return nil
		}
		applyEvent(a, event)
		return a
	})
	return nil
}

func applyEvent(a *readmodel.CartActivityReadModel, event cart.Event) {
	a.Mutations++
	switch event.Type {
	case cart.EventItemAdded:
		a.ItemsAdded++
	case cart.EventItemRemoved:
		a.ItemsRemoved++
	case cart.EventQuantityChanged:
		a.QuantityChanges++
	case cart.EventCartCleared:
		a.Clears++
	case cart.EventItemsOrdered:
		a.PartialCheckouts++
	}

	a.LineCount = len(event.Items)
	a.ItemCount = event.Totals.ItemCount
	a.Subtotal = event.Totals.Subtotal
	a.ShippingCost = event.Totals.ShippingCost
	a.Total = event.Totals.Total
	a.Cleared = event.Type == cart.EventCartCleared
	a.LastEventID = event.ID
	a.LastEventType = event.Type
	a.UpdatedAt = event.OccurredAt
}
