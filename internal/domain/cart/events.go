package cart

import (
	"context"
	"time"

	"github.com/example/storefront-cart/internal/domain/pricing"
)

const (
	EventItemAdded       = "ItemAddedToCart"
	EventItemRemoved     = "ItemRemovedFromCart"
	EventQuantityChanged = "CartItemQuantityChanged"
	EventCartCleared     = "CartCleared"
	// EventItemsOrdered is a partial removal after checkout; lines changed
	// while the order was in flight remain.
	EventItemsOrdered    = "CartItemsOrdered"
)

// Event describes one completed mutation together with the resulting
// cart contents and totals.
type Event struct {
	ID         string         `json:"id"`
	CartID     string         `json:"cart_id"`
	Type       string         `json:"event_type"`
	ProductID  string         `json:"product_id,omitempty"`
	Quantity   int            `json:"quantity"`
	Items      []LineItem     `json:"items"`
	Totals     pricing.Totals `json:"totals"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Observer is notified after every mutation. Errors are logged by the
// store and never undo the mutation.
type Observer interface {
	CartChanged(ctx context.Context, event Event) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event) error

func (f ObserverFunc) CartChanged(ctx context.Context, event Event) error {
	return f(ctx, event)
}
