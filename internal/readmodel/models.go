package readmodel

import (
	"time"

	"github.com/example/storefront-cart/internal/money"
)

// CartActivityReadModel summarises the event history of one cart
type CartActivityReadModel struct {
	CartID           string       `json:"cart_id"`
	LineCount        int          `json:"line_count"`
	ItemCount        int          `json:"item_count"`
	Subtotal         money.Amount `json:"subtotal"`
	ShippingCost     money.Amount `json:"shipping_cost"`
	Total            money.Amount `json:"total"`
	Mutations        int          `json:"mutations"`
	ItemsAdded       int          `json:"items_added"`
	ItemsRemoved     int          `json:"items_removed"`
	QuantityChanges  int          `json:"quantity_changes"`
	Clears           int          `json:"clears"`
	PartialCheckouts int          `json:"partial_checkouts"` // checkouts that left items behind
	Cleared          bool         `json:"cleared"`
	LastEventID      string       `json:"last_event_id"`
	LastEventType    string       `json:"last_event_type"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
