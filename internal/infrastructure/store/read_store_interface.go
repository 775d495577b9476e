package store

import "github.com/example/storefront-cart/internal/readmodel"

// ReadStoreInterface defines the interface for cart activity storage
type ReadStoreInterface interface {
	// Get retrieves the activity of one cart
	Get(cartID string) (*readmodel.CartActivityReadModel, bool)

	// GetAll retrieves the activity of every known cart
	GetAll() []*readmodel.CartActivityReadModel

	// Upsert applies updateFn to the current activity, or to a fresh one
	// carrying only the cart ID, and stores the result
	Upsert(cartID string, updateFn func(current *readmodel.CartActivityReadModel) *readmodel.CartActivityReadModel)
}
