package cart

import (
	"errors"
	"fmt"

	"github.com/example/storefront-cart/internal/domain/pricing"
	"github.com/example/storefront-cart/internal/money"
)

var (
	ErrInvalidCartID   = errors.New("cart_id is required")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrExceedsStock    = errors.New("quantity exceeds available stock")
	ErrItemNotFound    = errors.New("item not found in cart")

	ErrPersistenceFailure = errors.New("cart could not be persisted")
	ErrCorruptedSnapshot  = errors.New("persisted cart is corrupted")
)

// LineItem is one product entry in the cart. Name, price, image, SKU and
// stock are snapshots taken when the product was added.
type LineItem struct {
	ProductID      string       `json:"product_id"`
	Name           string       `json:"name"`
	UnitPrice      money.Amount `json:"unit_price"`
	ImageRef       string       `json:"image_ref,omitempty"`
	SKULabel       string       `json:"sku_label,omitempty"`
	Quantity       int          `json:"quantity"`
	AvailableStock int          `json:"available_stock"`
}

// LineTotal is UnitPrice multiplied by Quantity.
func (li LineItem) LineTotal() money.Amount {
	return li.UnitPrice.Mul(li.Quantity)
}

// Candidate is the catalog snapshot of a product about to be added.
type Candidate struct {
	ProductID      string       `json:"product_id"`
	Name           string       `json:"name"`
	UnitPrice      money.Amount `json:"unit_price"`
	ImageRef       string       `json:"image_ref,omitempty"`
	SKULabel       string       `json:"sku_label,omitempty"`
	AvailableStock int          `json:"available_stock"`
}

func (c Candidate) validate() error {
	if c.ProductID == "" {
		return ErrInvalidProduct
	}
	if c.UnitPrice < 0 {
		return ErrInvalidPrice
	}
	if c.AvailableStock <= 0 {
		return ErrOutOfStock
	}
	return nil
}

func (c Candidate) lineItem(quantity int) LineItem {
	return LineItem{
		ProductID:      c.ProductID,
		Name:           c.Name,
		UnitPrice:      c.UnitPrice,
		ImageRef:       c.ImageRef,
		SKULabel:       c.SKULabel,
		Quantity:       quantity,
		AvailableStock: c.AvailableStock,
	}
}

// OrderLine is the checkout view of a line item.
type OrderLine struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// Snapshot is the full cart state as seen by readers.
type Snapshot struct {
	CartID string         `json:"cart_id"`
	Items  []LineItem     `json:"items"`
	Totals pricing.Totals `json:"totals"`
}

// OrderLines maps the items to product/quantity pairs.
func (s Snapshot) OrderLines() []OrderLine {
	lines := make([]OrderLine, len(s.Items))
	for i, it := range s.Items {
		lines[i] = OrderLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return lines
}

// Outcome is the result of a successful operation.
type Outcome struct {
	Totals pricing.Totals
	// Clamped is set when AddItem reduced the request to the stock bound.
	Clamped bool
	// Warning is non-nil when the new state could not be persisted. The
	// in-memory state is still authoritative.
	Warning error
}

// StockError reports a SetQuantity target above the stock snapshot.
type StockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("only %d of %s available, requested %d", e.Available, e.ProductID, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrExceedsStock }

// PersistenceError wraps a storage failure. It matches ErrPersistenceFailure.
type PersistenceError struct {
	CartID string
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart %s: %s failed: %v", e.CartID, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistenceFailure, e.Err}
}

// SnapshotKey returns the storage key for a cart.
func SnapshotKey(cartID string) string {
	return "cart-" + cartID
}

// validateItems checks restored items against the cart invariants.
func validateItems(items []LineItem) error {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it.ProductID == "" {
			return fmt.Errorf("item %d: %w", i, ErrInvalidProduct)
		}
		if _, dup := seen[it.ProductID]; dup {
			return fmt.Errorf("item %d: duplicate product %s", i, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
		if it.UnitPrice < 0 {
			return fmt.Errorf("item %d: %w", i, ErrInvalidPrice)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("item %d: %w", i, ErrInvalidQuantity)
		}
		if it.Quantity > it.AvailableStock {
			return fmt.Errorf("item %d: %w", i, ErrExceedsStock)
		}
	}
	return pricing.CheckLimits(pricingLines(items))
}

func pricingLines(items []LineItem) []pricing.Line {
	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		lines[i] = pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	return lines
}

func indexOf(items []LineItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return []LineItem{}
	}
	return append([]LineItem(nil), items...)
}
