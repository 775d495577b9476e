package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/example/storefront-cart/internal/domain/pricing"
	"github.com/example/storefront-cart/internal/infrastructure/store"
	"github.com/google/uuid"
)

// Store is the single source of truth for one cart. Every mutation is
// applied atomically, re-priced, persisted and then announced to observers
// before it returns.
type Store struct {
	mu        sync.Mutex
	id        string
	cfg       pricing.Config
	persister *Persister
	observers []Observer
	now       func() time.Time

	items  []LineItem
	totals pricing.Totals
}

type Option func(*Store)

// WithObserver registers an observer notified after each mutation.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observers = append(s.observers, o)
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty cart persisted to kv. Call Restore before use
// to pick up a previously saved cart.
func NewStore(cartID string, cfg pricing.Config, kv store.KV, opts ...Option) *Store {
	s := &Store{
		id:        cartID,
		cfg:       cfg,
		persister: NewPersister(kv),
		now:       time.Now,
		items:     []LineItem{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.totals = pricing.ComputeTotals(nil, cfg)
	return s
}

func (s *Store) ID() string { return s.id }

func (s *Store) Config() pricing.Config { return s.cfg }

// Restore loads the persisted cart. Missing or corrupted data yields an
// empty cart; a storage failure is reported as a warning. Totals are
// always recomputed from the restored items.
func (s *Store) Restore(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	items, err := s.persister.Load(ctx, s.id)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		items = nil
	case errors.Is(err, ErrCorruptedSnapshot):
		log.Printf("[Cart] Discarding corrupted snapshot for cart %s: %v", s.id, err)
		items = nil
	default:
		log.Printf("[Cart] Failed to load cart %s: %v", s.id, err)
		out.Warning = &PersistenceError{CartID: s.id, Op: "load", Err: err}
		items = nil
	}

	s.items = cloneItems(items)
	s.totals = pricing.ComputeTotals(pricingLines(s.items), s.cfg)
	out.Totals = s.totals
	return out
}

// AddItem adds quantity units of the candidate. Adding a product already in
// the cart merges into its line. Requests above the stock snapshot are
// clamped to it rather than rejected; Outcome.Clamped reports that.
func (s *Store) AddItem(ctx context.Context, c Candidate, quantity int) (Outcome, error) {
	if err := c.validate(); err != nil {
		return Outcome{}, err
	}
	if quantity < 1 {
		return Outcome{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := cloneItems(s.items)
	clamped := false
	var newQty int

	if i := indexOf(items, c.ProductID); i >= 0 {
		existing := items[i].Quantity
		if quantity > c.AvailableStock-existing {
			newQty = c.AvailableStock
			clamped = true
		} else {
			newQty = existing + quantity
		}
		items[i].Quantity = newQty
		items[i].AvailableStock = c.AvailableStock
	} else {
		newQty = min(quantity, c.AvailableStock)
		clamped = newQty < quantity
		items = append(items, c.lineItem(newQty))
	}
	if err := pricing.CheckLimits(pricingLines(items)); err != nil {
		return Outcome{}, err
	}

	out := s.commit(ctx, items, Event{
		Type:      EventItemAdded,
		ProductID: c.ProductID,
		Quantity:  newQty,
	})
	out.Clamped = clamped
	return out, nil
}

// RemoveItem drops the product's line. Removing an absent product is not
// an error: totals are recomputed and persisted, but observers are not
// notified since nothing changed.
func (s *Store) RemoveItem(ctx context.Context, productID string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := cloneItems(s.items)
	i := indexOf(items, productID)
	if i < 0 {
		out, _ := s.apply(ctx, items, Event{Type: EventItemRemoved, ProductID: productID})
		return out, nil
	}

	items = append(items[:i], items[i+1:]...)
	return s.commit(ctx, items, Event{Type: EventItemRemoved, ProductID: productID}), nil
}

// SetQuantity sets the product's quantity to n. Zero removes the line.
// Unlike AddItem, a target above the stock snapshot is rejected.
func (s *Store) SetQuantity(ctx context.Context, productID string, n int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, productID)
	if i < 0 {
		return Outcome{}, ErrItemNotFound
	}
	if n < 0 {
		return Outcome{}, ErrInvalidQuantity
	}

	items := cloneItems(s.items)
	if n == 0 {
		items = append(items[:i], items[i+1:]...)
		return s.commit(ctx, items, Event{Type: EventItemRemoved, ProductID: productID}), nil
	}
	if n > items[i].AvailableStock {
		return Outcome{}, &StockError{
			ProductID: productID,
			Requested: n,
			Available: items[i].AvailableStock,
		}
	}

	items[i].Quantity = n
	if err := pricing.CheckLimits(pricingLines(items)); err != nil {
		return Outcome{}, err
	}
	return s.commit(ctx, items, Event{
		Type:      EventQuantityChanged,
		ProductID: productID,
		Quantity:  n,
	}), nil
}

// Clear empties the cart and removes its persisted snapshot.
func (s *Store) Clear(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, []LineItem{}, Event{Type: EventCartCleared})
}

// RemoveOrdered takes the ordered quantities out of the cart in one step.
// Lines added or raised after the order was built keep the difference.
// When nothing is left the cart is cleared as by Clear.
func (s *Store) RemoveOrdered(ctx context.Context, lines []OrderLine) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := make(map[string]int, len(lines))
	for _, l := range lines {
		ordered[l.ProductID] += l.Quantity
	}

	items := make([]LineItem, 0, len(s.items))
	changed := false
	for _, it := range s.items {
		q, ok := ordered[it.ProductID]
		if !ok {
			items = append(items, it)
			continue
		}
		changed = true
		if it.Quantity > q {
			it.Quantity -= q
			items = append(items, it)
		}
	}

	if !changed {
		return Outcome{Totals: s.totals}
	}
	if len(items) == 0 {
		return s.commit(ctx, []LineItem{}, Event{Type: EventCartCleared})
	}
	return s.commit(ctx, items, Event{Type: EventItemsOrdered})
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Item returns the line for productID.
func (s *Store) Item(productID string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.items, productID); i >= 0 {
		return s.items[i], true
	}
	return LineItem{}, false
}

// Contains reports whether productID is in the cart.
func (s *Store) Contains(productID string) bool {
	_, ok := s.Item(productID)
	return ok
}

func (s *Store) Totals() pricing.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		CartID: s.id,
		Items:  cloneItems(s.items),
		Totals: s.totals,
	}
}

// OrderLines maps the cart to product/quantity pairs for an order request.
func (s *Store) OrderLines() []OrderLine {
	return s.Snapshot().OrderLines()
}

// commit installs items as the new state and runs the post-mutation hooks.
// Must be called with s.mu held.
func (s *Store) commit(ctx context.Context, items []LineItem, event Event) Outcome {
	out, event := s.apply(ctx, items, event)

	for _, o := range s.observers {
		if err := o.CartChanged(ctx, event); err != nil {
			log.Printf("[Cart] Observer failed for cart %s (%s): %v", s.id, event.Type, err)
		}
	}
	return out
}

// apply installs and persists items without notifying observers.
// Must be called with s.mu held.
func (s *Store) apply(ctx context.Context, items []LineItem, event Event) (Outcome, Event) {
	s.items = items
	s.totals = pricing.ComputeTotals(pricingLines(items), s.cfg)

	event.ID = uuid.New().String()
	event.CartID = s.id
	event.Items = cloneItems(items)
	event.Totals = s.totals
	event.OccurredAt = s.now()

	out := Outcome{Totals: s.totals}
	if err := s.persister.CartChanged(ctx, event); err != nil {
		log.Printf("[Cart] Failed to persist cart %s: %v", s.id, err)
		out.Warning = &PersistenceError{CartID: s.id, Op: "save", Err: err}
	}
	return out, event
}
