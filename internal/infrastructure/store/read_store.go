package store

import (
	"sort"
	"sync"

	"github.com/example/storefront-cart/internal/readmodel"
)

// ReadStore is an in-memory cart activity store
type ReadStore struct {
	mu   sync.RWMutex
	data map[string]readmodel.CartActivityReadModel
}

func NewReadStore() *ReadStore {
	return &ReadStore{
		data: make(map[string]readmodel.CartActivityReadModel),
	}
}

// Get retrieves a copy of the cart's activity
func (rs *ReadStore) Get(cartID string) (*readmodel.CartActivityReadModel, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	a, ok := rs.data[cartID]
	if !ok {
		return nil, false
	}
	return &a, true
}

// GetAll returns every cart ordered by cart ID
func (rs *ReadStore) GetAll() []*readmodel.CartActivityReadModel {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	items := make([]*readmodel.CartActivityReadModel, 0, len(rs.data))
	for _, a := range rs.data {
		items = append(items, &a)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CartID < items[j].CartID })
	return items
}

func (rs *ReadStore) Upsert(cartID string, updateFn func(current *readmodel.CartActivityReadModel) *readmodel.CartActivityReadModel) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	current, ok := rs.data[cartID]
	if !ok {
		current = readmodel.CartActivityReadModel{CartID: cartID}
	}
	if updated := updateFn(&current); updated != nil {
		rs.data[cartID] = *updated
	}
}
