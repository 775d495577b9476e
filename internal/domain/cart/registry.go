package cart

import (
	"context"
	"log"
	"sync"

	"github.com/example/storefront-cart/internal/domain/pricing"
	"github.com/example/storefront-cart/internal/infrastructure/store"
	"golang.org/x/sync/singleflight"
)

// Registry hands out one Store per cart ID, restoring it from storage on
// first use.
type Registry struct {
	cfg  pricing.Config
	kv   store.KV
	opts []Option

	mu     sync.RWMutex
	stores map[string]*Store
	sfg    singleflight.Group // Collapses concurrent restores of the same cart
}

func NewRegistry(cfg pricing.Config, kv store.KV, opts ...Option) *Registry {
	return &Registry{
		cfg:    cfg,
		kv:     kv,
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// Get returns the store for cartID, restoring it if this is the first
// access in the process. A storage failure during restore is returned and
// nothing is cached, so the next access retries instead of overwriting the
// saved cart with an empty one.
func (r *Registry) Get(ctx context.Context, cartID string) (*Store, error) {
	if cartID == "" {
		return nil, ErrInvalidCartID
	}

	r.mu.RLock()
	s, ok := r.stores[cartID]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	// Shared by every waiter, so it must outlive the first caller's request
	restoreCtx := context.WithoutCancel(ctx)
	v, err, _ := r.sfg.Do(cartID, func() (interface{}, error) {
		r.mu.RLock()
		existing, ok := r.stores[cartID]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}

		s := NewStore(cartID, r.cfg, r.kv, r.opts...)
		if out := s.Restore(restoreCtx); out.Warning != nil {
			log.Printf("[Cart] Not caching cart %s after load failure: %v", cartID, out.Warning)
			return nil, out.Warning
		}

		r.mu.Lock()
		r.stores[cartID] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Store), nil
}

// Len returns the number of carts loaded in this process
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}
