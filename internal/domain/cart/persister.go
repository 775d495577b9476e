package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storefront-cart/internal/infrastructure/store"
)

// Persister writes the cart's items to a KV after each mutation and reads
// them back on restore. Totals are never written.
type Persister struct {
	kv  store.KV
	now func() time.Time
}

func NewPersister(kv store.KV) *Persister {
	return &Persister{kv: kv, now: time.Now}
}

// CartChanged saves the post-mutation items, or deletes the snapshot when
// the cart was cleared.
func (p *Persister) CartChanged(ctx context.Context, event Event) error {
	key := SnapshotKey(event.CartID)
	if event.Type == EventCartCleared {
		return p.kv.Delete(ctx, key)
	}

	data, err := store.EncodeSnapshot(key, event.Items, p.now())
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return p.kv.Save(ctx, key, data)
}

// Load returns the persisted items for a cart. It returns store.ErrNotFound
// when nothing is stored and an error wrapping ErrCorruptedSnapshot when
// the stored value cannot be trusted.
func (p *Persister) Load(ctx context.Context, cartID string) ([]LineItem, error) {
	data, err := p.kv.Load(ctx, SnapshotKey(cartID))
	if err != nil {
		return nil, err
	}

	snap, err := store.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedSnapshot, err)
	}
	if snap.SchemaVersion != store.SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrCorruptedSnapshot, snap.SchemaVersion)
	}

	var items []LineItem
	if err := json.Unmarshal(snap.State, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedSnapshot, err)
	}
	if err := validateItems(items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedSnapshot, err)
	}
	return items, nil
}
