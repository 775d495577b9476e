package store

import (
	"sync"
	"testing"

	"github.com/example/storefront-cart/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStore_UpsertCreatesWithCartID(t *testing.T) {
	rs := NewReadStore()

	rs.Upsert("cart-1", func(current *readmodel.CartActivityReadModel) *readmodel.CartActivityReadModel {
		assert.Equal(t, "cart-1", current.CartID)
		current.Mutations++
		return current
	})

	a, ok := rs.Get("cart-1")
	require.True(t, ok)
	assert.Equal(t, 1, a.Mutations)
}

func TestReadStore_GetReturnsCopy(t *testing.T) {
	rs := NewReadStore()
	rs.Upsert("cart-1", func(c *readmodel.CartActivityReadModel) *readmodel.CartActivityReadModel {
		c.Mutations = 3
		return c
	})

	a, _ := rs.Get("cart-1")
	a.Mutations = 99

	again, _ := rs.Get("cart-1")
	assert.Equal(t, 3, again.Mutations)
}

func TestReadStore_UpsertNilLeavesStoreUntouched(t *testing.T) {
	rs := NewReadStore()

	rs.Upsert("cart-1", func(*readmodel.CartActivityReadModel) *readmodel.CartActivityReadModel { return nil })

	_, ok := rs.Get("cart-1")
	assert.False(t, ok)
}

func TestReadStore_GetAllSorted(t *testing.T) {
	rs := NewReadStore()
	for _, id := range []string{"c", "a", "b"} {
		rs.Upsert(id, func(c *readmodel.CartActivityReadModel) *readmodel.CartActivityReadModel { return c })
	}

	all := rs.GetAll()

	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].CartID)
	assert.Equal(t, "b", all[1].CartID)
	assert.Equal(t, "c", all[2].CartID)
}

func TestReadStore_ConcurrentUpserts(t *testing.T) {
	rs := NewReadStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rs.Upsert("cart-1", func(c *readmodel.CartActivityReadModel) *readmodel.CartActivityReadModel {
				c.Mutations++
				return c
			})
		}()
	}
	wg.Wait()

	a, ok := rs.Get("cart-1")
	require.True(t, ok)
	assert.Equal(t, 50, a.Mutations)
}
