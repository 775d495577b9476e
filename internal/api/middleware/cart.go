package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode"

	"github.com/example/storefront-cart/internal/domain/cart"
	"github.com/go-chi/chi/v5"
)

const maxCartIDLength = 128

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}

type contextKey string

const (
	CartContextKey contextKey = "cart"
)

// ValidCartID reports whether id can be used as a cart identifier
func ValidCartID(id string) bool {
	if id == "" || len(id) > maxCartIDLength {
		return false
	}
	return !strings.ContainsFunc(id, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || r == '/'
	})
}

// LoadCart resolves the {cartID} route parameter through the registry and
// adds the cart store to the request context
func LoadCart(registry *cart.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartID := chi.URLParam(r, "cartID")
			if !ValidCartID(cartID) {
				respondError(w, "invalid_cart_id", "invalid cart id", http.StatusBadRequest)
				return
			}

			c, err := registry.Get(r.Context(), cartID)
			if errors.Is(err, cart.ErrPersistenceFailure) {
				log.Printf("[API] Cart %s unavailable: %v", cartID, err)
				respondError(w, "cart_unavailable", "cart storage is unavailable, try again", http.StatusServiceUnavailable)
				return
			}
			if err != nil {
				respondError(w, "invalid_cart_id", err.Error(), http.StatusBadRequest)
				return
			}

			ctx := context.WithValue(r.Context(), CartContextKey, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CartFromContext retrieves the cart store loaded by LoadCart
func CartFromContext(ctx context.Context) (*cart.Store, bool) {
	c, ok := ctx.Value(CartContextKey).(*cart.Store)
	return c, ok
}
