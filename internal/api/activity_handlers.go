package api

import (
	"net/http"

	"github.com/example/storefront-cart/internal/infrastructure/store"
	"github.com/go-chi/chi/v5"
)

// ActivityHandlers serve the cart activity read model built by the projector
type ActivityHandlers struct {
	readStore store.ReadStoreInterface
}

func NewActivityHandlers(readStore store.ReadStoreInterface) *ActivityHandlers {
	return &ActivityHandlers{readStore: readStore}
}

func (h *ActivityHandlers) ListActivity(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.readStore.GetAll())
}

func (h *ActivityHandlers) GetActivity(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.readStore.Get(chi.URLParam(r, "cartID"))
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "cart activity not found")
		return
	}
	respondJSON(w, http.StatusOK, activity)
}
