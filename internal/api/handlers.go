package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/example/storefront-cart/internal/api/middleware"
	"github.com/example/storefront-cart/internal/domain/cart"
	"github.com/example/storefront-cart/internal/domain/checkout"
	"github.com/example/storefront-cart/internal/domain/pricing"
	"github.com/example/storefront-cart/internal/money"
	"github.com/go-chi/chi/v5"
)

// WarningHeader carries a persistence warning on otherwise successful responses
const WarningHeader = "X-Cart-Warning"

type Handlers struct {
	checkout *checkout.Service
	currency string
}

func NewHandlers(checkoutSvc *checkout.Service) *Handlers {
	return &Handlers{
		checkout: checkoutSvc,
		currency: money.DefaultCurrency,
	}
}

type AddItemRequest struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPrice      string `json:"unit_price"`
	ImageRef       string `json:"image_ref"`
	SKULabel       string `json:"sku_label"`
	AvailableStock int    `json:"available_stock"`
	Quantity       *int   `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type CheckoutRequest struct {
	ShippingAddress checkout.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                   `json:"paymentMethod"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type LineView struct {
	cart.LineItem
	LineTotal        money.Amount `json:"line_total"`
	UnitPriceDisplay string       `json:"unit_price_display"`
	LineTotalDisplay string       `json:"line_total_display"`
}

type DisplayTotals struct {
	Subtotal     string `json:"subtotal"`
	ShippingCost string `json:"shipping_cost"`
	Total        string `json:"total"`
	Remaining    string `json:"free_shipping_remaining"`
}

// CartView is the response body for every cart endpoint
type CartView struct {
	CartID string     `json:"cart_id"`
	Items  []LineView `json:"items"`
	pricing.Totals
	FreeShipping pricing.Progress `json:"free_shipping"`
	Display      DisplayTotals    `json:"display"`
	Clamped      bool             `json:"clamped,omitempty"`
	Warning      string           `json:"warning,omitempty"`
}

type CheckoutResponse struct {
	OrderID string         `json:"order_id"`
	Totals  pricing.Totals `json:"totals"`
	Total   string         `json:"total_display"`
	Warning string         `json:"warning,omitempty"`
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.CartFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "cart not loaded")
		return
	}
	respondJSON(w, http.StatusOK, h.cartView(c, cart.Outcome{}))
}

func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.CartFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "cart not loaded")
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	price, err := money.Parse(req.UnitPrice)
	if err != nil {
		respondCartError(w, cart.ErrInvalidPrice)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	out, err := c.AddItem(r.Context(), cart.Candidate{
		ProductID:      req.ProductID,
		Name:           req.Name,
		UnitPrice:      price,
		ImageRef:       req.ImageRef,
		SKULabel:       req.SKULabel,
		AvailableStock: req.AvailableStock,
	}, quantity)
	if err != nil {
		respondCartError(w, err)
		return
	}

	h.respondCart(w, c, out)
}

func (h *Handlers) SetQuantity(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.CartFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "cart not loaded")
		return
	}

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "quantity is required")
		return
	}

	out, err := c.SetQuantity(r.Context(), chi.URLParam(r, "productID"), *req.Quantity)
	if err != nil {
		respondCartError(w, err)
		return
	}

	h.respondCart(w, c, out)
}

func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.CartFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "cart not loaded")
		return
	}

	out, err := c.RemoveItem(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		respondCartError(w, err)
		return
	}

	h.respondCart(w, c, out)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.CartFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "cart not loaded")
		return
	}

	h.respondCart(w, c, c.Clear(r.Context()))
}

// Checkout Handlers

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.CartFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "cart not loaded")
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	receipt, err := h.checkout.PlaceOrder(r.Context(), c, req.ShippingAddress,
		checkout.PaymentMethod(req.PaymentMethod), r.Header.Get("Idempotency-Key"))
	if err != nil {
		respondCheckoutError(w, err)
		return
	}

	resp := CheckoutResponse{
		OrderID: receipt.OrderID,
		Totals:  receipt.Totals,
		Total:   receipt.Totals.Total.Format(h.currency),
	}
	if receipt.Warning != nil {
		resp.Warning = receipt.Warning.Error()
		w.Header().Set(WarningHeader, resp.Warning)
	}
	respondJSON(w, http.StatusCreated, resp)
}

// Helper functions

func (h *Handlers) cartView(c *cart.Store, out cart.Outcome) CartView {
	snapshot := c.Snapshot()
	progress := pricing.FreeShippingProgress(snapshot.Totals.Subtotal, c.Config())

	items := make([]LineView, len(snapshot.Items))
	for i, it := range snapshot.Items {
		items[i] = LineView{
			LineItem:         it,
			LineTotal:        it.LineTotal(),
			UnitPriceDisplay: it.UnitPrice.Format(h.currency),
			LineTotalDisplay: it.LineTotal().Format(h.currency),
		}
	}

	view := CartView{
		CartID:       snapshot.CartID,
		Items:        items,
		Totals:       snapshot.Totals,
		FreeShipping: progress,
		Display: DisplayTotals{
			Subtotal:     snapshot.Totals.Subtotal.Format(h.currency),
			ShippingCost: snapshot.Totals.ShippingCost.Format(h.currency),
			Total:        snapshot.Totals.Total.Format(h.currency),
			Remaining:    progress.Remaining.Format(h.currency),
		},
		Clamped: out.Clamped,
	}
	if out.Warning != nil {
		view.Warning = out.Warning.Error()
	}
	return view
}

func (h *Handlers) respondCart(w http.ResponseWriter, c *cart.Store, out cart.Outcome) {
	view := h.cartView(c, out)
	if view.Warning != "" {
		w.Header().Set(WarningHeader, view.Warning)
	}
	respondJSON(w, http.StatusOK, view)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondCartError maps cart and checkout validation errors to HTTP statuses
func respondCartError(w http.ResponseWriter, err error) {
	var stockErr *cart.StockError
	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   err.Error(),
			Code:    "exceeds_stock",
			Details: stockErr.ProductID,
		})
	case errors.Is(err, cart.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", err.Error())
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, cart.ErrInvalidProduct):
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
	case errors.Is(err, cart.ErrInvalidPrice):
		respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, pricing.ErrTotalTooLarge):
		respondError(w, http.StatusUnprocessableEntity, "total_too_large", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrInvalidAddress):
		respondError(w, http.StatusBadRequest, "invalid_address", err.Error())
	case errors.Is(err, checkout.ErrInvalidPhone):
		respondError(w, http.StatusBadRequest, "invalid_phone", err.Error())
	case errors.Is(err, checkout.ErrInvalidPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
	default:
		log.Printf("[API] Unexpected error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// respondCheckoutError treats anything that is not a validation error as an
// order API failure
func respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidAddress),
		errors.Is(err, checkout.ErrInvalidPhone),
		errors.Is(err, checkout.ErrInvalidPaymentMethod):
		respondCartError(w, err)
		return
	}

	var submitErr *checkout.SubmitError
	if errors.As(err, &submitErr) {
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   submitErr.Message,
			Code:    "order_rejected",
			Details: http.StatusText(submitErr.StatusCode),
		})
		return
	}
	respondError(w, http.StatusBadGateway, "order_api_unavailable", err.Error())
}
