package api

import (
	"net/http"
	"time"

	"github.com/example/storefront-cart/internal/api/middleware"
	"github.com/example/storefront-cart/internal/domain/cart"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxRequestBodySize = 1 << 20 // 1MB

type RouterConfig struct {
	Handlers       *Handlers
	Registry       *cart.Registry
	RequestTimeout time.Duration
	// AllowedOrigins defaults to any origin when empty
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r := newBaseRouter(cfg.RequestTimeout, cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key"},
		ExposedHeaders: []string{WarningHeader},
		MaxAge:         600,
	}))
	h := cfg.Handlers

	r.Route("/carts/{cartID}", func(r chi.Router) {
		r.Use(middleware.LoadCart(cfg.Registry))

		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.SetQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})

	return otelhttp.NewHandler(r, "cart-api")
}

// NewActivityRouter exposes the projector's read model
func NewActivityRouter(handlers *ActivityHandlers, requestTimeout time.Duration) http.Handler {
	r := newBaseRouter(requestTimeout)

	r.Get("/activity", handlers.ListActivity)
	r.Get("/activity/{cartID}", handlers.GetActivity)

	return otelhttp.NewHandler(r, "cart-activity")
}

// newBaseRouter installs the shared middleware stack, then extra, and the
// health check
func newBaseRouter(requestTimeout time.Duration, extra ...func(http.Handler) http.Handler) chi.Router {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(chimw.RequestSize(maxRequestBodySize))
	r.Use(extra...)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}
