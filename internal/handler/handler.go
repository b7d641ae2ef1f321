// Package handler exposes the storefront HTTP API: product catalog, per
// session shopping carts with computed pricing, order placement, service
// quotations (devis) and the store settings that drive the pricing policy.
package handler

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/weenmaint/storefront-api/internal/domain/auth"
	"github.com/weenmaint/storefront-api/internal/domain/cart"
	"github.com/weenmaint/storefront-api/internal/domain/catalog"
	"github.com/weenmaint/storefront-api/internal/domain/devis"
	"github.com/weenmaint/storefront-api/internal/domain/order"
	"github.com/weenmaint/storefront-api/internal/domain/product"
	"github.com/weenmaint/storefront-api/internal/domain/settings"
)

const instrumentationName = "github.com/weenmaint/storefront-api/internal/handler"

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product and
	// service responses. When empty, paths are returned as stored.
	ImageBaseURL string
	// APIKeyPepper is the HMAC key for hashing admin API keys.
	APIKeyPepper []byte
}

// Deps bundles the domain dependencies of the Handler.
type Deps struct {
	Products     product.Repository
	Services     catalog.Repository
	Settings     settings.Repository
	APIKeys      auth.Repository
	Carts        *cart.Store
	OrderService *order.Service
	DevisService *devis.Service
}

// Handler serves the storefront API on top of the domain services.
type Handler struct {
	cfg  Config
	deps Deps

	tracer       trace.Tracer
	ordersPlaced metric.Int64Counter
}

// New constructs a Handler with the required domain dependencies.
func New(cfg Config, deps Deps) (*Handler, error) {
	ordersPlaced, err := otel.Meter(instrumentationName).Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Number of orders placed"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		cfg:          cfg,
		deps:         deps,
		tracer:       otel.Tracer(instrumentationName),
		ordersPlaced: ordersPlaced,
	}, nil
}

// Routes returns the API route table. Admin endpoints are wrapped with the
// API key requirement.
func (h *Handler) Routes() http.Handler {
	admin := h.requireAPIKey

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.Handle("POST /api/products", admin(h.createProduct))
	mux.Handle("PUT /api/products/{id}", admin(h.updateProduct))
	mux.Handle("DELETE /api/products/{id}", admin(h.deleteProduct))

	mux.HandleFunc("GET /api/services", h.listServices)
	mux.HandleFunc("GET /api/services/{slug}", h.getService)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{productID}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.Handle("GET /api/orders", admin(h.listOrders))
	mux.Handle("PATCH /api/orders/{id}/status", admin(h.updateOrderStatus))

	mux.HandleFunc("POST /api/devis", h.createDevis)
	mux.Handle("GET /api/devis", admin(h.listDevis))
	mux.Handle("GET /api/devis/{id}", admin(h.getDevis))
	mux.Handle("PATCH /api/devis/{id}/status", admin(h.updateDevisStatus))

	mux.HandleFunc("GET /api/settings", h.getSettings)
	mux.Handle("PUT /api/settings", admin(h.updateSettings))

	return mux
}

// imageURL resolves a stored image path against the configured base URL.
func (h *Handler) imageURL(path string) string {
	if h.cfg.ImageBaseURL == "" || path == "" {
		return path
	}
	return h.cfg.ImageBaseURL + path
}
