// Package handler exposes the meal catalog and order operations over HTTP.
package handler

import (
	"net/http"
	"strings"

	"github.com/xenking/mealbox/internal/domain/addon"
	"github.com/xenking/mealbox/internal/domain/meal"
	"github.com/xenking/mealbox/internal/domain/order"
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative meal image paths. When empty,
	// paths are returned as stored.
	ImageBaseURL string
}

// Handler serves the /api routes, delegating business rules to the catalog
// and order services and reading catalogs straight from their repositories.
type Handler struct {
	meals        meal.Reader
	catalog      *meal.Service
	addOns       addon.Repository
	orders       *order.Service
	security     *SecurityHandler
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	meals meal.Reader,
	catalog *meal.Service,
	addOns addon.Repository,
	orders *order.Service,
	security *SecurityHandler,
) *Handler {
	return &Handler{
		meals:        meals,
		catalog:      catalog,
		addOns:       addOns,
		orders:       orders,
		security:     security,
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
	}
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/meals", h.ListMeals)
	mux.HandleFunc("GET /api/meals/{id}", h.GetMeal)
	mux.HandleFunc("GET /api/add-ons", h.ListAddOns)

	mux.Handle("POST /api/meals", h.security.Require(h.CreateMeal))
	mux.Handle("PUT /api/meals/{id}", h.security.Require(h.UpdateMeal))
	mux.Handle("DELETE /api/meals/{id}", h.security.Require(h.DeleteMeal))

	mux.Handle("POST /api/orders/quote", h.security.Require(h.QuoteOrder))
	mux.Handle("POST /api/orders", h.security.Require(h.PlaceOrder))
	mux.Handle("GET /api/orders", h.security.Require(h.ListOrders))
	mux.Handle("GET /api/orders/{id}", h.security.Require(h.GetOrder))
	mux.Handle("PATCH /api/orders/{id}", h.security.Require(h.UpdateOrderStatus))
	mux.Handle("POST /api/orders/{id}/cancel", h.security.Require(h.CancelOrder))
}

func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || path == "" || strings.Contains(path, "://") {
		return path
	}
	return h.imageBaseURL + "/" + strings.TrimLeft(path, "/")
}
