package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the kiosk HTTP surface. The SSE routes live
// outside the request timeout so live views are not cut off mid-stream.
func NewRouter(cart *CartHandler, orders *OrdersHandler, checkout *CheckoutHandler, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Get("/cart", cart.GetCart)
			r.Post("/cart/items", cart.AddItem)
			r.Put("/cart/items/{product_id}", cart.UpdateQuantity)
			r.Post("/checkout", checkout.Checkout)
			r.Get("/orders", orders.ListOrders)
			r.Get("/orders/{invoice_no}", orders.GetOrder)
		})

		r.Get("/cart/stream", cart.StreamCart)
		r.Get("/orders/stream", orders.StreamOrders)
	})

	return r
}
