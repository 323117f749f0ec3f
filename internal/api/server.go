package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"kkmall-be/internal/logger"
	"kkmall-be/internal/middleware"
	"kkmall-be/internal/payment"
	"kkmall-be/internal/product"
)

// Deps carries what the router needs.
type Deps struct {
	Orchestrator Orchestrator
	Gateway      payment.Gateway
	Catalog      product.Service
	JWTSecret    string
}

// NewRouter builds the HTTP surface with the full middleware chain.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS)
	// Auth runs first so the limiter buckets signed-in traffic per
	// user instead of per shared IP.
	r.Use(middleware.AuthMiddleware(deps.JWTSecret))
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	paypay := &paypayHandler{
		orchestrator: deps.Orchestrator,
		gateway:      deps.Gateway,
	}

	if deps.Catalog != nil {
		catalog := &catalogHandler{catalog: deps.Catalog}
		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", catalog.list)
			r.Get("/{id}", catalog.get)
		})
		r.Get("/api/brands", catalog.brands)
		r.Get("/api/categories", catalog.categories)
	}

	r.Route("/api/paypay", func(r chi.Router) {
		// Status polling is read-only and may be called from the
		// payment page before the session cookie lands.
		r.Get("/status/{merchantPaymentId}", paypay.status)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/create", paypay.create)
			r.Post("/refund", paypay.refund)
		})
	})

	return r
}
