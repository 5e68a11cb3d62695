package router

import (
	"net/http"

	"foodcart/internal/handler"
	"foodcart/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	managerHandler *handler.ManagerHandler,
	jwtSecret string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: RequestID -> Recovery -> Logging -> CORS
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.StripSlashes)

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", productHandler.List)
		r.Get("/banners", productHandler.Banners)
		r.Post("/order", orderHandler.Register)
		r.Get("/order/{id}", orderHandler.GetByID)
	})

	r.Route("/manager", func(r chi.Router) {
		r.Use(middleware.RequireManager(jwtSecret, logger))

		r.Get("/restaurants", managerHandler.Restaurants)
		r.Get("/products", managerHandler.Products)
		r.Get("/orders", managerHandler.Orders)
		r.Post("/orders/{id}/restaurant", managerHandler.AssignRestaurant)
		r.Patch("/orders/{id}/status", managerHandler.UpdateStatus)
	})

	return r
}
