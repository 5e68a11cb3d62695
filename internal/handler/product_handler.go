package handler

import (
	"net/http"

	"foodcart/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAvailable(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Banners handles GET /api/banners requests.
func (h *ProductHandler) Banners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.service.Banners(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve banners", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, banners)
}
