package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodcart/internal/model"
	"foodcart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Register handles POST /api/order requests. Every rejection, including a
// malformed body, is answered with 404 and a list of error objects.
func (h *OrderHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.OrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn().Err(err).Msg("malformed order body")
		writeJSON(w, http.StatusNotFound, []model.ErrorResponse{{Error: "invalid request body"}})
		return
	}

	order, err := h.service.Register(r.Context(), &payload)
	if err != nil {
		if verrs, ok := service.IsValidationError(err); ok {
			writeJSON(w, http.StatusNotFound, verrs.Responses())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetByID handles GET /api/order/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to retrieve order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
