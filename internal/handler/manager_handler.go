package handler

import (
	"embed"
	"encoding/json"
	"html/template"
	"mime"
	"net/http"
	"strconv"

	"foodcart/internal/model"
	"foodcart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ManagerHandler serves the staff dashboard.
type ManagerHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewManagerHandler creates a new dashboard handler.
func NewManagerHandler(service service.DashboardService, logger zerolog.Logger) *ManagerHandler {
	return &ManagerHandler{
		service: service,
		logger:  logger.With().Str("handler", "manager").Logger(),
	}
}

// Restaurants handles GET /manager/restaurants.
func (h *ManagerHandler) Restaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.service.Restaurants(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve restaurants", h.logger)
		return
	}

	h.render(w, r, "restaurants", restaurants)
}

// Products handles GET /manager/products.
func (h *ManagerHandler) Products(w http.ResponseWriter, r *http.Request) {
	grid, err := h.service.AvailabilityGrid(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve products", h.logger)
		return
	}

	h.render(w, r, "products", grid)
}

// Orders handles GET /manager/orders.
func (h *ManagerHandler) Orders(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.service.OrderAssignments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve orders", h.logger)
		return
	}

	h.render(w, r, "orders", assignments)
}

type assignRequest struct {
	RestaurantID int64 `json:"restaurant_id"`
}

// AssignRestaurant handles POST /manager/orders/{id}/restaurant. It accepts
// a JSON body or a form field named restaurant_id.
func (h *ManagerHandler) AssignRestaurant(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	var req assignRequest
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
			return
		}
	} else {
		req.RestaurantID, err = strconv.ParseInt(r.FormValue("restaurant_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid restaurant ID", h.logger)
			return
		}
	}

	if err := h.service.AssignRestaurant(r.Context(), orderID, req.RestaurantID); err != nil {
		writeDomainError(w, err, "failed to assign restaurant", h.logger)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, "/manager/orders", http.StatusSeeOther)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":      orderID,
		"restaurant_id": req.RestaurantID,
	})
}

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// UpdateStatus handles PATCH /manager/orders/{id}/status.
func (h *ManagerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeDomainError(w, err, "failed to update order status", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// isJSONBody reports whether the request body is declared as JSON,
// ignoring parameters such as charset.
func isJSONBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// render writes data as JSON when asked to, or through the named template.
func (h *ManagerHandler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, data)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
	}
}
