package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"foodcart/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeDomainError maps business errors to status codes; anything else is a 500.
func writeDomainError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, fallback, logger)
		return
	}

	status := http.StatusBadRequest
	switch domainErr.Code {
	case model.ErrCodeOrderNotFound, model.ErrCodeRestaurantNotFound, model.ErrCodeProductNotFound:
		status = http.StatusNotFound
	case model.ErrCodeRestaurantNotCapable:
		status = http.StatusConflict
	}

	writeError(w, status, domainErr.Message, logger)
}

// wantsJSON reports whether the client asked for JSON instead of HTML.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
