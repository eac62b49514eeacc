package api

import (
	"encoding/json"
	"net/http"

	"github.com/sungwon/quick-mail/internal/logger"
)

// respondJSON writes data as a JSON response with the given status code.
// Encoding failures happen after the header is sent, so they are only logged.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Int("status", status).Msg("failed to write response")
	}
}

// respondError writes {"error": message}.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, map[string]string{"error": message})
}

// respondValidationErrors writes a 400 listing every rejected request field.
func respondValidationErrors(w http.ResponseWriter, r *http.Request, details []string) {
	respondJSON(w, r, http.StatusBadRequest, map[string]interface{}{
		"error":   "validation_failed",
		"details": details,
	})
}
