// ABOUTME: JSON response helper shared by app routes and the generic admin API.
// ABOUTME: Error responses use the envelope in internal/errors.

package core

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
