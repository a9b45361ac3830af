// Package response provides helpers for consistent JSON responses.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the structured error body returned by every endpoint.
// Details carries optional extra context such as the underlying error text.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON writes a JSON response with the given status code. A nil data
// writes the status only. Encoding failures are logged, not surfaced: the
// status line has already been written.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// RespondError writes a structured error response. The message is the
// user-facing description; details may be an underlying error string or nil.
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
