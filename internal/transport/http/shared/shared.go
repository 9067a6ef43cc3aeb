// Package shared centralizes JSON envelope writing so every handler returns
// the same shapes. The error envelope distinguishes "fix your input" from
// "try again later" from "outcome unknown, verify before retrying".
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "lifeledger/pkg/domain-errors"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error to the HTTP error envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), ErrorResponse{
		Error:   string(code),
		Field:   dErrors.FieldOf(err),
		Message: err.Error(),
	})
}
