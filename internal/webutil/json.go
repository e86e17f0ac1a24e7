// Package webutil provides the small HTTP helpers shared by the apps:
// JSON envelopes, list query parameters, and flash messages.
package webutil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ErrNoData is returned by DecodeJSON when the body is empty or not valid JSON.
var ErrNoData = errors.New("no data provided")

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes the standard error envelope {"success": false, "error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

// DecodeJSON decodes the request body into v. A missing or malformed body
// yields ErrNoData so handlers can answer 400 uniformly.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrNoData
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ErrNoData
	}
	return nil
}
