package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// writeJSON sets the JSON content type, writes status and encodes v.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSONError sends a JSON error response with a single "error" field.
// The management client maps the status code onto its error kinds, so 404 must
// only be used for a missing resource.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and "fields" keyed by JSON field path.
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	writeJSON(w, status, out)
}

// decodeJSON decodes the request body into v. On failure it writes the error
// response and returns false: 413 when the body exceeded the MaxBytes limit,
// 400 otherwise.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	JSONError(w, "invalid JSON", http.StatusBadRequest)
	return false
}
