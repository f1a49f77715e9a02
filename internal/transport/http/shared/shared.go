// Package shared centralizes JSON response writing so every handler emits the
// same envelopes: data on success, {"message": ...} on failure, plus a
// field-keyed "errors" map for validation rejections.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "trilha/pkg/domain-errors"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the HTTP error envelope. Internal
// details never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := map[string]any{"message": "internal error"}

	var de *dErrors.Error
	if errors.As(err, &de) {
		status = dErrors.ToHTTPStatus(de.Code)
		body["message"] = dErrors.Message(de)
		if len(de.Fields) > 0 {
			body["errors"] = de.Fields
		}
	}

	WriteJSON(w, status, body)
}
