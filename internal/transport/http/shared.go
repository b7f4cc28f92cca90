package httptransport

import (
	"encoding/json"
	"net/http"

	dErrors "github.com/bugswriter/shiosayi-backend/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status and writes the safe
// message. The core never produces user-facing formatting beyond this.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		status = http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		status = http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeQuotaExceeded:
		status = http.StatusForbidden
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeConflict:
		status = http.StatusConflict
	}
	message := dErrors.MessageOf(err)
	if status == http.StatusInternalServerError {
		// Causes stay in the logs, not in responses.
		message = "An internal error occurred."
	}
	WriteJSON(w, status, map[string]string{"error": message})
}
