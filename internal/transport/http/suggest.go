package httptransport

import (
	"encoding/json"
	"net/http"
	"strings"

	suggestionmodels "github.com/bugswriter/shiosayi-backend/internal/suggestion/models"
	"github.com/bugswriter/shiosayi-backend/pkg/requestcontext"
)

type suggestRequest struct {
	Email string `json:"email"`
	Title string `json:"title"`
	Notes string `json:"notes"`
}

// handleSuggest records a film request from the public form.
func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Request body must be JSON."})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Title = strings.TrimSpace(req.Title)
	if req.Email == "" || req.Title == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "The 'email' and 'title' fields are required."})
		return
	}

	created, err := h.suggestions.Insert(r.Context(), &suggestionmodels.Suggestion{
		Email:       req.Email,
		Title:       req.Title,
		Notes:       req.Notes,
		SuggestedAt: requestcontext.Now(r.Context()),
	})
	if err != nil {
		h.logger.Error("could not add suggestion", "error", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "Suggestion received successfully.",
		"suggestion": created,
	})
}
