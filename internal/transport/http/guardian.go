package httptransport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	catalogmodels "github.com/bugswriter/shiosayi-backend/internal/catalog/models"
	catalogstore "github.com/bugswriter/shiosayi-backend/internal/catalog/store"
	guardianmodels "github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	dErrors "github.com/bugswriter/shiosayi-backend/pkg/domain-errors"
)

// bearerToken pulls the guardian credential from the query string. The
// upstream clients predate header auth; both TOKEN and token are accepted.
func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("TOKEN"); t != "" {
		return t
	}
	return r.URL.Query().Get("token")
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (*guardianmodels.Guardian, bool) {
	g, err := h.guardians.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	return g, true
}

type authResponse struct {
	guardianmodels.Profile
	Films []catalogmodels.PublicFilm `json:"films"`
}

// handleAuth validates a token and returns the guardian's profile with their
// adopted films. The token itself is never echoed back.
func (h *Handler) handleAuth(w http.ResponseWriter, r *http.Request) {
	g, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	films, err := h.catalog.AdoptedFilms(r.Context(), g.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, authResponse{Profile: guardianmodels.ProfileOf(g), Films: films})
}

func filmID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "filmID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "Invalid film id.")
	}
	return id, nil
}

// handleMagnet serves a film's magnet link to any authenticated guardian.
func (h *Handler) handleMagnet(w http.ResponseWriter, r *http.Request) {
	g, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	_ = g

	id, err := filmID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	magnet, err := h.catalog.Magnet(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"film_id": id, "magnet": magnet})
}

// handleAdopt maps the typed adoption outcome onto the API's status codes.
func (h *Handler) handleAdopt(w http.ResponseWriter, r *http.Request) {
	g, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	id, err := filmID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	outcome, err := h.catalog.Adopt(r.Context(), g, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	switch outcome.Status {
	case catalogstore.Adopted:
		WriteJSON(w, http.StatusOK, map[string]string{
			"message":    "Film successfully adopted!",
			"film_title": outcome.Title,
		})
	case catalogstore.AlreadyOwnedBySelf:
		WriteJSON(w, http.StatusOK, map[string]string{
			"message": "You have already adopted this film.",
		})
	case catalogstore.ConflictOwnedByOther:
		WriteJSON(w, http.StatusConflict, map[string]string{
			"error": "This film is already adopted by another guardian.",
		})
	case catalogstore.NotFound:
		WriteJSON(w, http.StatusNotFound, map[string]string{
			"error": "Film not found.",
		})
	case catalogstore.QuotaExceeded:
		WriteJSON(w, http.StatusForbidden, map[string]string{
			"error": "Adoption limit reached. Your tier '" + string(g.Tier) + "' allows for " +
				strconv.Itoa(outcome.Limit) + " adoptions.",
		})
	}
}
