package httptransport

import (
	"net/http"
	"os"

	"github.com/bugswriter/shiosayi-backend/pkg/requestcontext"
)

// handleHousekeeping runs one sweep of lapsed guardians. Admin-gated by the
// router; never self-scheduled.
func (h *Handler) handleHousekeeping(w http.ResponseWriter, r *http.Request) {
	report, err := h.housekeeping.Sweep(r.Context())
	if err != nil {
		h.logger.Error("housekeeping failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handlePublish regenerates the public snapshot artifact.
func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	report, err := h.publisher.Publish(r.Context())
	if err != nil {
		h.logger.Error("snapshot publish failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handlePublicDB serves the latest published snapshot.
func (h *Handler) handlePublicDB(w http.ResponseWriter, r *http.Request) {
	path := h.publisher.Path()
	if _, err := os.Stat(path); err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]string{
			"error": "Public database file not found. Please run the publish process first.",
		})
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="public.db"`)
	http.ServeFile(w, r, path)
}
