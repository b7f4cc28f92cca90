// Package httptransport is the thin HTTP layer. It parses requests, calls
// domain services, and maps typed results to responses; business logic stays
// in the internal service packages.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	catalogservice "github.com/bugswriter/shiosayi-backend/internal/catalog/service"
	eventmetrics "github.com/bugswriter/shiosayi-backend/internal/event/metrics"
	eventstore "github.com/bugswriter/shiosayi-backend/internal/event/store"
	guardianservice "github.com/bugswriter/shiosayi-backend/internal/guardian/service"
	"github.com/bugswriter/shiosayi-backend/internal/housekeeping"
	platformmetrics "github.com/bugswriter/shiosayi-backend/internal/platform/metrics"
	"github.com/bugswriter/shiosayi-backend/internal/platform/middleware"
	"github.com/bugswriter/shiosayi-backend/internal/reconciler"
	"github.com/bugswriter/shiosayi-backend/internal/snapshot"
	suggestionstore "github.com/bugswriter/shiosayi-backend/internal/suggestion/store"
)

// Handler carries the wired services for all routes.
type Handler struct {
	logger *slog.Logger

	events       eventstore.Store
	eventMetrics *eventmetrics.Metrics
	reconciler   *reconciler.Service
	guardians    *guardianservice.Service
	catalog      *catalogservice.Service
	suggestions  suggestionstore.Store
	housekeeping *housekeeping.Service
	publisher    *snapshot.Publisher

	kofiToken   string
	admin       middleware.AdminCredential
	httpMetrics *platformmetrics.HTTP
}

// Config collects Handler dependencies so wiring in main stays readable.
type Config struct {
	Logger       *slog.Logger
	Events       eventstore.Store
	EventMetrics *eventmetrics.Metrics
	Reconciler   *reconciler.Service
	Guardians    *guardianservice.Service
	Catalog      *catalogservice.Service
	Suggestions  suggestionstore.Store
	Housekeeping *housekeeping.Service
	Publisher    *snapshot.Publisher
	KofiToken    string
	Admin        middleware.AdminCredential
	HTTPMetrics  *platformmetrics.HTTP
}

func New(cfg Config) *Handler {
	return &Handler{
		logger:       cfg.Logger,
		events:       cfg.Events,
		eventMetrics: cfg.EventMetrics,
		reconciler:   cfg.Reconciler,
		guardians:    cfg.Guardians,
		catalog:      cfg.Catalog,
		suggestions:  cfg.Suggestions,
		housekeeping: cfg.Housekeeping,
		publisher:    cfg.Publisher,
		kofiToken:    cfg.KofiToken,
		admin:        cfg.Admin,
		httpMetrics:  cfg.HTTPMetrics,
	}
}

// Router wires all routes with the shared middleware stack.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(h.logger))
	r.Use(h.httpMetrics.Middleware)

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/webhook", h.handleWebhook)
	r.Get("/auth", h.handleAuth)
	r.Get("/magnet/{filmID}", h.handleMagnet)
	r.Post("/adopt/{filmID}", h.handleAdopt)
	r.Post("/suggest", h.handleSuggest)
	r.Get("/db/public", h.handlePublicDB)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.admin, h.logger))
		r.Post("/admin/housekeeping", h.handleHousekeeping)
		r.Post("/admin/publish", h.handlePublish)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
