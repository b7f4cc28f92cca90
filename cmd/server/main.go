package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	catalogservice "github.com/bugswriter/shiosayi-backend/internal/catalog/service"
	catalogstore "github.com/bugswriter/shiosayi-backend/internal/catalog/store"
	eventmetrics "github.com/bugswriter/shiosayi-backend/internal/event/metrics"
	eventstore "github.com/bugswriter/shiosayi-backend/internal/event/store"
	guardianmetrics "github.com/bugswriter/shiosayi-backend/internal/guardian/metrics"
	guardianservice "github.com/bugswriter/shiosayi-backend/internal/guardian/service"
	guardianstore "github.com/bugswriter/shiosayi-backend/internal/guardian/store"
	"github.com/bugswriter/shiosayi-backend/internal/housekeeping"
	"github.com/bugswriter/shiosayi-backend/internal/notify"
	"github.com/bugswriter/shiosayi-backend/internal/platform/config"
	"github.com/bugswriter/shiosayi-backend/internal/platform/httpserver"
	"github.com/bugswriter/shiosayi-backend/internal/platform/logger"
	platformmetrics "github.com/bugswriter/shiosayi-backend/internal/platform/metrics"
	"github.com/bugswriter/shiosayi-backend/internal/platform/middleware"
	"github.com/bugswriter/shiosayi-backend/internal/platform/postgres"
	platformredis "github.com/bugswriter/shiosayi-backend/internal/platform/redis"
	"github.com/bugswriter/shiosayi-backend/internal/reconciler"
	"github.com/bugswriter/shiosayi-backend/internal/snapshot"
	suggestionstore "github.com/bugswriter/shiosayi-backend/internal/suggestion/store"
	httptransport "github.com/bugswriter/shiosayi-backend/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	ctx := context.Background()

	var (
		guardians   guardianstore.Store
		films       catalogstore.Store
		events      eventstore.Store
		suggestions suggestionstore.Store
	)

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
		guardians = guardianstore.NewPostgres(db)
		films = catalogstore.NewPostgres(db)
		events = eventstore.NewPostgres(db)
		suggestions = suggestionstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		guardians = guardianstore.NewInMemory()
		films = catalogstore.NewInMemory()
		events = eventstore.NewInMemory()
		suggestions = suggestionstore.NewInMemory()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		events = eventstore.NewRedisDedupe(events, redisClient.Client, log)
		log.Info("webhook dedup cache enabled")
	}

	guardianSvc := guardianservice.New(guardians, guardianmetrics.New())
	catalogSvc := catalogservice.New(films, log)
	reconcilerSvc := reconciler.New(guardianSvc, notify.NewLogNotifier(log), log)
	housekeepingSvc := housekeeping.New(
		guardians, films, housekeeping.NewCSVArchive(cfg.ArchivePath), log,
		housekeeping.WithStaleAfter(cfg.StaleAfter),
	)
	publisher := snapshot.New(guardians, films, cfg.SnapshotPath, log)

	if cfg.KofiVerificationToken == "" {
		log.Warn("KOFI_VERIFICATION_TOKEN not set, webhook verification will reject all deliveries")
	}

	handler := httptransport.New(httptransport.Config{
		Logger:       log,
		Events:       events,
		EventMetrics: eventmetrics.New(),
		Reconciler:   reconcilerSvc,
		Guardians:    guardianSvc,
		Catalog:      catalogSvc,
		Suggestions:  suggestions,
		Housekeeping: housekeepingSvc,
		Publisher:    publisher,
		KofiToken:    cfg.KofiVerificationToken,
		HTTPMetrics:  platformmetrics.NewHTTP(),
		Admin: middleware.AdminCredential{
			Token: cfg.AdminToken,
			Hash:  cfg.AdminTokenHash,
		},
	})

	srv := httpserver.New(cfg.Addr, handler.Router())

	log.Info("starting shiosayi-backend", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
