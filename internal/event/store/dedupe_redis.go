package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bugswriter/shiosayi-backend/internal/event/models"
)

// dedupeTTL bounds how long a seen-marker lives in Redis. Upstream retry
// windows are minutes, not days; the database unique constraint covers the
// tail.
const dedupeTTL = 48 * time.Hour

// RedisDedupe fronts another event store with a Redis seen-set so retried
// webhooks can be acknowledged without a database round trip. Redis is an
// accelerator only: on any Redis failure the call falls through to the inner
// store, whose id constraint remains the source of truth.
type RedisDedupe struct {
	inner  Store
	client *redis.Client
	logger *slog.Logger
}

func NewRedisDedupe(inner Store, client *redis.Client, logger *slog.Logger) *RedisDedupe {
	return &RedisDedupe{inner: inner, client: client, logger: logger}
}

func (s *RedisDedupe) Ingest(ctx context.Context, e *models.PaymentEvent) (IngestOutcome, error) {
	key := "shiosayi:event:" + e.ID

	set, err := s.client.SetNX(ctx, key, 1, dedupeTTL).Result()
	if err != nil {
		s.logger.Warn("event dedupe cache unavailable, falling back to store", "error", err)
		return s.inner.Ingest(ctx, e)
	}
	if !set {
		// Seen within the TTL window; the original delivery already reached
		// the inner store.
		return Duplicate, nil
	}

	outcome, err := s.inner.Ingest(ctx, e)
	if err != nil {
		// Roll the marker back so a retry is not swallowed before the event
		// was durably stored.
		if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
			s.logger.Warn("failed to clear dedupe marker after ingest error", "event_id", e.ID, "error", delErr)
		}
		return 0, err
	}
	return outcome, nil
}

func (s *RedisDedupe) Get(ctx context.Context, id string) (*models.PaymentEvent, error) {
	return s.inner.Get(ctx, id)
}
