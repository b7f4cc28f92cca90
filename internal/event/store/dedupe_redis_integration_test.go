//go:build integration

package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugswriter/shiosayi-backend/internal/event/models"
	"github.com/bugswriter/shiosayi-backend/pkg/testutil/containers"
)

func TestRedisDedupe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("duplicate short-circuits before the inner store", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		inner := NewInMemory()
		store := NewRedisDedupe(inner, rc.Client, logger)

		outcome, err := store.Ingest(ctx, sampleEvent("msg-1"))
		require.NoError(t, err)
		assert.Equal(t, Inserted, outcome)

		outcome, err = store.Ingest(ctx, sampleEvent("msg-1"))
		require.NoError(t, err)
		assert.Equal(t, Duplicate, outcome)
		assert.Equal(t, 1, inner.Len())
	})

	t.Run("marker is rolled back when the inner store fails", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		inner := NewInMemory()
		failing := &failingOnce{inner: inner}
		store := NewRedisDedupe(failing, rc.Client, logger)

		_, err := store.Ingest(ctx, sampleEvent("msg-1"))
		require.Error(t, err)

		// The retry must reach the inner store instead of being swallowed.
		outcome, err := store.Ingest(ctx, sampleEvent("msg-1"))
		require.NoError(t, err)
		assert.Equal(t, Inserted, outcome)
	})
}

// failingOnce fails the first Ingest and delegates afterwards.
type failingOnce struct {
	inner  Store
	failed bool
}

func (f *failingOnce) Ingest(ctx context.Context, e *models.PaymentEvent) (IngestOutcome, error) {
	if !f.failed {
		f.failed = true
		return 0, errors.New("database unavailable")
	}
	return f.inner.Ingest(ctx, e)
}

func (f *failingOnce) Get(ctx context.Context, id string) (*models.PaymentEvent, error) {
	return f.inner.Get(ctx, id)
}
