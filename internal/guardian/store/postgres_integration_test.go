//go:build integration

package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	"github.com/bugswriter/shiosayi-backend/internal/tier"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
	"github.com/bugswriter/shiosayi-backend/pkg/testutil/containers"
)

func TestPostgresGuardianStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pc := containers.NewPostgresContainer(t)
	store := NewPostgres(pc.DB)
	ctx := context.Background()

	newGuardian := func(email string) *models.Guardian {
		now := time.Now().UTC().Truncate(time.Microsecond)
		return &models.Guardian{
			ID:         "g_" + uuid.NewString(),
			Name:       "Test Guardian",
			Email:      email,
			Tier:       tier.Lover,
			Token:      "shio_" + uuid.NewString(),
			JoinedAt:   now,
			LastPaidAt: now,
		}
	}

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, pc.Truncate(ctx))
		g := newGuardian("rt@x.com")
		require.NoError(t, store.Create(ctx, g))

		got, err := store.FindByEmail(ctx, "RT@x.com")
		require.NoError(t, err)
		assert.Equal(t, g.ID, got.ID)
		assert.Equal(t, g.Token, got.Token)

		got, err = store.FindByToken(ctx, g.Token)
		require.NoError(t, err)
		assert.Equal(t, g.Email, got.Email)
	})

	t.Run("duplicate email maps to sentinel", func(t *testing.T) {
		require.NoError(t, pc.Truncate(ctx))
		require.NoError(t, store.Create(ctx, newGuardian("dup@x.com")))
		err := store.Create(ctx, newGuardian("DUP@x.com"))
		assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})

	t.Run("concurrent creates admit one winner", func(t *testing.T) {
		require.NoError(t, pc.Truncate(ctx))

		const attempts = 10
		var wg sync.WaitGroup
		var successes atomic.Int32
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := store.Create(ctx, newGuardian("race@x.com")); err == nil {
					successes.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), successes.Load())
	})

	t.Run("payment update returns previous tier and keeps token", func(t *testing.T) {
		require.NoError(t, pc.Truncate(ctx))
		g := newGuardian("pay@x.com")
		require.NoError(t, store.Create(ctx, g))

		paidAt := time.Now().UTC().Truncate(time.Microsecond)
		prev, err := store.UpdateOnPayment(ctx, g.ID, tier.Savior, paidAt)
		require.NoError(t, err)
		assert.Equal(t, tier.Lover, prev)

		got, err := store.FindByToken(ctx, g.Token)
		require.NoError(t, err)
		assert.Equal(t, tier.Savior, got.Tier)
	})

	t.Run("lapsed listing", func(t *testing.T) {
		require.NoError(t, pc.Truncate(ctx))
		stale := newGuardian("stale@x.com")
		stale.LastPaidAt = time.Now().UTC().Add(-60 * 24 * time.Hour)
		require.NoError(t, store.Create(ctx, stale))
		require.NoError(t, store.Create(ctx, newGuardian("fresh@x.com")))

		lapsed, err := store.ListLapsed(ctx, time.Now().UTC().Add(-35*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, lapsed, 1)
		assert.Equal(t, "stale@x.com", lapsed[0].Email)
	})
}
