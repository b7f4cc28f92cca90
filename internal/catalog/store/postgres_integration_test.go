//go:build integration

package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugswriter/shiosayi-backend/internal/catalog/models"
	"github.com/bugswriter/shiosayi-backend/pkg/testutil/containers"
)

func TestPostgresCatalogStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pc := containers.NewPostgresContainer(t)
	store := NewPostgres(pc.DB)
	ctx := context.Background()

	seedGuardian := func(t *testing.T) string {
		t.Helper()
		id := "g_" + uuid.NewString()
		_, err := pc.DB.ExecContext(ctx, `
			INSERT INTO guardians (id, name, email, tier, token, joined_at, last_paid_at)
			VALUES ($1, 'G', $2, 'keeper', $3, NOW(), NOW())
		`, id, id+"@x.com", "shio_"+uuid.NewString())
		require.NoError(t, err)
		return id
	}

	addFilm := func(t *testing.T, title string) int64 {
		t.Helper()
		id, err := store.Add(ctx, &models.Film{
			Title:     title,
			Year:      1950,
			Magnet:    "magnet:?xt=urn:btih:" + title,
			Status:    models.StatusOrphan,
			UpdatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		return id
	}

	t.Run("adopt and release round trip", func(t *testing.T) {
		require.NoError(t, pc.Truncate(ctx))
		gid := seedGuardian(t)
		fid := addFilm(t, "ugetsu")

		out, err := store.Adopt(ctx, gid, fid, 5)
		require.NoError(t, err)
		assert.Equal(t, Adopted, out.Status)

		out, err = store.Adopt(ctx, gid, fid, 5)
		require.NoError(t, err)
		assert.Equal(t, AlreadyOwnedBySelf, out.Status)

		released, err := store.Release(ctx, gid)
		require.NoError(t, err)
		assert.Equal(t, 1, released)

		f, err := store.Get(ctx, fid)
		require.NoError(t, err)
		assert.Equal(t, models.StatusOrphan, f.Status)
	})

	t.Run("concurrent adopts never exceed quota", func(t *testing.T) {
		require.NoError(t, pc.Truncate(ctx))
		const quota = 5
		gid := seedGuardian(t)

		ids := make([]int64, 12)
		for i := range ids {
			ids[i] = addFilm(t, fmt.Sprintf("film-%d", i))
		}

		var wg sync.WaitGroup
		for _, fid := range ids {
			wg.Add(1)
			go func(fid int64) {
				defer wg.Done()
				_, err := store.Adopt(ctx, gid, fid, quota)
				assert.NoError(t, err)
			}(fid)
		}
		wg.Wait()

		n, err := store.CountAdopted(ctx, gid)
		require.NoError(t, err)
		assert.Equal(t, quota, n)
	})

	t.Run("contested film has a single winner", func(t *testing.T) {
		require.NoError(t, pc.Truncate(ctx))
		fid := addFilm(t, "contested")

		guardians := make([]string, 8)
		for i := range guardians {
			guardians[i] = seedGuardian(t)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		won := 0
		for _, gid := range guardians {
			wg.Add(1)
			go func(gid string) {
				defer wg.Done()
				out, err := store.Adopt(ctx, gid, fid, 5)
				assert.NoError(t, err)
				if out.Status == Adopted {
					mu.Lock()
					won++
					mu.Unlock()
				}
			}(gid)
		}
		wg.Wait()
		assert.Equal(t, 1, won)
	})
}
