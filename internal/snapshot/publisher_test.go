package snapshot

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmodels "github.com/bugswriter/shiosayi-backend/internal/catalog/models"
	catalogstore "github.com/bugswriter/shiosayi-backend/internal/catalog/store"
	guardianmodels "github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	guardianstore "github.com/bugswriter/shiosayi-backend/internal/guardian/store"
	"github.com/bugswriter/shiosayi-backend/internal/tier"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStores(t *testing.T) (*guardianstore.InMemory, *catalogstore.InMemory) {
	t.Helper()
	ctx := context.Background()
	guardians := guardianstore.NewInMemory()
	films := catalogstore.NewInMemory()

	g := &guardianmodels.Guardian{
		ID:         "g_" + uuid.NewString(),
		Name:       "Akiko",
		Email:      "akiko@x.com",
		Tier:       tier.Keeper,
		Token:      "shio_secret",
		JoinedAt:   time.Now().UTC(),
		LastPaidAt: time.Now().UTC(),
	}
	require.NoError(t, guardians.Create(ctx, g))

	id, err := films.Add(ctx, &catalogmodels.Film{
		Title:  "Ugetsu",
		Year:   1953,
		Magnet: "magnet:?xt=urn:btih:deadbeef",
	})
	require.NoError(t, err)
	out, err := films.Adopt(ctx, g.ID, id, 5)
	require.NoError(t, err)
	require.Equal(t, catalogstore.Adopted, out.Status)

	_, err = films.Add(ctx, &catalogmodels.Film{Title: "Orphaned Reel", Magnet: "magnet:?xt=urn:btih:cafe"})
	require.NoError(t, err)

	return guardians, films
}

func TestPublishRedactsSensitiveColumns(t *testing.T) {
	guardians, films := seededStores(t)
	path := filepath.Join(t.TempDir(), "public.db")
	pub := New(guardians, films, path, discardLogger())

	report, err := pub.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Guardians: 1, Films: 2}, report)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	// Sensitive columns simply do not exist in the artifact.
	for _, q := range []string{
		`SELECT email FROM guardians`,
		`SELECT token FROM guardians`,
		`SELECT magnet FROM films`,
	} {
		_, qerr := db.Query(q)
		assert.Error(t, qerr, q)
	}

	var name, tierCol string
	require.NoError(t, db.QueryRow(`SELECT name, tier FROM guardians`).Scan(&name, &tierCol))
	assert.Equal(t, "Akiko", name)
	assert.Equal(t, "keeper", tierCol)

	var filmCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM films`).Scan(&filmCount))
	assert.Equal(t, 2, filmCount)

	var status string
	require.NoError(t, db.QueryRow(`SELECT status FROM films WHERE title = 'Ugetsu'`).Scan(&status))
	assert.Equal(t, "adopted", status)

	// Raw bytes carry no secrets either.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "shio_secret")
	assert.NotContains(t, string(raw), "akiko@x.com")
	assert.NotContains(t, string(raw), "magnet:")
}

func TestPublishWritesChecksumSidecar(t *testing.T) {
	guardians, films := seededStores(t)
	path := filepath.Join(t.TempDir(), "public.db")
	pub := New(guardians, films, path, discardLogger())

	_, err := pub.Publish(context.Background())
	require.NoError(t, err)

	sidecar, err := os.ReadFile(pub.ChecksumPath())
	require.NoError(t, err)

	fields := strings.Fields(string(sidecar))
	require.Len(t, fields, 2)
	assert.Equal(t, "public.db", fields[1])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), fields[0])
}

func TestPublishBacksUpPreviousArtifact(t *testing.T) {
	guardians, films := seededStores(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "public.db")
	pub := New(guardians, films, path, discardLogger())
	ctx := context.Background()

	_, err := pub.Publish(ctx)
	require.NoError(t, err)
	_, err = pub.Publish(ctx)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var backups int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".bak") {
			backups++
		}
	}
	assert.Equal(t, 1, backups, "second publish renames the first artifact")
}
