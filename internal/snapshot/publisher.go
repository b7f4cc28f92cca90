// Package snapshot produces the redacted public export: a standalone SQLite
// file with guardians (no email, no token) and films (no magnet), plus a
// sha256 sidecar for out-of-band integrity checks.
package snapshot

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	catalogmodels "github.com/bugswriter/shiosayi-backend/internal/catalog/models"
	catalogstore "github.com/bugswriter/shiosayi-backend/internal/catalog/store"
	guardianmodels "github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	guardianstore "github.com/bugswriter/shiosayi-backend/internal/guardian/store"
	"github.com/bugswriter/shiosayi-backend/pkg/requestcontext"
)

// Report counts what the export contains.
type Report struct {
	Guardians int `json:"guardians_published"`
	Films     int `json:"films_published"`
}

// Publisher writes the public snapshot artifact.
type Publisher struct {
	guardians guardianstore.Store
	films     catalogstore.Store
	path      string
	logger    *slog.Logger
}

func New(guardians guardianstore.Store, films catalogstore.Store, path string, logger *slog.Logger) *Publisher {
	return &Publisher{guardians: guardians, films: films, path: path, logger: logger}
}

// Path returns where the artifact is written. The download endpoint serves it.
func (p *Publisher) Path() string { return p.path }

// ChecksumPath returns the sidecar location.
func (p *Publisher) ChecksumPath() string { return p.path + ".sha256" }

// Publish builds a fresh export. A previous artifact is renamed to a
// timestamped backup first, never silently overwritten. The source store is
// only read, in a single pass.
func (p *Publisher) Publish(ctx context.Context) (Report, error) {
	if _, err := os.Stat(p.path); err == nil {
		backup := fmt.Sprintf("%s.%s.bak", p.path, requestcontext.Now(ctx).Format("2006-01-02_150405"))
		if err := os.Rename(p.path, backup); err != nil {
			return Report{}, fmt.Errorf("back up previous snapshot: %w", err)
		}
		p.logger.Info("backed up previous snapshot", "backup", backup)
	}

	var guardians []*guardianmodels.Guardian
	var films []*catalogmodels.Film
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		guardians, err = p.guardians.List(gctx)
		if err != nil {
			return fmt.Errorf("read guardians: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		films, err = p.films.List(gctx)
		if err != nil {
			return fmt.Errorf("read films: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	if err := p.writeArtifact(ctx, guardians, films); err != nil {
		// Leave no half-written artifact behind.
		os.Remove(p.path)
		return Report{}, err
	}

	if err := p.writeChecksum(); err != nil {
		return Report{}, err
	}

	report := Report{Guardians: len(guardians), Films: len(films)}
	p.logger.Info("snapshot published",
		"path", p.path,
		"guardians", report.Guardians,
		"films", report.Films,
	)
	return report, nil
}

func (p *Publisher) writeArtifact(ctx context.Context, guardians []*guardianmodels.Guardian, films []*catalogmodels.Film) error {
	db, err := sql.Open("sqlite", p.path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		CREATE TABLE guardians (
			id TEXT PRIMARY KEY,
			name TEXT,
			tier TEXT NOT NULL,
			joined_at DATETIME NOT NULL
		);
		CREATE TABLE films (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			year INTEGER,
			plot TEXT,
			poster_url TEXT,
			region TEXT,
			guardian_id TEXT,
			status TEXT CHECK (status IN ('orphan', 'adopted')) NOT NULL,
			updated_at DATETIME
		);
	`)
	if err != nil {
		return fmt.Errorf("create snapshot schema: %w", err)
	}

	for _, g := range guardians {
		// Redaction happens here: email and token never reach the artifact.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO guardians (id, name, tier, joined_at) VALUES (?, ?, ?, ?)`,
			g.ID, g.Name, string(g.Tier), g.JoinedAt.UTC())
		if err != nil {
			return fmt.Errorf("write guardian row: %w", err)
		}
	}
	for _, f := range films {
		// Magnet links are excluded.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO films (id, title, year, plot, poster_url, region, guardian_id, status, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, f.ID, f.Title, f.Year, f.Plot, f.PosterURL, f.Region,
			nullString(f.GuardianID), string(f.Status), f.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("write film row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (p *Publisher) writeChecksum() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("read snapshot for checksum: %w", err)
	}
	sum := sha256.Sum256(data)
	line := fmt.Sprintf("%s  %s\n", hex.EncodeToString(sum[:]), filepath.Base(p.path))
	if err := os.WriteFile(p.ChecksumPath(), []byte(line), 0o644); err != nil {
		return fmt.Errorf("write checksum sidecar: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
