// Package housekeeping evicts guardians who stopped paying: archive, release
// their films, delete the registry record, in that order.
package housekeeping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	catalogstore "github.com/bugswriter/shiosayi-backend/internal/catalog/store"
	guardianstore "github.com/bugswriter/shiosayi-backend/internal/guardian/store"
	"github.com/bugswriter/shiosayi-backend/pkg/requestcontext"
)

// DefaultStaleAfter is how long a guardian may go unpaid before eviction.
const DefaultStaleAfter = 35 * 24 * time.Hour

// Report summarizes one sweep.
type Report struct {
	Archived      int `json:"archived_count"`
	FilmsReleased int `json:"films_released_count"`
}

// Service runs the sweep. Guardians are processed one at a time: this is a
// low-frequency administrative batch, and sequential processing keeps the
// archive-then-delete ordering trivial to reason about.
type Service struct {
	guardians  guardianstore.Store
	films      catalogstore.Store
	archive    Archiver
	staleAfter time.Duration
	logger     *slog.Logger
}

// Option configures the sweeper.
type Option func(*Service)

// WithStaleAfter overrides the eviction threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

func New(guardians guardianstore.Store, films catalogstore.Store, archive Archiver, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		guardians:  guardians,
		films:      films,
		archive:    archive,
		staleAfter: DefaultStaleAfter,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep archives and removes every lapsed guardian and frees their films.
// Safe to re-run: an interrupted sweep leaves at worst a duplicate archive
// row, never a deleted-but-unarchived guardian.
func (s *Service) Sweep(ctx context.Context) (Report, error) {
	now := requestcontext.Now(ctx)
	cutoff := now.Add(-s.staleAfter)

	lapsed, err := s.guardians.ListLapsed(ctx, cutoff)
	if err != nil {
		return Report{}, fmt.Errorf("list lapsed guardians: %w", err)
	}

	var report Report
	for _, g := range lapsed {
		// Archive first. If this fails the guardian stays; the next sweep
		// picks them up again.
		if err := s.archive.Append(ctx, g, now); err != nil {
			return report, fmt.Errorf("archive guardian %s: %w", g.ID, err)
		}

		released, err := s.films.Release(ctx, g.ID)
		if err != nil {
			return report, fmt.Errorf("release films of guardian %s: %w", g.ID, err)
		}

		if err := s.guardians.Delete(ctx, g.ID); err != nil {
			return report, fmt.Errorf("delete guardian %s: %w", g.ID, err)
		}

		report.Archived++
		report.FilmsReleased += released
		s.logger.Info("guardian evicted",
			"guardian_id", g.ID,
			"email", g.Email,
			"films_released", released,
			"last_paid_at", g.LastPaidAt,
		)
	}
	return report, nil
}
