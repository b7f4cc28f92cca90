// Package service exposes catalog operations to the HTTP boundary: adoption,
// magnet retrieval, and the adopted-films listing for authenticated profiles.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bugswriter/shiosayi-backend/internal/catalog/models"
	"github.com/bugswriter/shiosayi-backend/internal/catalog/store"
	guardianmodels "github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	dErrors "github.com/bugswriter/shiosayi-backend/pkg/domain-errors"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
)

// Service wraps the catalog store with quota resolution and error
// translation.
type Service struct {
	films  store.Store
	logger *slog.Logger
}

func New(films store.Store, logger *slog.Logger) *Service {
	return &Service{films: films, logger: logger}
}

// Adopt lets the guardian claim an orphan film, subject to their tier quota.
// The store runs the whole check atomically; this layer only resolves the
// quota and translates the outcome.
func (s *Service) Adopt(ctx context.Context, g *guardianmodels.Guardian, filmID int64) (store.AdoptOutcome, error) {
	outcome, err := s.films.Adopt(ctx, g.ID, filmID, g.Quota())
	if err != nil {
		return store.AdoptOutcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "adoption failed")
	}
	if outcome.Status == store.Adopted {
		s.logger.Info("film adopted", "guardian_id", g.ID, "film_id", filmID)
	}
	return outcome, nil
}

// Magnet returns a film's magnet link for an authenticated guardian. The link
// is withheld with a distinct message while the film is an orphan, so
// sensitive links never leak for unowned content.
func (s *Service) Magnet(ctx context.Context, filmID int64) (string, error) {
	f, err := s.films.Get(ctx, filmID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "Film not found.")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "film lookup failed")
	}
	if f.Status != models.StatusAdopted {
		return "", dErrors.New(dErrors.CodeNotFound, "Film has no guardian yet; magnet links are only served for adopted films.")
	}
	if f.Magnet == "" {
		return "", dErrors.New(dErrors.CodeNotFound, "Film has no magnet link.")
	}
	return f.Magnet, nil
}

// AdoptedFilms lists a guardian's films in their redacted public form.
func (s *Service) AdoptedFilms(ctx context.Context, guardianID string) ([]models.PublicFilm, error) {
	films, err := s.films.ListByGuardian(ctx, guardianID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "film listing failed")
	}
	out := make([]models.PublicFilm, 0, len(films))
	for _, f := range films {
		out = append(out, models.PublicOf(f))
	}
	return out, nil
}
