package store

import (
	"context"

	"github.com/bugswriter/shiosayi-backend/internal/catalog/models"
)

// AdoptStatus tags the outcome of an adoption attempt.
type AdoptStatus int

const (
	Adopted AdoptStatus = iota
	AlreadyOwnedBySelf
	ConflictOwnedByOther
	NotFound
	QuotaExceeded
)

// AdoptOutcome carries only the fields relevant to each status: Title on
// Adopted/AlreadyOwnedBySelf, Limit on QuotaExceeded.
type AdoptOutcome struct {
	Status AdoptStatus
	Title  string
	Limit  int
}

// Store tracks orphan/adopted state per film.
//
// Adopt runs the full check-then-claim sequence inside one critical section
// per guardian, so concurrent attempts can never push a guardian past quota
// and two guardians can never both claim the same film.
type Store interface {
	Get(ctx context.Context, id int64) (*models.Film, error)
	CountAdopted(ctx context.Context, guardianID string) (int, error)
	Adopt(ctx context.Context, guardianID string, filmID int64, quota int) (AdoptOutcome, error)
	// Release returns all of a guardian's adopted films to orphan status and
	// reports how many were affected.
	Release(ctx context.Context, guardianID string) (int, error)
	ListByGuardian(ctx context.Context, guardianID string) ([]*models.Film, error)
	// List returns the whole catalog, ordered by id. Used by the snapshot
	// publisher.
	List(ctx context.Context) ([]*models.Film, error)
	// Add inserts a catalog entry. Used by operators seeding the catalog.
	Add(ctx context.Context, f *models.Film) (int64, error)
}
