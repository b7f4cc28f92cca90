package store

import (
	"context"
	"time"

	"github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	"github.com/bugswriter/shiosayi-backend/internal/tier"
)

// Store is interface-driven so the in-memory and PostgreSQL implementations
// stay swappable without rewiring business code.
//
// Concurrency contract: Create is atomic with respect to the email uniqueness
// check, and UpdateOnPayment serializes per guardian. The store is the sole
// arbiter of concurrent mutation; callers never cache guardian state across
// requests.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.Guardian, error)
	// FindByToken backs every authenticated request and must be an indexed
	// lookup in persistent implementations.
	FindByToken(ctx context.Context, token string) (*models.Guardian, error)
	// Create inserts a new guardian. Returns sentinel.ErrAlreadyUsed when the
	// email or token is already taken.
	Create(ctx context.Context, g *models.Guardian) error
	// UpdateOnPayment sets the tier and last-paid timestamp, returning the
	// tier that was in effect before the update so callers can distinguish an
	// upgrade from a renewal.
	UpdateOnPayment(ctx context.Context, id string, newTier tier.Tier, paidAt time.Time) (tier.Tier, error)
	Delete(ctx context.Context, id string) error
	// ListLapsed returns guardians whose last payment predates cutoff.
	ListLapsed(ctx context.Context, cutoff time.Time) ([]*models.Guardian, error)
	// List returns all guardians, ordered by join date. Used by the snapshot
	// publisher.
	List(ctx context.Context) ([]*models.Guardian, error)
}
