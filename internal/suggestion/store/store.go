package store

import (
	"context"

	"github.com/bugswriter/shiosayi-backend/internal/suggestion/models"
)

// Store persists film suggestions.
type Store interface {
	Insert(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error)
	List(ctx context.Context) ([]*models.Suggestion, error)
}
