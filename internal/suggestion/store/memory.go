package store

import (
	"context"
	"sync"
	"time"

	"github.com/bugswriter/shiosayi-backend/internal/suggestion/models"
)

// InMemory keeps suggestions in process memory for tests and local runs.
type InMemory struct {
	mu          sync.Mutex
	suggestions []*models.Suggestion
	nextID      int64
	clock       func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{nextID: 1, clock: time.Now}
}

func (s *InMemory) Insert(_ context.Context, sg *models.Suggestion) (*models.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sg
	cp.ID = s.nextID
	s.nextID++
	if cp.Status == "" {
		cp.Status = models.StatusPending
	}
	if cp.SuggestedAt.IsZero() {
		cp.SuggestedAt = s.clock()
	}
	s.suggestions = append(s.suggestions, &cp)
	out := cp
	return &out, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Suggestion, 0, len(s.suggestions))
	for _, sg := range s.suggestions {
		cp := *sg
		out = append(out, &cp)
	}
	return out, nil
}
