package store

import (
	"context"
	"sync"

	"github.com/bugswriter/shiosayi-backend/internal/event/models"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
)

// InMemory keeps the event log in process memory for tests and local runs.
type InMemory struct {
	mu     sync.RWMutex
	events map[string]*models.PaymentEvent
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[string]*models.PaymentEvent)}
}

func (s *InMemory) Ingest(_ context.Context, e *models.PaymentEvent) (IngestOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.events[e.ID]; seen {
		return Duplicate, nil
	}
	cp := *e
	s.events[e.ID] = &cp
	return Inserted, nil
}

func (s *InMemory) Get(_ context.Context, id string) (*models.PaymentEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// Len reports how many events are stored. Test helper.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
