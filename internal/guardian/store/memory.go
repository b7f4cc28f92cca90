package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	"github.com/bugswriter/shiosayi-backend/internal/tier"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
)

// InMemory keeps guardians in process memory. It backs the unit tests and
// local development; a single mutex gives it the same serialization
// guarantees the Postgres store gets from row locks.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[string]*models.Guardian
	byEmail map[string]string // lowercased email -> id
	byToken map[string]string // token -> id
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[string]*models.Guardian),
		byEmail: make(map[string]string),
		byToken: make(map[string]string),
	}
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyGuardian(s.byID[id]), nil
}

func (s *InMemory) FindByToken(_ context.Context, token string) (*models.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyGuardian(s.byID[id]), nil
}

func (s *InMemory) Create(_ context.Context, g *models.Guardian) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(g.Email)
	if _, taken := s.byEmail[email]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, taken := s.byToken[g.Token]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.byID[g.ID] = copyGuardian(g)
	s.byEmail[email] = g.ID
	s.byToken[g.Token] = g.ID
	return nil
}

func (s *InMemory) UpdateOnPayment(_ context.Context, id string, newTier tier.Tier, paidAt time.Time) (tier.Tier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byID[id]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	prev := g.Tier
	g.Tier = newTier
	g.LastPaidAt = paidAt
	return prev, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, strings.ToLower(g.Email))
	delete(s.byToken, g.Token)
	delete(s.byID, id)
	return nil
}

func (s *InMemory) ListLapsed(_ context.Context, cutoff time.Time) ([]*models.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var lapsed []*models.Guardian
	for _, g := range s.byID {
		if g.LapsedBy(cutoff) {
			lapsed = append(lapsed, copyGuardian(g))
		}
	}
	sortByJoinedAt(lapsed)
	return lapsed, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.Guardian, 0, len(s.byID))
	for _, g := range s.byID {
		all = append(all, copyGuardian(g))
	}
	sortByJoinedAt(all)
	return all, nil
}

func copyGuardian(g *models.Guardian) *models.Guardian {
	cp := *g
	return &cp
}

func sortByJoinedAt(gs []*models.Guardian) {
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].JoinedAt.Equal(gs[j].JoinedAt) {
			return gs[i].ID < gs[j].ID
		}
		return gs[i].JoinedAt.Before(gs[j].JoinedAt)
	})
}
