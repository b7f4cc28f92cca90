package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bugswriter/shiosayi-backend/internal/catalog/models"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
)

// InMemory keeps the catalog in process memory. A single mutex covers every
// mutation, which trivially gives Adopt its required atomicity.
type InMemory struct {
	mu     sync.RWMutex
	films  map[int64]*models.Film
	nextID int64
	clock  func() time.Time
}

// InMemoryOption configures an InMemory catalog.
type InMemoryOption func(*InMemory)

// WithClock sets the time source used for updated_at stamps.
func WithClock(clock func() time.Time) InMemoryOption {
	return func(s *InMemory) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		films:  make(map[int64]*models.Film),
		nextID: 1,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) Get(_ context.Context, id int64) (*models.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.films[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyFilm(f), nil
}

func (s *InMemory) CountAdopted(_ context.Context, guardianID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countAdoptedLocked(guardianID), nil
}

func (s *InMemory) countAdoptedLocked(guardianID string) int {
	n := 0
	for _, f := range s.films {
		if f.Status == models.StatusAdopted && f.GuardianID == guardianID {
			n++
		}
	}
	return n
}

func (s *InMemory) Adopt(_ context.Context, guardianID string, filmID int64, quota int) (AdoptOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.films[filmID]
	if !ok {
		return AdoptOutcome{Status: NotFound}, nil
	}
	if f.Status == models.StatusAdopted {
		if f.GuardianID == guardianID {
			return AdoptOutcome{Status: AlreadyOwnedBySelf, Title: f.Title}, nil
		}
		return AdoptOutcome{Status: ConflictOwnedByOther}, nil
	}
	if s.countAdoptedLocked(guardianID) >= quota {
		return AdoptOutcome{Status: QuotaExceeded, Limit: quota}, nil
	}

	f.Status = models.StatusAdopted
	f.GuardianID = guardianID
	f.UpdatedAt = s.clock()
	return AdoptOutcome{Status: Adopted, Title: f.Title}, nil
}

func (s *InMemory) Release(_ context.Context, guardianID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.films {
		if f.Status == models.StatusAdopted && f.GuardianID == guardianID {
			f.Status = models.StatusOrphan
			f.GuardianID = ""
			f.UpdatedAt = s.clock()
			n++
		}
	}
	return n, nil
}

func (s *InMemory) ListByGuardian(_ context.Context, guardianID string) ([]*models.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Film
	for _, f := range s.films {
		if f.Status == models.StatusAdopted && f.GuardianID == guardianID {
			out = append(out, copyFilm(f))
		}
	}
	sortByID(out)
	return out, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Film, 0, len(s.films))
	for _, f := range s.films {
		out = append(out, copyFilm(f))
	}
	sortByID(out)
	return out, nil
}

func (s *InMemory) Add(_ context.Context, f *models.Film) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == 0 {
		f.ID = s.nextID
	}
	if f.ID >= s.nextID {
		s.nextID = f.ID + 1
	}
	if f.Status == "" {
		f.Status = models.StatusOrphan
	}
	f.UpdatedAt = s.clock()
	s.films[f.ID] = copyFilm(f)
	return f.ID, nil
}

func copyFilm(f *models.Film) *models.Film {
	cp := *f
	return &cp
}

func sortByID(fs []*models.Film) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].ID < fs[j].ID })
}
