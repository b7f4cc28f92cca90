package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/bugswriter/shiosayi-backend/internal/catalog/models"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
)

type CatalogStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CatalogStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCatalogStoreSuite(t *testing.T) {
	suite.Run(t, new(CatalogStoreSuite))
}

func (s *CatalogStoreSuite) addFilm(title string) int64 {
	id, err := s.store.Add(s.ctx, &models.Film{
		Title:  title,
		Year:   1954,
		Magnet: "magnet:?xt=urn:btih:" + title,
	})
	s.Require().NoError(err)
	return id
}

func (s *CatalogStoreSuite) TestAdoptOutcomes() {
	filmID := s.addFilm("Sansho the Bailiff")

	s.Run("orphan film can be adopted", func() {
		out, err := s.store.Adopt(s.ctx, "g_1", filmID, 5)
		s.Require().NoError(err)
		s.Equal(Adopted, out.Status)
		s.Equal("Sansho the Bailiff", out.Title)

		f, err := s.store.Get(s.ctx, filmID)
		s.Require().NoError(err)
		s.Equal(models.StatusAdopted, f.Status)
		s.Equal("g_1", f.GuardianID)
	})

	s.Run("re-adopting own film is a no-op", func() {
		out, err := s.store.Adopt(s.ctx, "g_1", filmID, 5)
		s.Require().NoError(err)
		s.Equal(AlreadyOwnedBySelf, out.Status)
	})

	s.Run("film owned by another guardian conflicts", func() {
		out, err := s.store.Adopt(s.ctx, "g_2", filmID, 5)
		s.Require().NoError(err)
		s.Equal(ConflictOwnedByOther, out.Status)
	})

	s.Run("unknown film id", func() {
		out, err := s.store.Adopt(s.ctx, "g_1", 9999, 5)
		s.Require().NoError(err)
		s.Equal(NotFound, out.Status)
	})
}

func (s *CatalogStoreSuite) TestQuotaEnforced() {
	const quota = 2
	for i := 0; i < quota; i++ {
		id := s.addFilm(fmt.Sprintf("film-%d", i))
		out, err := s.store.Adopt(s.ctx, "g_1", id, quota)
		s.Require().NoError(err)
		s.Require().Equal(Adopted, out.Status)
	}

	extra := s.addFilm("one too many")
	out, err := s.store.Adopt(s.ctx, "g_1", extra, quota)
	s.Require().NoError(err)
	s.Equal(QuotaExceeded, out.Status)
	s.Equal(quota, out.Limit)

	n, err := s.store.CountAdopted(s.ctx, "g_1")
	s.Require().NoError(err)
	s.Equal(quota, n)
}

// TestConcurrentAdoptsRespectQuota hammers Adopt from many goroutines and
// checks the guardian never ends up over quota.
func (s *CatalogStoreSuite) TestConcurrentAdoptsRespectQuota() {
	const quota = 5
	const films = 40

	ids := make([]int64, films)
	for i := range ids {
		ids[i] = s.addFilm(fmt.Sprintf("film-%d", i))
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := s.store.Adopt(s.ctx, "g_1", id, quota)
			s.NoError(err)
		}(id)
	}
	wg.Wait()

	n, err := s.store.CountAdopted(s.ctx, "g_1")
	s.Require().NoError(err)
	s.Equal(quota, n)
}

// TestConcurrentAdoptsSingleWinner races many guardians for one film.
func (s *CatalogStoreSuite) TestConcurrentAdoptsSingleWinner() {
	filmID := s.addFilm("contested")

	const guardians = 30
	var wg sync.WaitGroup
	outcomes := make([]AdoptStatus, guardians)
	for i := 0; i < guardians; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := s.store.Adopt(s.ctx, fmt.Sprintf("g_%d", i), filmID, 10)
			s.NoError(err)
			outcomes[i] = out.Status
		}(i)
	}
	wg.Wait()

	won := 0
	for _, st := range outcomes {
		if st == Adopted {
			won++
		}
	}
	s.Equal(1, won, "exactly one guardian should win the film")
}

func (s *CatalogStoreSuite) TestReleaseOrphansAllFilms() {
	a := s.addFilm("a")
	b := s.addFilm("b")
	c := s.addFilm("c")
	for _, id := range []int64{a, b} {
		out, err := s.store.Adopt(s.ctx, "g_1", id, 5)
		s.Require().NoError(err)
		s.Require().Equal(Adopted, out.Status)
	}
	out, err := s.store.Adopt(s.ctx, "g_2", c, 5)
	s.Require().NoError(err)
	s.Require().Equal(Adopted, out.Status)

	released, err := s.store.Release(s.ctx, "g_1")
	s.Require().NoError(err)
	s.Equal(2, released)

	for _, id := range []int64{a, b} {
		f, err := s.store.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(models.StatusOrphan, f.Status)
		s.Empty(f.GuardianID)
	}

	// Other guardians keep their films.
	f, err := s.store.Get(s.ctx, c)
	s.Require().NoError(err)
	s.Equal(models.StatusAdopted, f.Status)
	s.Equal("g_2", f.GuardianID)
}

func (s *CatalogStoreSuite) TestGetUnknownFilm() {
	_, err := s.store.Get(s.ctx, 123)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
