package models

import "time"

// FilmStatus tracks whether a film has a guardian.
type FilmStatus string

const (
	StatusOrphan  FilmStatus = "orphan"
	StatusAdopted FilmStatus = "adopted"
)

// Film is a catalog entry.
//
// Invariant: Status is adopted exactly when GuardianID is non-empty, and that
// guardian's adopted-film count never exceeds their tier quota. The only
// permitted transitions are orphan→adopted (adopt) and adopted→orphan
// (release when the guardian is evicted).
type Film struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Year       int        `json:"year,omitempty"`
	Plot       string     `json:"plot,omitempty"`
	PosterURL  string     `json:"poster_url,omitempty"`
	Region     string     `json:"region,omitempty"`
	Magnet     string     `json:"-"` // sensitive; exposed only via the magnet endpoint
	Status     FilmStatus `json:"status"`
	GuardianID string     `json:"guardian_id,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PublicFilm is the redacted projection used by the auth profile and the
// public snapshot: everything except the magnet link.
type PublicFilm struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Year      int    `json:"year,omitempty"`
	Plot      string `json:"plot,omitempty"`
	PosterURL string `json:"poster_url,omitempty"`
	Region    string `json:"region,omitempty"`
}

// PublicOf projects a film into its redacted view.
func PublicOf(f *Film) PublicFilm {
	return PublicFilm{
		ID:        f.ID,
		Title:     f.Title,
		Year:      f.Year,
		Plot:      f.Plot,
		PosterURL: f.PosterURL,
		Region:    f.Region,
	}
}
