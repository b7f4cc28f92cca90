package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bugswriter/shiosayi-backend/internal/catalog/models"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
)

// Postgres persists the film catalog in PostgreSQL.
type Postgres struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresOption configures a Postgres catalog store.
type PostgresOption func(*Postgres)

// WithPostgresClock sets the time source for updated_at stamps.
func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(s *Postgres) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	s := &Postgres{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const filmColumns = "id, title, year, plot, poster_url, region, magnet, status, guardian_id, updated_at"

func (s *Postgres) Get(ctx context.Context, id int64) (*models.Film, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+filmColumns+` FROM films WHERE id = $1`, id)
	return scanFilm(row)
}

func (s *Postgres) CountAdopted(ctx context.Context, guardianID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM films WHERE guardian_id = $1 AND status = 'adopted'`,
		guardianID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count adopted films: %w", err)
	}
	return n, nil
}

// Adopt claims a film inside one transaction. The guardian row is locked
// first so concurrent adopts by the same guardian serialize on the quota
// check, then the film row is locked so two guardians cannot both claim it.
func (s *Postgres) Adopt(ctx context.Context, guardianID string, filmID int64, quota int) (AdoptOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AdoptOutcome{}, fmt.Errorf("begin adopt: %w", err)
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM guardians WHERE id = $1 FOR UPDATE`, guardianID).Scan(&lockedID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return AdoptOutcome{}, fmt.Errorf("lock guardian for adopt: %w", err)
	}

	var title, status string
	var owner sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT title, status, guardian_id FROM films WHERE id = $1 FOR UPDATE`,
		filmID).Scan(&title, &status, &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AdoptOutcome{Status: NotFound}, nil
		}
		return AdoptOutcome{}, fmt.Errorf("lock film for adopt: %w", err)
	}

	if models.FilmStatus(status) == models.StatusAdopted {
		if owner.String == guardianID {
			return AdoptOutcome{Status: AlreadyOwnedBySelf, Title: title}, nil
		}
		return AdoptOutcome{Status: ConflictOwnedByOther}, nil
	}

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM films WHERE guardian_id = $1 AND status = 'adopted'`,
		guardianID).Scan(&current)
	if err != nil {
		return AdoptOutcome{}, fmt.Errorf("count adoptions for quota: %w", err)
	}
	if current >= quota {
		return AdoptOutcome{Status: QuotaExceeded, Limit: quota}, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE films SET status = 'adopted', guardian_id = $2, updated_at = $3 WHERE id = $1`,
		filmID, guardianID, s.clock())
	if err != nil {
		return AdoptOutcome{}, fmt.Errorf("claim film: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return AdoptOutcome{}, fmt.Errorf("commit adopt: %w", err)
	}
	return AdoptOutcome{Status: Adopted, Title: title}, nil
}

func (s *Postgres) Release(ctx context.Context, guardianID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE films SET status = 'orphan', guardian_id = NULL, updated_at = $2
		WHERE guardian_id = $1 AND status = 'adopted'
	`, guardianID, s.clock())
	if err != nil {
		return 0, fmt.Errorf("release films: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("release films rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Postgres) ListByGuardian(ctx context.Context, guardianID string) ([]*models.Film, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+filmColumns+` FROM films WHERE guardian_id = $1 AND status = 'adopted' ORDER BY id`,
		guardianID)
	if err != nil {
		return nil, fmt.Errorf("list films by guardian: %w", err)
	}
	defer rows.Close()
	return collectFilms(rows)
}

func (s *Postgres) List(ctx context.Context) ([]*models.Film, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+filmColumns+` FROM films ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer rows.Close()
	return collectFilms(rows)
}

func (s *Postgres) Add(ctx context.Context, f *models.Film) (int64, error) {
	status := f.Status
	if status == "" {
		status = models.StatusOrphan
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO films (title, year, plot, poster_url, region, magnet, status, guardian_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, f.Title, f.Year, f.Plot, f.PosterURL, f.Region, nullString(f.Magnet),
		string(status), nullString(f.GuardianID), s.clock()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add film: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilm(row rowScanner) (*models.Film, error) {
	var f models.Film
	var status string
	var magnet, guardianID sql.NullString
	var year sql.NullInt64
	err := row.Scan(&f.ID, &f.Title, &year, &f.Plot, &f.PosterURL, &f.Region,
		&magnet, &status, &guardianID, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan film: %w", err)
	}
	f.Year = int(year.Int64)
	f.Magnet = magnet.String
	f.GuardianID = guardianID.String
	f.Status = models.FilmStatus(status)
	return &f, nil
}

func collectFilms(rows *sql.Rows) ([]*models.Film, error) {
	var out []*models.Film
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate films: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
