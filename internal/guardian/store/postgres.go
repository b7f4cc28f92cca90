package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	"github.com/bugswriter/shiosayi-backend/internal/tier"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
)

// Postgres persists guardians in PostgreSQL. Email and token carry unique
// indexes; token lookup is the hot path for every authenticated request.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const guardianColumns = "id, name, email, tier, token, joined_at, last_paid_at"

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Guardian, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+guardianColumns+` FROM guardians WHERE lower(email) = lower($1)`, email)
	return scanGuardian(row)
}

func (s *Postgres) FindByToken(ctx context.Context, token string) (*models.Guardian, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+guardianColumns+` FROM guardians WHERE token = $1`, token)
	return scanGuardian(row)
}

func (s *Postgres) Create(ctx context.Context, g *models.Guardian) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guardians (id, name, email, tier, token, joined_at, last_paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, g.ID, g.Name, g.Email, string(g.Tier), g.Token, g.JoinedAt, g.LastPaidAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create guardian: %w", err)
	}
	return nil
}

// UpdateOnPayment reads the previous tier under a row lock so two concurrent
// payments for the same guardian cannot interleave.
func (s *Postgres) UpdateOnPayment(ctx context.Context, id string, newTier tier.Tier, paidAt time.Time) (tier.Tier, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin payment update: %w", err)
	}
	defer tx.Rollback()

	var prev string
	err = tx.QueryRowContext(ctx,
		`SELECT tier FROM guardians WHERE id = $1 FOR UPDATE`, id).Scan(&prev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("lock guardian for payment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE guardians SET tier = $2, last_paid_at = $3 WHERE id = $1`,
		id, string(newTier), paidAt)
	if err != nil {
		return "", fmt.Errorf("update guardian on payment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit payment update: %w", err)
	}
	return tier.Tier(prev), nil
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM guardians WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete guardian: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListLapsed(ctx context.Context, cutoff time.Time) ([]*models.Guardian, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+guardianColumns+` FROM guardians WHERE last_paid_at < $1 ORDER BY joined_at, id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list lapsed guardians: %w", err)
	}
	defer rows.Close()
	return collectGuardians(rows)
}

func (s *Postgres) List(ctx context.Context) ([]*models.Guardian, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+guardianColumns+` FROM guardians ORDER BY joined_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list guardians: %w", err)
	}
	defer rows.Close()
	return collectGuardians(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuardian(row rowScanner) (*models.Guardian, error) {
	var g models.Guardian
	var t string
	err := row.Scan(&g.ID, &g.Name, &g.Email, &t, &g.Token, &g.JoinedAt, &g.LastPaidAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan guardian: %w", err)
	}
	g.Tier = tier.Tier(t)
	return &g, nil
}

func collectGuardians(rows *sql.Rows) ([]*models.Guardian, error) {
	var out []*models.Guardian
	for rows.Next() {
		g, err := scanGuardian(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guardians: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
