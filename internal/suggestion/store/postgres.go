package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bugswriter/shiosayi-backend/internal/suggestion/models"
)

// Postgres persists suggestions in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Insert(ctx context.Context, sg *models.Suggestion) (*models.Suggestion, error) {
	status := sg.Status
	if status == "" {
		status = models.StatusPending
	}
	out := *sg
	out.Status = status
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO suggestions (email, title, notes, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, suggested_at
	`, sg.Email, sg.Title, sg.Notes, string(status)).Scan(&out.ID, &out.SuggestedAt)
	if err != nil {
		return nil, fmt.Errorf("insert suggestion: %w", err)
	}
	return &out, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Suggestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, title, notes, status, suggested_at FROM suggestions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var out []*models.Suggestion
	for rows.Next() {
		var sg models.Suggestion
		var status string
		if err := rows.Scan(&sg.ID, &sg.Email, &sg.Title, &sg.Notes, &status, &sg.SuggestedAt); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		sg.Status = models.SuggestionStatus(status)
		out = append(out, &sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}
	return out, nil
}
