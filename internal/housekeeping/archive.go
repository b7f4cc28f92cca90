package housekeeping

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/bugswriter/shiosayi-backend/internal/guardian/models"
)

// Archiver records evicted guardians durably before they are deleted.
// Appending must succeed or the guardian is not deleted; duplicate rows from
// a retried sweep are acceptable, it is an audit trail.
type Archiver interface {
	Append(ctx context.Context, g *models.Guardian, archivedAt time.Time) error
}

var archiveHeader = []string{"archived_at", "id", "name", "email", "tier", "token", "joined_at", "last_paid_at"}

// CSVArchive appends guardian records to a tabular file, writing the header
// on first use.
type CSVArchive struct {
	path string
}

func NewCSVArchive(path string) *CSVArchive {
	return &CSVArchive{path: path}
}

func (a *CSVArchive) Append(_ context.Context, g *models.Guardian, archivedAt time.Time) error {
	info, err := os.Stat(a.path)
	empty := err != nil || info.Size() == 0

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if empty {
		if err := w.Write(archiveHeader); err != nil {
			return fmt.Errorf("write archive header: %w", err)
		}
	}
	record := []string{
		archivedAt.UTC().Format(time.RFC3339),
		g.ID,
		g.Name,
		g.Email,
		string(g.Tier),
		g.Token,
		g.JoinedAt.UTC().Format(time.RFC3339),
		g.LastPaidAt.UTC().Format(time.RFC3339),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("write archive record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}
	// The archive is the only copy of a guardian once the registry row is
	// deleted, so force it to disk before reporting success.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}
	return nil
}
