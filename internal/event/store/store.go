package store

import (
	"context"

	"github.com/bugswriter/shiosayi-backend/internal/event/models"
)

// IngestOutcome says whether an event was newly stored or already known.
type IngestOutcome int

const (
	Inserted IngestOutcome = iota
	Duplicate
)

// Store is the append-only log of inbound payment events.
type Store interface {
	// Ingest inserts the event unless its id was seen before. A duplicate is
	// not an error: upstream retries must receive the same success response
	// as the original delivery.
	Ingest(ctx context.Context, e *models.PaymentEvent) (IngestOutcome, error)
	// Get returns a stored event by id.
	Get(ctx context.Context, id string) (*models.PaymentEvent, error)
}
