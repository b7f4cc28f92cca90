package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bugswriter/shiosayi-backend/internal/event/models"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
)

// Postgres persists payment events in PostgreSQL. The primary key on the
// upstream event id makes ingestion idempotent without a separate read.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Ingest(ctx context.Context, e *models.PaymentEvent) (IngestOutcome, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_events (
			id, at, kind, is_public, payer_name, payer_email, message,
			amount, currency, url, is_subscription_payment,
			is_first_subscription_payment, tier_label, external_transaction_id,
			raw_payload
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`,
		e.ID, e.Timestamp, string(e.Kind), e.IsPublic, e.PayerName, e.PayerEmail,
		e.Message, e.Amount, e.Currency, e.URL, e.IsSubscriptionPayment,
		e.IsFirstSubscription, nullString(e.TierLabel), e.ExternalTransactionID,
		e.RawPayload)
	if err != nil {
		return 0, fmt.Errorf("ingest payment event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

func (s *Postgres) Get(ctx context.Context, id string) (*models.PaymentEvent, error) {
	var e models.PaymentEvent
	var kind string
	var tierLabel sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, at, kind, is_public, payer_name, payer_email, message,
		       amount, currency, url, is_subscription_payment,
		       is_first_subscription_payment, tier_label,
		       external_transaction_id, raw_payload
		FROM payment_events WHERE id = $1
	`, id).Scan(
		&e.ID, &e.Timestamp, &kind, &e.IsPublic, &e.PayerName, &e.PayerEmail,
		&e.Message, &e.Amount, &e.Currency, &e.URL, &e.IsSubscriptionPayment,
		&e.IsFirstSubscription, &tierLabel, &e.ExternalTransactionID,
		&e.RawPayload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get payment event: %w", err)
	}
	e.Kind = models.EventKind(kind)
	e.TierLabel = tierLabel.String
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
