package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied at startup. Statements are idempotent so repeated boots
// and the integration tests can share it.
const schema = `
CREATE TABLE IF NOT EXISTS guardians (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL,
	tier         TEXT NOT NULL,
	token        TEXT NOT NULL,
	joined_at    TIMESTAMPTZ NOT NULL,
	last_paid_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS guardians_email_key ON guardians (lower(email));
CREATE UNIQUE INDEX IF NOT EXISTS guardians_token_key ON guardians (token);

CREATE TABLE IF NOT EXISTS films (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	year        INTEGER,
	plot        TEXT NOT NULL DEFAULT '',
	poster_url  TEXT NOT NULL DEFAULT '',
	region      TEXT NOT NULL DEFAULT '',
	magnet      TEXT,
	status      TEXT NOT NULL DEFAULT 'orphan' CHECK (status IN ('orphan', 'adopted')),
	guardian_id TEXT REFERENCES guardians (id) ON DELETE SET NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS films_guardian_idx ON films (guardian_id) WHERE status = 'adopted';

CREATE TABLE IF NOT EXISTS suggestions (
	id           BIGSERIAL PRIMARY KEY,
	email        TEXT NOT NULL,
	title        TEXT NOT NULL,
	notes        TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'added', 'ignored')),
	suggested_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS payment_events (
	id                            TEXT PRIMARY KEY,
	at                            TIMESTAMPTZ NOT NULL,
	kind                          TEXT NOT NULL,
	is_public                     BOOLEAN NOT NULL DEFAULT false,
	payer_name                    TEXT NOT NULL DEFAULT '',
	payer_email                   TEXT NOT NULL,
	message                       TEXT NOT NULL DEFAULT '',
	amount                        NUMERIC(12, 2) NOT NULL DEFAULT 0,
	currency                      TEXT NOT NULL DEFAULT '',
	url                           TEXT NOT NULL DEFAULT '',
	is_subscription_payment       BOOLEAN NOT NULL DEFAULT false,
	is_first_subscription_payment BOOLEAN NOT NULL DEFAULT false,
	tier_label                    TEXT,
	external_transaction_id       TEXT NOT NULL DEFAULT '',
	raw_payload                   TEXT NOT NULL DEFAULT ''
);
`

// EnsureSchema creates the tables this service needs if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
