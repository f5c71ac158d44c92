// Package storage implements the durable record store on Postgres. All
// lifecycle mutations are conditional on the record's current status, so
// any stage can be re-run concurrently with itself without lost updates.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Repository persists bet records, caches, results, and roster data.
type Repository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// NewRepository wires a sql.DB implementation.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Schema creates every table the pipeline relies on. Statuses are a closed
// set enforced by a CHECK so illegal flag combinations cannot be stored.
const Schema = `
CREATE TABLE IF NOT EXISTS players (
    ref_id     BIGINT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    is_active  BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS player_aliases (
    alias      TEXT PRIMARY KEY,
    ref_id     BIGINT NOT NULL REFERENCES players(ref_id),
    source     TEXT NOT NULL,
    added_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS raw_bets (
    id           UUID PRIMARY KEY,
    image_source TEXT NOT NULL,
    raw_span     TEXT NOT NULL,
    raw_player   TEXT NOT NULL DEFAULT '',
    player_ref   BIGINT REFERENCES players(ref_id),
    bet_type     TEXT,
    side         TEXT,
    line_value   DOUBLE PRECISION,
    odds         INTEGER,
    score        DOUBLE PRECISION NOT NULL,
    game_date    DATE,
    status       TEXT NOT NULL CHECK (status IN ('needs_review', 'ready', 'voided', 'resolved')),
    reasons      TEXT[] NOT NULL DEFAULT '{}',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS raw_bets_status_idx ON raw_bets (status);
CREATE INDEX IF NOT EXISTS raw_bets_image_idx ON raw_bets (image_source);

CREATE TABLE IF NOT EXISTS game_stats (
    player_ref     BIGINT NOT NULL REFERENCES players(ref_id),
    game_date      DATE NOT NULL,
    points         DOUBLE PRECISION NOT NULL,
    rebounds       DOUBLE PRECISION NOT NULL,
    assists        DOUBLE PRECISION NOT NULL,
    blocks         DOUBLE PRECISION NOT NULL,
    steals         DOUBLE PRECISION NOT NULL,
    turnovers      DOUBLE PRECISION NOT NULL,
    three_pointers DOUBLE PRECISION NOT NULL,
    cached_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (player_ref, game_date)
);

CREATE TABLE IF NOT EXISTS unplayed_bets (
    player_ref BIGINT NOT NULL REFERENCES players(ref_id),
    game_date  DATE NOT NULL,
    raw_bet_id UUID NOT NULL REFERENCES raw_bets(id),
    added_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (player_ref, game_date)
);

CREATE TABLE IF NOT EXISTS bet_results (
    id          BIGSERIAL PRIMARY KEY,
    raw_bet_id  UUID NOT NULL UNIQUE REFERENCES raw_bets(id),
    player_ref  BIGINT NOT NULL REFERENCES players(ref_id),
    bet_type    TEXT NOT NULL,
    outcome     TEXT NOT NULL CHECK (outcome IN ('win', 'loss', 'push')),
    delta       DOUBLE PRECISION NOT NULL,
    bucket      TEXT NOT NULL,
    stat_value  DOUBLE PRECISION NOT NULL,
    line_value  DOUBLE PRECISION NOT NULL,
    side        TEXT NOT NULL,
    odds        INTEGER NOT NULL,
    is_uploaded BOOLEAN NOT NULL DEFAULT FALSE,
    resolved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS aggregated_results (
    bet_type   TEXT NOT NULL,
    bucket     TEXT NOT NULL,
    return_sum DOUBLE PRECISION NOT NULL,
    volume     INTEGER NOT NULL,
    updated_to DATE NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (bet_type, bucket)
);
`

// Init applies the schema; safe to run on every start.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
