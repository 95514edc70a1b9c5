package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS scenarios (
    id TEXT PRIMARY KEY,
    seq BIGSERIAL NOT NULL,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- seq orders scenarios created within the same clock tick.
ALTER TABLE scenarios ADD COLUMN IF NOT EXISTS seq BIGSERIAL NOT NULL;

CREATE TABLE IF NOT EXISTS founders (
    id TEXT PRIMARY KEY,
    scenario_id TEXT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    equity_percentage DOUBLE PRECISION NOT NULL CHECK (equity_percentage >= 0)
);

CREATE TABLE IF NOT EXISTS rounds (
    id TEXT PRIMARY KEY,
    scenario_id TEXT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    round_name TEXT NOT NULL,
    investment_amount DOUBLE PRECISION NOT NULL CHECK (investment_amount >= 0),
    valuation DOUBLE PRECISION NOT NULL CHECK (valuation >= 0)
);

CREATE TABLE IF NOT EXISTS esop (
    id TEXT PRIMARY KEY,
    scenario_id TEXT NOT NULL UNIQUE REFERENCES scenarios(id) ON DELETE CASCADE,
    percentage DOUBLE PRECISION NOT NULL CHECK (percentage >= 0)
);

DROP INDEX IF EXISTS idx_scenarios_owner_created;
CREATE INDEX IF NOT EXISTS idx_scenarios_owner_created_seq ON scenarios(owner_id, created_at DESC, seq DESC);
CREATE INDEX IF NOT EXISTS idx_founders_scenario_id ON founders(scenario_id);
CREATE INDEX IF NOT EXISTS idx_rounds_scenario_id ON rounds(scenario_id);
`

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
