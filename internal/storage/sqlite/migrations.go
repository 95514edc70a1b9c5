package sqlite

import (
	"context"
	"database/sql"
)

// schema sets up the database. It runs on every open and is idempotent.
// Timestamps are Unix nanoseconds so newest-first ordering is stable for
// scenarios created within the same second.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scenarios (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS founders (
    id TEXT PRIMARY KEY,
    scenario_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    equity_percentage REAL NOT NULL CHECK (equity_percentage >= 0),
    FOREIGN KEY (scenario_id) REFERENCES scenarios(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS rounds (
    id TEXT PRIMARY KEY,
    scenario_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    round_name TEXT NOT NULL,
    investment_amount REAL NOT NULL CHECK (investment_amount >= 0),
    valuation REAL NOT NULL CHECK (valuation >= 0),
    FOREIGN KEY (scenario_id) REFERENCES scenarios(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS esop (
    id TEXT PRIMARY KEY,
    scenario_id TEXT NOT NULL UNIQUE,
    percentage REAL NOT NULL CHECK (percentage >= 0),
    FOREIGN KEY (scenario_id) REFERENCES scenarios(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_scenarios_owner_created ON scenarios(owner_id, created_at);
CREATE INDEX IF NOT EXISTS idx_founders_scenario_id ON founders(scenario_id);
CREATE INDEX IF NOT EXISTS idx_rounds_scenario_id ON rounds(scenario_id);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
