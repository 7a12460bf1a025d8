package store

import (
	"context"
	"fmt"
)

// Migrate creates all tables needed by the application.
// Safe to call multiple times: every statement uses IF NOT EXISTS.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

const schema = `
-- Users: anonymous (UUID) or Telegram (numeric id as text) identities.
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    username TEXT NOT NULL DEFAULT '',
    anonymous BOOLEAN NOT NULL DEFAULT TRUE,
    token_prefix TEXT NOT NULL,
    token_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_token_prefix ON users(token_prefix);

-- Teams: one generation per owner at a time.
CREATE TABLE IF NOT EXISTS teams (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    members INTEGER[] NOT NULL DEFAULT '{}',
    points INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_accessed TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_teams_owner_id ON teams(owner_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_teams_owner_name ON teams(owner_id, name);
`
