package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the tables the historian writes. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id         UUID PRIMARY KEY,
		status     TEXT NOT NULL DEFAULT 'in_progress',
		winner_id  TEXT,
		start_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		end_time   TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS game_actions (
		game_id        UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		action_index   INT NOT NULL,
		actor_id       TEXT,
		action_type    TEXT NOT NULL,
		action_payload JSONB NOT NULL DEFAULT '{}',
		created_at     TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (game_id, action_index)
	)`,
}

// EnsureSchema creates the games and game_actions tables when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
		}
		return nil
	})
}
