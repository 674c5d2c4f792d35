// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/uno/internal/models"
)

// ActionStore persists journaled engine actions.
type ActionStore struct {
	pool *pgxpool.Pool
}

func NewActionStore(pool *pgxpool.Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// InsertActions writes a batch of actions in a single transaction.
// A replayed action (same game and index) is ignored.
func (s *ActionStore) InsertActions(ctx context.Context, recs []models.ActionRecord) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := insertGameActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert action %d of game %v: %w", rec.ActionIndex, rec.GameID, err)
			}
		}
		return nil
	})
}

// MarkAbandoned marks a game as abandoned if it is still in progress.
// It reports whether a row changed.
func (s *ActionStore) MarkAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error) {
	var changed bool
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE games
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		ct, err := tx.Exec(ctx, q, gameID)
		if err != nil {
			return err
		}
		changed = ct.RowsAffected() > 0
		return nil
	})
	return changed, err
}

// insertGameActionTx upserts the game row, inserts one action and, for a game end,
// finalizes the game with its winner.
func insertGameActionTx(ctx context.Context, tx pgx.Tx, rec models.ActionRecord) error {
	// a new round of the same engine reuses the game id
	upsertGameQ := `
		INSERT INTO games (id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (id)
		DO UPDATE SET status = 'in_progress', winner_id = NULL, end_time = NULL
		WHERE $2::boolean
	`
	if _, err := tx.Exec(ctx, upsertGameQ, rec.GameID, rec.ActionType == models.ActionGameStart); err != nil {
		return err
	}

	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	actionInsertQ := `
		INSERT INTO game_actions (
			game_id, action_index, actor_id, action_type, action_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	_, err = tx.Exec(ctx, actionInsertQ,
		rec.GameID, rec.ActionIndex, nullableActor(rec.ActorID), rec.ActionType, payload, recordTime(rec),
	)
	if err != nil {
		return err
	}

	if rec.ActionType == models.ActionGameEnd {
		finalizeQ := `
			UPDATE games
			SET status = 'completed', winner_id = $2, end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		if _, err := tx.Exec(ctx, finalizeQ, rec.GameID, nullableActor(rec.ActorID)); err != nil {
			return err
		}
	}
	return nil
}

// nullableActor stores engine-initiated actions with a NULL actor.
func nullableActor(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func recordTime(rec models.ActionRecord) time.Time {
	if rec.Timestamp == 0 {
		return time.Now()
	}
	return time.UnixMilli(rec.Timestamp)
}
