package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableActor(t *testing.T) {
	assert.Nil(t, nullableActor(""))
	got := nullableActor("jorge1234")
	require.NotNil(t, got)
	assert.Equal(t, "jorge1234", *got)
}

func TestRecordTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got := recordTime(models.ActionRecord{Timestamp: ts.UnixMilli()})
	assert.True(t, ts.Equal(got))
	assert.WithinDuration(t, time.Now(), recordTime(models.ActionRecord{}), time.Second)
}

// testPool connects to UNO_TEST_DATABASE_URL or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("UNO_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("UNO_TEST_DATABASE_URL not set")
	}
	logger, _ := test.NewNullLogger()
	pool, err := Connect(context.Background(), url, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(context.Background(), pool))
	return pool
}

func TestActionStoreLifecycle(t *testing.T) {
	pool := testPool(t)
	store := NewActionStore(pool)
	ctx := context.Background()
	gameID := uuid.New()
	t.Cleanup(func() { pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, gameID) })

	recs := []models.ActionRecord{
		{GameID: gameID, ActionIndex: 1, ActionType: models.ActionPlayerJoin, ActionPayload: map[string]interface{}{"players": []string{"a", "b"}}},
		{GameID: gameID, ActionIndex: 2, ActionType: models.ActionGameStart},
		{GameID: gameID, ActionIndex: 3, ActorID: "a", ActionType: models.ActionPlayCard},
	}
	require.NoError(t, store.InsertActions(ctx, recs))
	// replays are ignored
	require.NoError(t, store.InsertActions(ctx, recs[2:]))

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_actions WHERE game_id = $1`, gameID).Scan(&n))
	assert.Equal(t, 3, n)

	require.NoError(t, store.InsertActions(ctx, []models.ActionRecord{
		{GameID: gameID, ActionIndex: 4, ActorID: "a", ActionType: models.ActionGameEnd},
	}))
	var status string
	var winner *string
	require.NoError(t, pool.QueryRow(ctx, `SELECT status, winner_id FROM games WHERE id = $1`, gameID).Scan(&status, &winner))
	assert.Equal(t, "completed", status)
	require.NotNil(t, winner)
	assert.Equal(t, "a", *winner)

	changed, err := store.MarkAbandoned(ctx, gameID)
	require.NoError(t, err)
	assert.False(t, changed, "completed games are never abandoned")
}

func TestActionStoreMarkAbandoned(t *testing.T) {
	pool := testPool(t)
	store := NewActionStore(pool)
	ctx := context.Background()
	gameID := uuid.New()
	t.Cleanup(func() { pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, gameID) })

	require.NoError(t, store.InsertActions(ctx, []models.ActionRecord{
		{GameID: gameID, ActionIndex: 1, ActionType: models.ActionGameStart},
	}))
	changed, err := store.MarkAbandoned(ctx, gameID)
	require.NoError(t, err)
	assert.True(t, changed)
}
