package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "UNO_HAND_SIZE", "UNO_MAX_PLAYERS", "UNO_SHUFFLE_SEED", "REDIS_ADDR", "REDIS_DB",
		"HISTORIAN_QUEUE_NAME", "HISTORIAN_BATCH_SIZE", "HISTORIAN_FLUSH_MS", "LOG_LEVEL",
		"PG_HOST", "PG_PORT", "PG_DATABASE", "UNO_DEMO_TABLE", "GAME_INACTIVITY_TIMEOUT_SEC",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7, cfg.HandSize)
	assert.Equal(t, 10, cfg.MaxPlayers)
	assert.Zero(t, cfg.ShuffleSeed)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, DefaultQueueName, cfg.QueueName)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.FlushDelay)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 10*time.Minute, cfg.InactivityTimeout)
	assert.False(t, cfg.DemoTable)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("UNO_HAND_SIZE", "5")
	t.Setenv("UNO_MAX_PLAYERS", "4")
	t.Setenv("UNO_SHUFFLE_SEED", "42")
	t.Setenv("HISTORIAN_QUEUE_NAME", "test_actions")
	t.Setenv("HISTORIAN_FLUSH_MS", "50")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNO_DEMO_TABLE", "true")
	t.Setenv("POSTGRES_USER", "uno")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "5433")
	t.Setenv("PG_DATABASE", "games")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5, cfg.HandSize)
	assert.Equal(t, 4, cfg.MaxPlayers)
	assert.Equal(t, int64(42), cfg.ShuffleSeed)
	assert.Equal(t, "test_actions", cfg.QueueName)
	assert.Equal(t, 50*time.Millisecond, cfg.FlushDelay)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.DemoTable)
	assert.Equal(t, "postgres://uno:secret@db:5433/games", cfg.PostgresURL())
}

func TestPostgresURLEscapesCredentials(t *testing.T) {
	cfg := Config{
		PostgresUser:     "uno@prod",
		PostgresPassword: "p@ss/w:rd?#",
		PGHost:           "db",
		PGPort:           "5432",
		PGDatabase:       "games",
	}
	raw := cfg.PostgresURL()

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/games", u.Path)
	assert.Equal(t, "uno@prod", u.User.Username())
	pass, ok := u.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?#", pass)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("UNO_MAX_PLAYERS", "lots")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxPlayers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("UNO_HAND_SIZE", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("UNO_HAND_SIZE", "7")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load()
	assert.Error(t, err)
}
