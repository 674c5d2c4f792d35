// internal/config/config.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list the engine journals actions to and the historian drains.
const DefaultQueueName = "uno_actions"

// Config holds every setting read from the environment.
type Config struct {
	Port string

	HandSize    int
	MaxPlayers  int
	ShuffleSeed int64
	DemoTable   bool // seat the sample players and deal on startup

	RedisAddr string
	RedisDB   int

	QueueName         string
	BatchSize         int
	FlushDelay        time.Duration
	InactivityTimeout time.Duration // historian marks silent games abandoned after this

	PostgresUser     string
	PostgresPassword string
	PGHost           string
	PGPort           string
	PGDatabase       string

	LogLevel logrus.Level
}

// Load reads the configuration from the environment, applying defaults for anything unset.
// A .env file is picked up by the godotenv autoload import in the commands.
func Load() (Config, error) {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		HandSize:          getEnvInt("UNO_HAND_SIZE", 7),
		MaxPlayers:        getEnvInt("UNO_MAX_PLAYERS", 10),
		ShuffleSeed:       int64(getEnvInt("UNO_SHUFFLE_SEED", 0)),
		DemoTable:         getEnvBool("UNO_DEMO_TABLE", false),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		QueueName:         getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName),
		BatchSize:         getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		FlushDelay:        time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		InactivityTimeout: time.Duration(getEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
		PostgresUser:      os.Getenv("POSTGRES_USER"),
		PostgresPassword:  os.Getenv("POSTGRES_PASSWORD"),
		PGHost:            getEnv("PG_HOST", "localhost"),
		PGPort:            getEnv("PG_PORT", "5432"),
		PGDatabase:        getEnv("PG_DATABASE", "uno"),
		LogLevel:          level,
	}

	if cfg.HandSize < 1 {
		return Config{}, fmt.Errorf("UNO_HAND_SIZE must be at least 1, got %d", cfg.HandSize)
	}
	if cfg.MaxPlayers < 0 {
		return Config{}, fmt.Errorf("UNO_MAX_PLAYERS must not be negative, got %d", cfg.MaxPlayers)
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return cfg, nil
}

// PostgresURL builds the connection string the same way for the server and the historian.
// Credentials are escaped.
func (c Config) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   net.JoinHostPort(c.PGHost, c.PGPort),
		Path:   "/" + c.PGDatabase,
	}
	return u.String()
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// getEnvBool parses an environment variable as a bool, else a default value.
func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
