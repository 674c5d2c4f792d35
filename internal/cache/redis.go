// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// publishTimeout bounds a single RPush so a slow Redis cannot stall the queue for long.
const publishTimeout = 2 * time.Second

// ConnectRedis creates a client for addr/db and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Pusher appends values to a Redis list. *redis.Client satisfies it.
type Pusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// journalBuffer is how many records may wait for Redis before new ones are dropped.
const journalBuffer = 1024

// Journal pushes engine actions onto a Redis list for the historian.
// A single worker publishes records in the order they were recorded.
// It implements game.Recorder.
type Journal struct {
	rdb       Pusher
	queueName string
	logger    logrus.FieldLogger

	mu     sync.Mutex
	closed bool
	queue  chan models.ActionRecord
	done   chan struct{}
}

// NewJournal returns a journal writing to queueName and starts its worker. A nil client
// yields a journal that drops every record, so the engine runs without Redis.
func NewJournal(rdb *redis.Client, queueName string, logger logrus.FieldLogger) *Journal {
	if rdb == nil {
		return newJournal(nil, queueName, logger)
	}
	return newJournal(rdb, queueName, logger)
}

func newJournal(rdb Pusher, queueName string, logger logrus.FieldLogger) *Journal {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	j := &Journal{
		rdb:       rdb,
		queueName: queueName,
		logger:    logger,
		queue:     make(chan models.ActionRecord, journalBuffer),
		done:      make(chan struct{}),
	}
	if rdb == nil {
		j.closed = true
		close(j.done)
		return j
	}
	go j.run()
	return j
}

// run publishes queued records one at a time until the queue is closed.
func (j *Journal) run() {
	defer close(j.done)
	for rec := range j.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := j.PublishGameAction(ctx, rec); err != nil {
			j.logger.WithFields(logrus.Fields{
				"game":        rec.GameID,
				"actionIndex": rec.ActionIndex,
			}).WithError(err).Error("failed to publish game action")
		}
		cancel()
	}
}

// RecordAction queues rec for publishing and returns at once.
// Records arriving after Flush, or while the queue is full, are dropped.
func (j *Journal) RecordAction(rec models.ActionRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	select {
	case j.queue <- rec:
	default:
		j.logger.WithFields(logrus.Fields{
			"game":        rec.GameID,
			"actionIndex": rec.ActionIndex,
		}).Error("journal queue full, dropping game action")
	}
}

// PublishGameAction serializes the given record to JSON, then pushes it to the Redis queue.
func (j *Journal) PublishGameAction(ctx context.Context, rec models.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", j.queueName, err)
	}
	return nil
}

// Flush stops accepting records and waits until every queued one is published.
// Call it once, before closing the client.
func (j *Journal) Flush() {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.queue)
	}
	j.mu.Unlock()
	<-j.done
}
