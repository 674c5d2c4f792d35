// Package historian drains the Redis action journal into Postgres.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Queue is the blocking pop the service reads from. *redis.Client satisfies it.
type Queue interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Store persists batches of actions.
type Store interface {
	InsertActions(ctx context.Context, recs []models.ActionRecord) error
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error)
}

// Options tune batching and the inactivity sweep.
type Options struct {
	QueueName  string
	BatchSize  int
	FlushDelay time.Duration
	// Inactivity is how long a game may stay silent before it is marked abandoned.
	Inactivity time.Duration
	// SweepInterval is how often the inactivity check runs.
	SweepInterval time.Duration
	// PopTimeout bounds each BLPop so cancellation is noticed.
	PopTimeout time.Duration
}

func (o *Options) defaults() {
	if o.BatchSize < 1 {
		o.BatchSize = 20
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = 500 * time.Millisecond
	}
	if o.Inactivity <= 0 {
		o.Inactivity = 10 * time.Minute
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = 3 * time.Second
	}
}

// Service captures game actions from the queue and marks games abandoned when
// they go quiet for longer than the inactivity threshold.
type Service struct {
	queue  Queue
	store  Store
	opts   Options
	logger logrus.FieldLogger

	lastActivity sync.Map // map[uuid.UUID]time.Time

	batchMu sync.Mutex
	batch   []models.ActionRecord

	now func() time.Time
}

func NewService(queue Queue, store Store, opts Options, logger logrus.FieldLogger) *Service {
	opts.defaults()
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		queue:  queue,
		store:  store,
		opts:   opts,
		logger: logger,
		batch:  make([]models.ActionRecord, 0, opts.BatchSize),
		now:    time.Now,
	}
}

// Run starts the read loop and the inactivity loop and blocks until ctx is done.
// Whatever is still batched is flushed before returning.
func (hs *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		hs.readLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		hs.flushLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		hs.inactivityLoop(ctx)
	}()

	hs.logger.WithField("queue", hs.opts.QueueName).Info("uno-historian service started")
	<-ctx.Done()
	wg.Wait()

	// ctx is gone, give the final flush its own deadline
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hs.Flush(flushCtx)
	hs.logger.Info("uno-historian shutting down")
}

// readLoop continuously uses BLPop to retrieve messages from the queue.
func (hs *Service) readLoop(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := hs.queue.BLPop(ctx, hs.opts.PopTimeout, hs.opts.QueueName).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				hs.logger.WithError(err).Error("BLPop failed")
				// avoid spinning while Redis is down
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
			}
			continue
		}
		// res[0] is the queue name and res[1] the payload
		if len(res) < 2 {
			continue
		}
		hs.HandlePayload(ctx, res[1])
	}
}

func (hs *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.Flush(ctx)
		}
	}
}

// HandlePayload decodes one queued record and batches it.
func (hs *Service) HandlePayload(ctx context.Context, payload string) {
	var rec models.ActionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		hs.logger.WithError(err).Warn("invalid action record")
		return
	}
	if rec.GameID == uuid.Nil {
		hs.logger.Warn("action record without game id")
		return
	}

	if rec.ActionType == models.ActionGameEnd {
		hs.lastActivity.Delete(rec.GameID)
	} else {
		hs.lastActivity.Store(rec.GameID, hs.now())
	}
	hs.appendToBatch(ctx, rec)
}

// appendToBatch adds a record and flushes when the batch is full.
func (hs *Service) appendToBatch(ctx context.Context, rec models.ActionRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, rec)
	if len(hs.batch) >= hs.opts.BatchSize {
		hs.flushLocked(ctx)
	}
}

// Flush writes the current batch in a single transaction.
func (hs *Service) Flush(ctx context.Context) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushLocked(ctx)
}

func (hs *Service) flushLocked(ctx context.Context) {
	if len(hs.batch) == 0 {
		return
	}
	batch := make([]models.ActionRecord, len(hs.batch))
	copy(batch, hs.batch)

	if err := hs.store.InsertActions(ctx, batch); err != nil {
		// keep the records for the next flush
		hs.logger.WithError(err).WithField("size", len(batch)).Error("flush to database failed")
		return
	}
	hs.batch = hs.batch[:0]
	hs.logger.WithField("size", len(batch)).Debug("flushed actions to database")
}

// Pending is the number of records waiting for the next flush.
func (hs *Service) Pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}

func (hs *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.SweepInactive(ctx)
		}
	}
}

// SweepInactive marks every game silent for longer than the inactivity threshold as abandoned.
// Pending actions are flushed first so the game row exists. A game that records a new
// action while the sweep runs is left alone.
func (hs *Service) SweepInactive(ctx context.Context) {
	type staleGame struct {
		id   uuid.UUID
		last time.Time
	}
	now := hs.now()
	var stale []staleGame
	hs.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if ok1 && ok2 && now.Sub(last) > hs.opts.Inactivity {
			stale = append(stale, staleGame{id: gameID, last: last})
		}
		return true
	})
	if len(stale) == 0 {
		return
	}

	hs.Flush(ctx)
	for _, g := range stale {
		// fails when HandlePayload stored a newer timestamp since the Range
		if !hs.lastActivity.CompareAndDelete(g.id, g.last) {
			continue
		}
		log := hs.logger.WithField("game", g.id)
		changed, err := hs.store.MarkAbandoned(ctx, g.id)
		if err != nil {
			log.WithError(err).Error("failed to mark game abandoned")
			// retry on the next sweep unless the game moved on meanwhile
			hs.lastActivity.LoadOrStore(g.id, g.last)
			continue
		}
		if changed {
			log.Info("marked game abandoned due to inactivity")
		}
	}
}
