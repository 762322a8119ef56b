package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AhmedYossry552/examination-system/internal/config"
	"github.com/AhmedYossry552/examination-system/internal/model"
	"github.com/AhmedYossry552/examination-system/internal/repository"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// NotificationWorker drains queued notification events from Redis and
// persists them in batches. Requests only ever enqueue; this worker is the
// single writer of the notifications table.
type NotificationWorker struct {
	repo *repository.NotificationRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewNotificationWorker creates a new NotificationWorker.
func NewNotificationWorker(repo *repository.NotificationRepository, rdb *redis.Client, log zerolog.Logger) *NotificationWorker {
	return &NotificationWorker{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "notification_worker").Logger(),
	}
}

// Start runs the drain loop until the context is cancelled. Events buffer up
// to BatchSize or BatchTimeout before a flush.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotificationWorker started")

	buffer := make([]model.NotificationEvent, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlush = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.NotificationQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // queue empty, loop back to the flush timer
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var event model.NotificationEvent
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed notification event")
			continue
		}
		buffer = append(buffer, event)
	}
}

// flushSafe attempts the bulk COPY, then per-row inserts, requeueing rows the
// database rejected transiently.
func (w *NotificationWorker) flushSafe(ctx context.Context, batch []model.NotificationEvent) {
	if err := w.repo.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *NotificationWorker) fallbackInsert(ctx context.Context, batch []model.NotificationEvent) {
	requeueList := make([]model.NotificationEvent, 0)
	for _, event := range batch {
		if err := w.repo.Insert(ctx, event); err != nil {
			w.log.Error().Err(err).Int("student_id", event.StudentID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, event)
		}
	}
	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *NotificationWorker) requeue(ctx context.Context, events []model.NotificationEvent) {
	pipe := w.rdb.Pipeline()
	for _, event := range events {
		data, _ := json.Marshal(event)
		pipe.RPush(ctx, config.WorkerKey.NotificationQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue notification events. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(events)).Msg("Requeued failed notification events")
	// Avoid thrashing while the database is down.
	time.Sleep(2 * time.Second)
}

func (w *NotificationWorker) shutdown(buffer []model.NotificationEvent) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
