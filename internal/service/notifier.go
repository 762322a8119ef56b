package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AhmedYossry552/examination-system/internal/config"
	"github.com/AhmedYossry552/examination-system/internal/model"
)

// MonitorEvent is one live activity record published on an exam's monitor
// channel for instructor dashboards.
type MonitorEvent struct {
	Type       string     `json:"type"`
	ExamID     uuid.UUID  `json:"exam_id"`
	AttemptID  uuid.UUID  `json:"attempt_id"`
	StudentID  int        `json:"student_id"`
	QuestionID *uuid.UUID `json:"question_id,omitempty"`
	At         time.Time  `json:"at"`
}

// Monitor event types.
const (
	MonitorEventStarted   = "attempt_started"
	MonitorEventAnswered  = "answer_recorded"
	MonitorEventSubmitted = "attempt_submitted"
)

// Notifier fans engine events out through Redis: durable notification events
// onto the worker queue, live activity onto the per-exam monitor channel.
// Both paths are fire-and-forget; a Redis hiccup must never fail the request
// that produced the event.
type Notifier struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewNotifier creates a new Notifier.
func NewNotifier(rdb *redis.Client, log zerolog.Logger) *Notifier {
	return &Notifier{
		rdb: rdb,
		log: log.With().Str("component", "notifier").Logger(),
	}
}

// Enqueue pushes a notification event onto the worker queue.
func (n *Notifier) Enqueue(ctx context.Context, event model.NotificationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Error().Err(err).Msg("Failed to marshal notification event")
		return
	}
	if err := n.rdb.RPush(ctx, config.WorkerKey.NotificationQueue, payload).Err(); err != nil {
		n.log.Error().Err(err).Int("student_id", event.StudentID).Msg("Failed to enqueue notification event")
	}
}

// PublishMonitor broadcasts a live event on the exam's monitor channel.
func (n *Notifier) PublishMonitor(ctx context.Context, event MonitorEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Error().Err(err).Msg("Failed to marshal monitor event")
		return
	}
	channel := config.CacheKey.ExamMonitorChannel(event.ExamID.String())
	if err := n.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		n.log.Error().Err(err).Str("channel", channel).Msg("Failed to publish monitor event")
	}
}
