package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/AhmedYossry552/examination-system/internal/service"
)

// RemedialWorker triggers the remedial assignment batch on a fixed interval.
// The batch itself is idempotent, so the interval only bounds assignment
// latency, and overlapping with live student activity is safe.
type RemedialWorker struct {
	remedial *service.RemedialService
	interval time.Duration
	log      zerolog.Logger
}

// NewRemedialWorker creates a new RemedialWorker.
func NewRemedialWorker(remedial *service.RemedialService, interval time.Duration, log zerolog.Logger) *RemedialWorker {
	return &RemedialWorker{
		remedial: remedial,
		interval: interval,
		log:      log.With().Str("component", "remedial_worker").Logger(),
	}
}

// Start runs the assignment loop until the context is cancelled. One sweep
// runs immediately on startup so a restart does not delay pending
// assignments by a full interval.
func (w *RemedialWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("RemedialWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("RemedialWorker stopping")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *RemedialWorker) run(ctx context.Context) {
	report, err := w.remedial.RunAssignment(ctx, nil)
	if err != nil {
		w.log.Error().Err(err).Msg("Remedial assignment sweep failed")
		return
	}
	if report.AttemptsCreated > 0 {
		w.log.Info().
			Int("exams_assigned", report.ExamsAssigned).
			Int("attempts_created", report.AttemptsCreated).
			Msg("Remedial assignment sweep completed")
	}
}
