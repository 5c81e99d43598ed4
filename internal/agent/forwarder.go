// Package agent hosts the tracking service inside the worktrack process.
package agent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/actionsum/worktrack/internal/metrics"
	"github.com/actionsum/worktrack/internal/sink"
	"github.com/actionsum/worktrack/internal/tracker"
)

// Recorder collects records for the run summary.
type Recorder interface {
	Add(rec tracker.UsageRecord)
}

// Forwarder hands each emitted record to the sink and the run summary.
// Forwarding failures are logged and counted; they never reach the tracker.
type Forwarder struct {
	sink     sink.Sink
	recorder Recorder
	logger   zerolog.Logger
}

func NewForwarder(s sink.Sink, recorder Recorder, logger zerolog.Logger) *Forwarder {
	return &Forwarder{
		sink:     s,
		recorder: recorder,
		logger:   logger.With().Str("component", "forwarder").Logger(),
	}
}

func (f *Forwarder) Dispatch(ctx context.Context, rec tracker.UsageRecord) {
	if f.recorder != nil {
		f.recorder.Add(rec)
	}
	if f.sink == nil {
		return
	}

	if err := f.sink.Forward(ctx, rec); err != nil {
		metrics.ForwardErrors.WithLabelValues(f.sink.Name()).Inc()
		f.logger.Warn().
			Err(err).
			Str("sink", f.sink.Name()).
			Str("app", rec.App).
			Uint64("duration", rec.Duration).
			Msg("Failed to forward usage record")
	}
}
