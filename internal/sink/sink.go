// Package sink forwards emitted usage records off the machine.
package sink

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/actionsum/worktrack/internal/config"
	"github.com/actionsum/worktrack/internal/screenshot"
	"github.com/actionsum/worktrack/internal/tracker"
)

// Sink receives each usage record the tracker emits.
type Sink interface {
	Forward(ctx context.Context, rec tracker.UsageRecord) error
	Name() string
	Close() error
}

// New builds the sink selected by cfg.Sink.Type. tokens supplies the bearer
// token for the HTTP sink.
func New(cfg *config.Config, tokens screenshot.TokenSource, logger zerolog.Logger) (Sink, error) {
	logger = logger.With().Str("component", "sink").Logger()

	switch cfg.Sink.Type {
	case config.SinkLog, "":
		return NewLogSink(logger), nil
	case config.SinkHTTP:
		return NewHTTPSink(cfg.Sink.HTTP.URL, cfg.Sink.HTTP.Timeout, tokens), nil
	case config.SinkRedis:
		return OpenRedisSink(cfg.Sink.Redis, cfg.Agent.UserID)
	default:
		return nil, fmt.Errorf("unknown sink type %q", cfg.Sink.Type)
	}
}

// LogSink writes records to the structured log only.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Forward(_ context.Context, rec tracker.UsageRecord) error {
	s.logger.Info().
		Str("app", rec.App).
		Uint64("duration", rec.Duration).
		Uint64("idle_duration", rec.IdleDuration).
		Time("timestamp", rec.Timestamp).
		Msg("usage")
	return nil
}

func (s *LogSink) Name() string { return config.SinkLog }

func (s *LogSink) Close() error { return nil }
