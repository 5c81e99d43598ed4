package agent

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/actionsum/worktrack/internal/tracker"
)

// Ticker is the part of the tracking service the poller drives.
type Ticker interface {
	Tick() *tracker.UsageRecord
}

// Poller is the built-in host loop: it ticks the service every interval and
// dispatches completed records. It is the only tick caller while it runs.
type Poller struct {
	service  Ticker
	dispatch func(ctx context.Context, rec tracker.UsageRecord)
	interval time.Duration
	clock    clockwork.Clock
	logger   zerolog.Logger
}

func NewPoller(service Ticker, dispatch func(context.Context, tracker.UsageRecord), interval time.Duration, clock clockwork.Clock, logger zerolog.Logger) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		service:  service,
		dispatch: dispatch,
		interval: interval,
		clock:    clock,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Run ticks until ctx is cancelled and then returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info().Dur("interval", p.interval).Msg("Starting poll loop")

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Poll loop stopped")
			return ctx.Err()
		case <-ticker.Chan():
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	rec := p.service.Tick()
	if rec == nil {
		return
	}

	p.logger.Debug().
		Str("app", rec.App).
		Uint64("duration", rec.Duration).
		Uint64("idle_duration", rec.IdleDuration).
		Msg("Usage record emitted")

	if p.dispatch != nil {
		p.dispatch(ctx, *rec)
	}
}
