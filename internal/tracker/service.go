package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/actionsum/worktrack/internal/metrics"
	"github.com/actionsum/worktrack/internal/screenshot"
	"github.com/actionsum/worktrack/pkg/window"
)

// WorkerRunner runs the screenshot worker of one session until it stops.
type WorkerRunner interface {
	Run(ctx context.Context, gate screenshot.Gate, sessionID string) error
}

// WorkerStatus describes the most recent screenshot worker.
type WorkerStatus struct {
	Running         bool      `json:"running"`
	SessionID       string    `json:"session_id,omitempty"`
	LastFailureKind string    `json:"last_failure_kind,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	LastFailureAt   time.Time `json:"last_failure_at,omitempty"`
}

// Service owns the tracking session. All session access goes through mu.
type Service struct {
	mu      sync.Mutex
	session Session
	gen     uint64
	cancel  context.CancelFunc

	statusMu sync.Mutex
	status   WorkerStatus

	windows window.ActiveWindowProvider
	idle    window.IdleTimeProvider
	workers WorkerRunner
	clock   clockwork.Clock
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

func NewService(windows window.ActiveWindowProvider, idle window.IdleTimeProvider, workers WorkerRunner, clock clockwork.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		windows: windows,
		idle:    idle,
		workers: workers,
		clock:   clock,
		logger:  logger.With().Str("component", "tracker").Logger(),
	}
}

// Start begins a tracking session and spawns its screenshot worker.
// It reports false when a session is already running.
func (s *Service) Start() bool {
	return s.begin(0)
}

// Resume begins a session whose start time lies elapsed seconds in the
// past, so Elapsed continues from a previously reported value.
func (s *Service) Resume(elapsed uint64) bool {
	return s.begin(time.Duration(elapsed) * time.Second)
}

func (s *Service) begin(backdate time.Duration) bool {
	s.mu.Lock()
	if s.session.IsTracking {
		s.mu.Unlock()
		s.logger.Debug().Msg("Start ignored, already tracking")
		return false
	}

	now := s.clock.Now()
	s.gen++
	s.session = Session{
		ID:                uuid.NewString(),
		IsTracking:        true,
		StartTime:         now.Add(-backdate),
		ScreenshotEnabled: true,
		LastActivity:      now,
		LastIdleCheck:     now,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	gen, id := s.gen, s.session.ID
	s.mu.Unlock()

	metrics.Tracking.Set(1)
	s.logger.Info().Str("session", id).Dur("resumed", backdate).Msg("Tracking started")

	s.spawn(ctx, gen, id)
	return true
}

func (s *Service) spawn(ctx context.Context, gen uint64, id string) {
	s.statusMu.Lock()
	s.status.Running = true
	s.status.SessionID = id
	s.statusMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.workers.Run(ctx, &sessionGate{svc: s, gen: gen}, id)
		s.workerExited(id, err)
	}()
}

func (s *Service) workerExited(id string, err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	if s.status.SessionID == id {
		s.status.Running = false
	}
	if err != nil {
		kind, _ := screenshot.KindOf(err)
		s.status.LastFailureKind = string(kind)
		s.status.LastError = err.Error()
		s.status.LastFailureAt = s.clock.Now()
	}
}

// Stop ends the session. The start time is kept so Elapsed stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	wasTracking := s.session.IsTracking
	s.session.IsTracking = false
	s.session.ScreenshotEnabled = false
	s.session.Current = nil
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	metrics.Tracking.Set(0)
	if wasTracking {
		s.logger.Info().Msg("Tracking stopped")
	}
}

// Elapsed returns whole seconds since the session start, or 0 if tracking
// never started.
func (s *Service) Elapsed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.elapsed(s.clock.Now())
}

func (s *Service) IsTracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.IsTracking
}

// Tick samples the providers and advances the session. It returns the
// completed usage record, if any. Concurrent callers are not supported.
func (s *Service) Tick() *UsageRecord {
	if !s.IsTracking() {
		return nil
	}

	app := s.windows.CurrentApp()
	idle := s.idle.IdleSeconds()

	s.mu.Lock()
	rec, kind := advance(&s.session, app, idle, s.clock.Now())
	tracking := s.session.IsTracking
	accumulated := s.session.AccumulatedIdle
	s.mu.Unlock()

	if !tracking {
		return nil
	}

	metrics.TicksTotal.Inc()
	metrics.IdleSeconds.Set(float64(accumulated))

	if rec != nil {
		metrics.RecordsEmitted.WithLabelValues(string(kind)).Inc()
		metrics.UsageSeconds.WithLabelValues(rec.App).Add(float64(rec.Duration))
		s.logger.Debug().
			Str("app", rec.App).
			Uint64("duration", rec.Duration).
			Uint64("idle", rec.IdleDuration).
			Str("transition", string(kind)).
			Msg("Usage record emitted")
	}
	return rec
}

func (s *Service) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.state(s.clock.Now())
}

func (s *Service) Worker() WorkerStatus {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}

// Close stops tracking and waits for the worker goroutine to exit.
func (s *Service) Close() {
	s.Stop()
	s.wg.Wait()
}

// sessionGate binds a worker to the session generation that spawned it.
// A worker outliving its session can neither observe nor clear the flag of
// a later one.
type sessionGate struct {
	svc *Service
	gen uint64
}

func (g *sessionGate) Enabled() bool {
	g.svc.mu.Lock()
	defer g.svc.mu.Unlock()
	return g.svc.gen == g.gen && g.svc.session.ScreenshotEnabled
}

func (g *sessionGate) Disable(cause error) {
	g.svc.mu.Lock()
	if g.svc.gen == g.gen {
		g.svc.session.ScreenshotEnabled = false
	}
	g.svc.mu.Unlock()

	g.svc.logger.Warn().Err(cause).Msg("Screenshots disabled for this session")
}
