package agent

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/worktrack/internal/reporter"
	"github.com/actionsum/worktrack/internal/screenshot"
	"github.com/actionsum/worktrack/internal/tracker"
)

type fakeSink struct {
	mu  sync.Mutex
	got []tracker.UsageRecord
	err error
}

func (s *fakeSink) Forward(_ context.Context, rec tracker.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, rec)
	return nil
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) Close() error { return nil }

func (s *fakeSink) records() []tracker.UsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tracker.UsageRecord(nil), s.got...)
}

// everyOther emits a record on every second tick.
type everyOther struct {
	mu    sync.Mutex
	ticks int
}

func (e *everyOther) Tick() *tracker.UsageRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ticks++
	if e.ticks%2 == 1 {
		return nil
	}
	return &tracker.UsageRecord{App: "code", Duration: 2}
}

func (e *everyOther) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

func TestForwarderDispatch(t *testing.T) {
	s := &fakeSink{}
	rep := reporter.New(clockwork.NewFakeClock())
	f := NewForwarder(s, rep, zerolog.Nop())

	f.Dispatch(context.Background(), tracker.UsageRecord{App: "code", Duration: 5})
	f.Dispatch(context.Background(), tracker.UsageRecord{App: "firefox", Duration: 3})

	assert.Len(t, s.records(), 2)
	report := rep.GenerateReport()
	assert.Equal(t, int64(8), report.TotalSeconds)
}

func TestForwarderSinkErrorIsNotFatal(t *testing.T) {
	var buf bytes.Buffer
	s := &fakeSink{err: errors.New("connection refused")}
	rep := reporter.New(clockwork.NewFakeClock())
	f := NewForwarder(s, rep, zerolog.New(&buf))

	f.Dispatch(context.Background(), tracker.UsageRecord{App: "code", Duration: 5})

	assert.Contains(t, buf.String(), "Failed to forward usage record")
	assert.Contains(t, buf.String(), `"sink":"fake"`)
	assert.Equal(t, int64(5), rep.GenerateReport().TotalSeconds, "summary still counts the record")
}

func TestForwarderWithoutSink(t *testing.T) {
	rep := reporter.New(clockwork.NewFakeClock())
	f := NewForwarder(nil, rep, zerolog.Nop())

	f.Dispatch(context.Background(), tracker.UsageRecord{App: "code", Duration: 1})
	assert.Len(t, rep.GenerateReport().Apps, 1)
}

func TestPollerTicksEveryInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := &everyOther{}

	var (
		mu         sync.Mutex
		dispatched []tracker.UsageRecord
	)
	p := NewPoller(svc, func(_ context.Context, rec tracker.UsageRecord) {
		mu.Lock()
		defer mu.Unlock()
		dispatched = append(dispatched, rec)
	}, time.Second, clock, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	for i := 1; i <= 4; i++ {
		clock.Advance(time.Second)
		require.Eventually(t, func() bool { return svc.count() == i }, time.Second, 5*time.Millisecond)
	}

	mu.Lock()
	assert.Len(t, dispatched, 2)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPollerDrivesRealService(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := tracker.NewService(staticApp("code"), staticApp("code"), blockingRunner{}, clock, zerolog.Nop())
	defer svc.Close()

	s := &fakeSink{}
	rep := reporter.New(clock)
	fwd := NewForwarder(s, rep, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewPoller(svc, fwd.Dispatch, time.Second, clock, zerolog.Nop())
	go func() { _ = p.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	require.True(t, svc.Start())

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return svc.Snapshot().CurrentApp == "code" }, time.Second, 5*time.Millisecond)

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return len(s.records()) == 1 }, time.Second, 5*time.Millisecond)

	rec := s.records()[0]
	assert.Equal(t, "code", rec.App)
	assert.Equal(t, uint64(1), rec.Duration)
}

type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, _ screenshot.Gate, _ string) error {
	<-ctx.Done()
	return nil
}

type staticApp string

func (a staticApp) CurrentApp() string { return string(a) }

func (a staticApp) IdleSeconds() uint64 { return 0 }
