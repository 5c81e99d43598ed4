package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/actionsum/worktrack/internal/metrics"
)

// DefaultInterval is the nominal delay between capture cycles.
const DefaultInterval = 30 * time.Second

// Gate exposes the session's screenshot flag to the worker.
type Gate interface {
	// Enabled reports the flag, read under the session lock.
	Enabled() bool
	// Disable clears the flag after a failure.
	Disable(cause error)
}

// TokenSource yields the current bearer token.
type TokenSource interface {
	Token() (string, bool)
}

type Capturer interface {
	Capture() (image.Image, error)
}

type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, token string) error
}

// History persists upload outcomes. Errors from it are logged and ignored.
type History interface {
	RecordUpload(ctx context.Context, sessionID, filename string, size int, at time.Time) error
	RecordFailure(ctx context.Context, sessionID, kind, message string, at time.Time) error
}

// Worker captures and uploads screenshots while its gate stays enabled.
// The first failure of any kind stops it for good.
type Worker struct {
	Gate      Gate
	Tokens    TokenSource
	Capturer  Capturer
	Uploader  Uploader
	History   History
	Clock     clockwork.Clock
	Interval  time.Duration
	SessionID string
	Logger    zerolog.Logger
}

// Filename names an upload taken at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("shot_%d.png", t.UnixMilli())
}

// Run loops until ctx is cancelled, the gate is disabled, or a cycle fails.
// It returns the *Failure that stopped it, or nil on a requested stop.
func (w *Worker) Run(ctx context.Context) error {
	clock := w.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	metrics.WorkerRunning.Inc()
	defer metrics.WorkerRunning.Dec()

	w.Logger.Info().Dur("interval", interval).Msg("Screenshot worker started")

	for {
		if ctx.Err() != nil || !w.Gate.Enabled() {
			w.Logger.Info().Msg("Screenshot worker stopped")
			return nil
		}

		if err := w.cycle(ctx, clock); err != nil {
			if ctx.Err() != nil {
				w.Logger.Info().Msg("Screenshot worker stopped")
				return nil
			}
			w.fail(ctx, clock, err)
			return err
		}

		select {
		case <-ctx.Done():
			w.Logger.Info().Msg("Screenshot worker stopped")
			return nil
		case <-clock.After(interval):
		}
	}
}

func (w *Worker) cycle(ctx context.Context, clock clockwork.Clock) error {
	token, ok := w.Tokens.Token()
	if !ok {
		return &Failure{Kind: KindToken, Err: ErrMissingToken}
	}

	img, err := w.Capturer.Capture()
	if err != nil {
		return &Failure{Kind: KindCapture, Err: err}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return &Failure{Kind: KindEncode, Err: err}
	}

	now := clock.Now()
	filename := Filename(now)

	// in-flight uploads complete even when a stop is requested
	if err := w.Uploader.Upload(context.WithoutCancel(ctx), buf.Bytes(), filename, token); err != nil {
		return &Failure{Kind: KindUpload, Err: err}
	}

	metrics.UploadsTotal.Inc()
	metrics.UploadBytes.Add(float64(buf.Len()))
	w.Logger.Debug().Str("filename", filename).Int("bytes", buf.Len()).Msg("Screenshot uploaded")

	if w.History != nil {
		if err := w.History.RecordUpload(ctx, w.SessionID, filename, buf.Len(), now); err != nil {
			w.Logger.Warn().Err(err).Msg("Failed to record upload")
		}
	}
	return nil
}

func (w *Worker) fail(ctx context.Context, clock clockwork.Clock, err error) {
	w.Gate.Disable(err)

	kind, _ := KindOf(err)
	metrics.WorkerFailures.WithLabelValues(string(kind)).Inc()
	w.Logger.Error().Err(err).Str("kind", string(kind)).Msg("Screenshot worker stopped after failure")

	if w.History != nil {
		if herr := w.History.RecordFailure(ctx, w.SessionID, string(kind), err.Error(), clock.Now()); herr != nil {
			w.Logger.Warn().Err(herr).Msg("Failed to record worker failure")
		}
	}
}
