package screenshot

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Launcher builds and runs one Worker per tracking session.
type Launcher struct {
	Tokens   TokenSource
	Capturer Capturer
	Uploader Uploader
	History  History
	Clock    clockwork.Clock
	Interval time.Duration
	Logger   zerolog.Logger
}

func (l *Launcher) Run(ctx context.Context, gate Gate, sessionID string) error {
	w := &Worker{
		Gate:      gate,
		Tokens:    l.Tokens,
		Capturer:  l.Capturer,
		Uploader:  l.Uploader,
		History:   l.History,
		Clock:     l.Clock,
		Interval:  l.Interval,
		SessionID: sessionID,
		Logger:    l.Logger.With().Str("session", sessionID).Logger(),
	}
	return w.Run(ctx)
}
