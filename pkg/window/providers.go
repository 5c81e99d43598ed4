package window

import (
	"errors"
	"image"

	"github.com/rs/zerolog/log"
)

// Providers adapts a Detector into ActiveWindowProvider and IdleTimeProvider.
// A nil detector is valid: every lookup degrades to its sentinel.
type Providers struct {
	detector Detector
}

// NewProviders wraps d. d may be nil when no display server is reachable.
func NewProviders(d Detector) *Providers {
	return &Providers{detector: d}
}

func (p *Providers) CurrentApp() string {
	if p.detector == nil {
		return UnknownApp
	}

	info, err := p.detector.GetFocusedWindow()
	if err != nil {
		log.Debug().Err(err).Msg("focused window lookup failed")
		return UnknownApp
	}
	if info == nil || info.AppName == "" {
		return UnknownApp
	}
	return info.AppName
}

func (p *Providers) IdleSeconds() uint64 {
	if p.detector == nil {
		return 0
	}

	info, err := p.detector.GetIdleInfo()
	if err != nil {
		log.Debug().Err(err).Msg("idle lookup failed")
		return 0
	}
	if info == nil || info.IdleTime < 0 {
		return 0
	}
	return uint64(info.IdleTime)
}

// ErrNoCapture is returned by the grabber of a detector that cannot capture.
var ErrNoCapture = errors.New("screen capture is not available")

// Grabber returns d as a ScreenGrabber when it can capture, and otherwise a
// grabber whose every capture fails with ErrNoCapture.
func Grabber(d Detector) ScreenGrabber {
	if g, ok := d.(ScreenGrabber); ok {
		return g
	}
	return noCapture{}
}

type noCapture struct{}

func (noCapture) Capture() (image.Image, error) {
	return nil, ErrNoCapture
}
