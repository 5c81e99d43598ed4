package window

import "image"

// UnknownApp is reported when the foreground application cannot be determined.
const UnknownApp = "Unknown"

// WindowInfo represents information about the currently focused window
type WindowInfo struct {
	AppName       string
	WindowTitle   string
	ProcessName   string
	DisplayServer string
}

// IdleInfo represents system idle/lock state
type IdleInfo struct {
	IsIdle   bool
	IsLocked bool
	IdleTime int64 // seconds
}

// Detector is the interface that window detection backends satisfy
type Detector interface {
	// GetFocusedWindow returns information about the currently focused window
	GetFocusedWindow() (*WindowInfo, error)

	// GetIdleInfo returns information about system idle/lock state
	GetIdleInfo() (*IdleInfo, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type
	GetDisplayServer() string

	Close() error
}

// ScreenGrabber is implemented by detectors that can also capture the screen.
type ScreenGrabber interface {
	Capture() (image.Image, error)
}

// ActiveWindowProvider reports the identifier of the foreground application.
// Implementations never fail; they return UnknownApp instead.
type ActiveWindowProvider interface {
	CurrentApp() string
}

// IdleTimeProvider reports how long the user has been idle, in seconds.
// Implementations return 0 when the value cannot be read.
type IdleTimeProvider interface {
	IdleSeconds() uint64
}
