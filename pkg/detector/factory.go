package detector

import (
	"fmt"
	"os"

	"github.com/actionsum/worktrack/pkg/integrations/wayland"
	"github.com/actionsum/worktrack/pkg/integrations/x11"
	"github.com/actionsum/worktrack/pkg/window"
)

// New returns the detector for the running display server. Wayland sessions
// are served through XWayland when $DISPLAY is set, and through compositor
// IPC otherwise.
func New() (window.Detector, error) {
	server := DetectDisplayServer()

	if os.Getenv("DISPLAY") != "" {
		d, err := x11.NewDetector()
		if err == nil {
			return d, nil
		}
		if server != "wayland" {
			return nil, err
		}
	}

	if server == "wayland" {
		d, err := wayland.NewDetector()
		if err != nil {
			return nil, fmt.Errorf("wayland session without usable X11 display: %w", err)
		}
		return d, nil
	}

	return nil, fmt.Errorf("no X11 display available (display server: %s)", server)
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
