// Package wayland reads the focused application from wlroots-style
// compositors over their IPC tools. It cannot capture the screen or read
// idle time; sessions that need either should run through XWayland.
package wayland

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/actionsum/worktrack/pkg/window"
)

const (
	CompositorSway     = "sway"
	CompositorHyprland = "hyprland"
)

type runFunc func(name string, args ...string) ([]byte, error)

func execOutput(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Detector implements window.Detector for sway and Hyprland.
type Detector struct {
	compositor string
	run        runFunc
}

// NewDetector returns a detector for the compositor named by the session
// environment, or an error when none is supported.
func NewDetector() (*Detector, error) {
	compositor := DetectCompositor()
	if compositor == "" {
		return nil, fmt.Errorf("no supported wayland compositor (sway or hyprland)")
	}

	d := &Detector{compositor: compositor, run: execOutput}
	if !d.IsAvailable() {
		return nil, fmt.Errorf("%s IPC tool not found in PATH", compositor)
	}
	return d, nil
}

// DetectCompositor names the running compositor from its IPC environment.
func DetectCompositor() string {
	switch {
	case os.Getenv("SWAYSOCK") != "":
		return CompositorSway
	case os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "":
		return CompositorHyprland
	default:
		return ""
	}
}

func (d *Detector) Compositor() string {
	return d.compositor
}

func (d *Detector) IsAvailable() bool {
	tool := "swaymsg"
	if d.compositor == CompositorHyprland {
		tool = "hyprctl"
	}
	_, err := exec.LookPath(tool)
	return err == nil
}

func (d *Detector) GetDisplayServer() string {
	return "wayland"
}

func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	var (
		info *window.WindowInfo
		err  error
	)
	switch d.compositor {
	case CompositorSway:
		var out []byte
		if out, err = d.run("swaymsg", "-t", "get_tree", "-r"); err != nil {
			return nil, fmt.Errorf("failed to execute swaymsg: %w", err)
		}
		info, err = parseSwayTree(out)
	case CompositorHyprland:
		var out []byte
		if out, err = d.run("hyprctl", "activewindow", "-j"); err != nil {
			return nil, fmt.Errorf("failed to execute hyprctl: %w", err)
		}
		info, err = parseHyprlandWindow(out)
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %q", d.compositor)
	}
	if err != nil {
		return nil, err
	}

	info.DisplayServer = "wayland"
	if info.ProcessName == "" {
		info.ProcessName = info.AppName
	}
	return info, nil
}

type swayNode struct {
	Focused          bool       `json:"focused"`
	Name             string     `json:"name"`
	AppID            string     `json:"app_id"`
	PID              int        `json:"pid"`
	WindowProperties *struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func parseSwayTree(data []byte) (*window.WindowInfo, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	node := findFocused(&root)
	if node == nil {
		return nil, fmt.Errorf("no focused window in sway tree")
	}

	app := node.AppID
	if app == "" && node.WindowProperties != nil {
		app = node.WindowProperties.Class // XWayland client
	}
	return &window.WindowInfo{
		AppName:     app,
		WindowTitle: node.Name,
		ProcessName: processName(node.PID),
	}, nil
}

func findFocused(n *swayNode) *swayNode {
	if n.Focused {
		return n
	}
	for i := range n.Nodes {
		if f := findFocused(&n.Nodes[i]); f != nil {
			return f
		}
	}
	for i := range n.FloatingNodes {
		if f := findFocused(&n.FloatingNodes[i]); f != nil {
			return f
		}
	}
	return nil
}

type hyprlandWindow struct {
	Class string `json:"class"`
	Title string `json:"title"`
	PID   int    `json:"pid"`
}

func parseHyprlandWindow(data []byte) (*window.WindowInfo, error) {
	var w hyprlandWindow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}
	return &window.WindowInfo{
		AppName:     w.Class,
		WindowTitle: w.Title,
		ProcessName: processName(w.PID),
	}, nil
}

func processName(pid int) string {
	if pid <= 0 {
		return ""
	}
	comm, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/comm")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(comm))
}

// GetIdleInfo reports lock state only. Wayland gives clients no idle query,
// so IdleTime is always 0.
func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	return &window.IdleInfo{IsLocked: d.isScreenLocked()}, nil
}

var lockers = []string{"swaylock", "waylock", "gtklock", "hyprlock"}

func (d *Detector) isScreenLocked() bool {
	for _, locker := range lockers {
		if _, err := d.run("pgrep", "-x", locker); err == nil {
			return true
		}
	}

	out, err := d.run("loginctl", "show-session", "-p", "LockedHint")
	return err == nil && strings.Contains(string(out), "LockedHint=yes")
}

func (d *Detector) Close() error {
	return nil
}
