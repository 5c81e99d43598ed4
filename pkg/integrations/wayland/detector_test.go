package wayland

import (
	"errors"
	"strings"
	"testing"
)

const swayTree = `{
  "name": "root", "focused": false,
  "nodes": [{
    "name": "eDP-1", "focused": false,
    "nodes": [{
      "name": "1", "focused": false,
      "nodes": [
        {"name": "notes.md - Code", "app_id": "code", "focused": false, "pid": 0, "nodes": []},
        {"name": "Mozilla Firefox", "app_id": "org.mozilla.firefox", "focused": true, "pid": 0, "nodes": []}
      ],
      "floating_nodes": []
    }]
  }]
}`

const swayTreeXWayland = `{
  "name": "root", "focused": false,
  "nodes": [{
    "name": "1", "focused": false, "nodes": [],
    "floating_nodes": [
      {"name": "Steam", "app_id": null, "focused": true, "window_properties": {"class": "Steam"}, "nodes": []}
    ]
  }]
}`

func TestParseSwayTree(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantApp   string
		wantTitle string
		wantErr   bool
	}{
		{name: "native window", input: swayTree, wantApp: "org.mozilla.firefox", wantTitle: "Mozilla Firefox"},
		{name: "floating xwayland window", input: swayTreeXWayland, wantApp: "Steam", wantTitle: "Steam"},
		{name: "nothing focused", input: `{"name":"root","nodes":[]}`, wantErr: true},
		{name: "garbage", input: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parseSwayTree([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSwayTree() = %+v, want error", info)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSwayTree() error = %v", err)
			}
			if info.AppName != tt.wantApp {
				t.Errorf("AppName = %q, want %q", info.AppName, tt.wantApp)
			}
			if info.WindowTitle != tt.wantTitle {
				t.Errorf("WindowTitle = %q, want %q", info.WindowTitle, tt.wantTitle)
			}
		})
	}
}

func TestParseHyprlandWindow(t *testing.T) {
	info, err := parseHyprlandWindow([]byte(`{"address":"0x5","class":"kitty","title":"~/src","pid":0}`))
	if err != nil {
		t.Fatalf("parseHyprlandWindow() error = %v", err)
	}
	if info.AppName != "kitty" || info.WindowTitle != "~/src" {
		t.Errorf("parseHyprlandWindow() = %+v", info)
	}

	// hyprctl prints an empty object when no window is focused.
	info, err = parseHyprlandWindow([]byte(`{}`))
	if err != nil {
		t.Fatalf("parseHyprlandWindow({}) error = %v", err)
	}
	if info.AppName != "" {
		t.Errorf("AppName = %q, want empty", info.AppName)
	}
}

type fakeRun struct {
	outputs map[string]string
	calls   []string
}

func (f *fakeRun) run(name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, errors.New("exit status 1")
}

func TestGetFocusedWindow(t *testing.T) {
	r := &fakeRun{outputs: map[string]string{"swaymsg -t get_tree -r": swayTree}}
	d := &Detector{compositor: CompositorSway, run: r.run}

	info, err := d.GetFocusedWindow()
	if err != nil {
		t.Fatalf("GetFocusedWindow() error = %v", err)
	}
	if info.AppName != "org.mozilla.firefox" {
		t.Errorf("AppName = %q", info.AppName)
	}
	if info.DisplayServer != "wayland" {
		t.Errorf("DisplayServer = %q, want wayland", info.DisplayServer)
	}
	if info.ProcessName != info.AppName {
		t.Errorf("ProcessName = %q, want fallback to app name", info.ProcessName)
	}
}

func TestGetFocusedWindowToolFailure(t *testing.T) {
	d := &Detector{compositor: CompositorHyprland, run: (&fakeRun{}).run}
	if _, err := d.GetFocusedWindow(); err == nil {
		t.Fatal("GetFocusedWindow() succeeded with failing hyprctl")
	}
}

func TestGetIdleInfo(t *testing.T) {
	tests := []struct {
		name       string
		outputs    map[string]string
		wantLocked bool
	}{
		{name: "unlocked", outputs: map[string]string{"loginctl show-session -p LockedHint": "LockedHint=no\n"}},
		{name: "locker running", outputs: map[string]string{"pgrep -x swaylock": "4242\n"}, wantLocked: true},
		{name: "logind hint", outputs: map[string]string{"loginctl show-session -p LockedHint": "LockedHint=yes\n"}, wantLocked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Detector{compositor: CompositorSway, run: (&fakeRun{outputs: tt.outputs}).run}
			info, err := d.GetIdleInfo()
			if err != nil {
				t.Fatalf("GetIdleInfo() error = %v", err)
			}
			if info.IsLocked != tt.wantLocked {
				t.Errorf("IsLocked = %v, want %v", info.IsLocked, tt.wantLocked)
			}
			if info.IdleTime != 0 {
				t.Errorf("IdleTime = %d, want 0", info.IdleTime)
			}
		})
	}
}

func TestDetectCompositor(t *testing.T) {
	t.Setenv("SWAYSOCK", "")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	if got := DetectCompositor(); got != "" {
		t.Errorf("DetectCompositor() = %q, want empty", got)
	}

	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc")
	if got := DetectCompositor(); got != CompositorHyprland {
		t.Errorf("DetectCompositor() = %q, want hyprland", got)
	}

	t.Setenv("SWAYSOCK", "/run/user/1000/sway-ipc.sock")
	if got := DetectCompositor(); got != CompositorSway {
		t.Errorf("DetectCompositor() = %q, want sway", got)
	}
}

func TestNewDetectorWithoutCompositor(t *testing.T) {
	t.Setenv("SWAYSOCK", "")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	if _, err := NewDetector(); err == nil {
		t.Fatal("NewDetector() succeeded without a compositor")
	}
}
