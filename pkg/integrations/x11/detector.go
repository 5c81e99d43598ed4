package x11

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/actionsum/worktrack/pkg/window"
)

// IdleThresholdSeconds marks the user idle in IdleInfo.
const IdleThresholdSeconds = 120

const classCacheSize = 256

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// Detector implements window.Detector and window.ScreenGrabber on top of a
// native X11 connection.
type Detector struct {
	conn          *xgb.Conn
	root          xproto.Window
	width, height uint16
	atoms         map[string]xproto.Atom
	classes       *lru.Cache[xproto.Window, string]
	hasXprintidle bool
}

// NewDetector connects to the display named by $DISPLAY.
func NewDetector() (*Detector, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	d := &Detector{
		conn:          conn,
		root:          screen.Root,
		width:         screen.WidthInPixels,
		height:        screen.HeightInPixels,
		atoms:         make(map[string]xproto.Atom, len(atomNames)),
		hasXprintidle: commandExists("xprintidle"),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		d.atoms[name] = reply.Atom
	}

	d.classes, err = lru.New[xproto.Window, string](classCacheSize)
	if err != nil {
		conn.Close()
		return nil, err
	}

	go d.watchEvents(conn)

	return d, nil
}

// watchEvents drops cached classes of destroyed windows so a reused XID
// cannot inherit a stale app name. It returns once conn is closed.
func (d *Detector) watchEvents(conn *xgb.Conn) {
	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if ev != nil {
			d.handleEvent(ev)
		}
	}
}

func (d *Detector) handleEvent(ev xgb.Event) {
	if destroyed, ok := ev.(xproto.DestroyNotifyEvent); ok {
		d.classes.Remove(destroyed.Window)
	}
}

// cacheClass remembers win's app name once the server confirms it will
// report the window's destruction.
func (d *Detector) cacheClass(win xproto.Window, appName string) {
	err := xproto.ChangeWindowAttributesChecked(d.conn, win, xproto.CwEventMask,
		[]uint32{xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		return
	}
	d.classes.Add(win, appName)
}

func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

func (d *Detector) IsAvailable() bool {
	return d.conn != nil
}

func (d *Detector) GetDisplayServer() string {
	return "x11"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	win, err := d.activeWindow()
	if err != nil {
		return nil, err
	}

	appName, ok := d.classes.Get(win)
	if !ok {
		appName = appNameFromClass(d.windowClass(win))
		if appName != "" {
			d.cacheClass(win, appName)
		}
	}

	info := &window.WindowInfo{
		AppName:       appName,
		WindowTitle:   d.windowName(win),
		DisplayServer: "x11",
	}
	if pid := d.windowPID(win); pid != 0 {
		info.ProcessName = processName(pid)
	}
	if info.AppName == "" {
		info.AppName = info.ProcessName
	}
	return info, nil
}

func (d *Detector) property(win xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(d.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (d *Detector) activeWindow() (xproto.Window, error) {
	for i := 0; i < 3; i++ {
		data, err := d.property(d.root, d.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
		if err == nil && len(data) >= 4 {
			if win := xproto.Window(binary.LittleEndian.Uint32(data)); win != 0 {
				return win, nil
			}
		}

		focus, err := xproto.GetInputFocus(d.conn).Reply()
		if err == nil && focus.Focus != 0 && focus.Focus != d.root {
			return d.topLevelParent(focus.Focus), nil
		}

		time.Sleep(20 * time.Millisecond)
	}

	return 0, errors.New("no active window found")
}

func (d *Detector) topLevelParent(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(d.conn, win).Reply()
		if err != nil || reply.Parent == d.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (d *Detector) windowName(win xproto.Window) string {
	data, err := d.property(win, d.atoms["_NET_WM_NAME"], d.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = d.property(win, d.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	return ""
}

func (d *Detector) windowClass(win xproto.Window) []byte {
	data, err := d.property(win, d.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil {
		return nil
	}
	return data
}

func (d *Detector) windowPID(win xproto.Window) uint32 {
	data, err := d.property(win, d.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

// splitWMClass splits the raw WM_CLASS property into instance and class.
func splitWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

// appNameFromClass prefers the WM_CLASS class and falls back to the instance.
func appNameFromClass(data []byte) string {
	instance, class := splitWMClass(data)
	if class != "" {
		return class
	}
	return instance
}

func processName(pid uint32) string {
	out, err := exec.Command("ps", "-p", strconv.FormatUint(uint64(pid), 10), "-o", "comm=").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// GetIdleInfo returns system idle/lock information
func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	idleTime, err := d.idleTime()
	if err != nil {
		return nil, err
	}

	return &window.IdleInfo{
		IsIdle:   idleTime >= IdleThresholdSeconds,
		IsLocked: isScreenLocked(),
		IdleTime: idleTime,
	}, nil
}

func (d *Detector) idleTime() (int64, error) {
	if !d.hasXprintidle {
		return 0, errors.New("xprintidle not installed")
	}

	out, err := exec.Command("xprintidle").Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle failed: %w", err)
	}
	return parseIdleMillis(string(out))
}

// parseIdleMillis converts xprintidle output (milliseconds) into whole seconds.
func parseIdleMillis(output string) (int64, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(output), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected xprintidle output %q: %w", output, err)
	}
	if ms < 0 {
		return 0, nil
	}
	return ms / 1000, nil
}

func isScreenLocked() bool {
	lockers := []string{
		"gnome-screensaver-dialog",
		"kscreenlocker",
		"i3lock",
		"slock",
		"xscreensaver",
		"xsecurelock",
	}

	for _, locker := range lockers {
		if err := exec.Command("pgrep", "-x", locker).Run(); err == nil {
			return true
		}
	}
	return false
}

func (d *Detector) Close() error {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	return nil
}
