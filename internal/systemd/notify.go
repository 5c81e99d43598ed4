// Package systemd integrates the agent with a systemd user service.
package systemd

import (
	"fmt"
	"net"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/coreos/go-systemd/v22/daemon"
)

// ControlSocketName is the FileDescriptorName= of the control API socket.
const ControlSocketName = "control"

// ControlListener returns the socket-activated control API listener, or nil
// when the agent was not started through socket activation.
func ControlListener() (net.Listener, error) {
	if len(activation.Files(false)) == 0 {
		return nil, nil
	}

	named, err := activation.ListenersWithNames()
	if err != nil {
		return nil, fmt.Errorf("failed to get systemd listeners: %w", err)
	}
	if lns, ok := named[ControlSocketName]; ok && len(lns) > 0 {
		return lns[0], nil
	}
	return nil, nil
}

// Ready sends READY=1 and reports whether systemd received it. Outside
// systemd it does nothing.
func Ready() (bool, error) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return false, fmt.Errorf("failed to send sd_notify: %w", err)
	}
	return sent, nil
}

// Stopping sends STOPPING=1.
func Stopping() error {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		return fmt.Errorf("failed to send sd_notify stopping: %w", err)
	}
	return nil
}
