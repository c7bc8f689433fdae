package tray

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/wireguard-gui/common"
)

const (
	notifyDest      = "org.freedesktop.Notifications"
	notifyPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod    = notifyDest + ".Notify"
	notifyTimeoutMs = int32(5000)
	notifyIcon      = "network-vpn"
)

// DBusNotifier sends desktop notifications over the session bus.
type DBusNotifier struct {
	conn *dbus.Conn

	mu sync.Mutex
	// replaces keeps one bubble on screen instead of stacking them.
	replaces uint32
}

// NewDBusNotifier connects to the session bus.
func NewDBusNotifier() (*DBusNotifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, common.WrapError(err, "failed to connect to session bus")
	}
	return &DBusNotifier{conn: conn}, nil
}

// Notify implements common.Notifier.
func (n *DBusNotifier) Notify(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	obj := n.conn.Object(notifyDest, notifyPath)
	call := obj.Call(notifyMethod, 0,
		common.AppName,
		n.replaces,
		notifyIcon,
		title,
		message,
		[]string{},
		map[string]dbus.Variant{},
		notifyTimeoutMs,
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	if err := call.Store(&n.replaces); err != nil {
		common.LogDebug("Notification id unavailable: %v", err)
	}
	return nil
}

// nopNotifier is used when notifications are disabled or no bus is reachable.
type nopNotifier struct{}

func (nopNotifier) Notify(string, string) error { return nil }

// NotifierOrNop returns a D-Bus notifier when enabled and reachable,
// otherwise one that drops every message.
func NotifierOrNop(enabled bool) common.Notifier {
	if !enabled {
		return nopNotifier{}
	}
	n, err := NewDBusNotifier()
	if err != nil {
		common.LogWarn("Desktop notifications disabled: %v", err)
		return nopNotifier{}
	}
	return n
}

func notify(n common.Notifier, title, message string) {
	if err := n.Notify(title, message); err != nil {
		common.LogWarn("Notification failed: %v", err)
	}
}

// NotifyConnected announces a successful connect.
func NotifyConnected(n common.Notifier, profile string) {
	notify(n, "VPN Connected", "Connected to "+profile)
}

// NotifyDisconnected announces a successful disconnect.
func NotifyDisconnected(n common.Notifier, profile string) {
	notify(n, "VPN Disconnected", "Disconnected from "+profile)
}

// NotifyError reports a failed transition.
func NotifyError(n common.Notifier, profile string, err error) {
	notify(n, "Connection Error", fmt.Sprintf("%s: %v", profile, err))
}
