// Package common provides shared constants, types, and utilities
// used across the WireGuard GUI application.
package common

import "context"

// Indicator receives icon-state updates after successful transitions.
type Indicator interface {
	// SetConnected switches the indicator to the connected state.
	SetConnected(profile string)
	// SetDisconnected switches the indicator to the disconnected state.
	SetDisconnected()
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification with the given title and message.
	Notify(title, message string) error
}

// IPResolver looks up the public address the machine is seen with.
type IPResolver interface {
	PublicIP(ctx context.Context) (string, error)
}

// LinkProber reports whether the interface for a profile is up.
type LinkProber interface {
	LinkUp(ctx context.Context, profile string) (bool, error)
}

// Logger defines the interface for structured logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}

// NopIndicator discards every update. Used when no tray is running.
type NopIndicator struct{}

func (NopIndicator) SetConnected(string) {}
func (NopIndicator) SetDisconnected()    {}
