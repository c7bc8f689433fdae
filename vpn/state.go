package vpn

import (
	"context"
	"fmt"
)

// ConnectionStatus is the connection state of the process.
type ConnectionStatus int

const (
	// StatusDisconnected indicates no active profile.
	StatusDisconnected ConnectionStatus = iota
	// StatusConnected indicates an active profile.
	StatusConnected
)

// String returns a human-readable representation of the connection status.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "Disconnected"
	case StatusConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the status by name.
func (s ConnectionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *ConnectionStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Disconnected":
		*s = StatusDisconnected
	case "Connected":
		*s = StatusConnected
	default:
		return fmt.Errorf("unknown connection status %q", text)
	}
	return nil
}

// State is a snapshot of the connection state.
// Status is StatusConnected exactly when ActiveProfile is non-empty.
type State struct {
	Status        ConnectionStatus `json:"status"`
	ActiveProfile string           `json:"active_profile,omitempty"`
	// PublicIP is empty when the last lookup failed.
	PublicIP string `json:"public_ip,omitempty"`
}

func connectedState(profile, ip string) State {
	return State{Status: StatusConnected, ActiveProfile: profile, PublicIP: ip}
}

func disconnectedState(ip string) State {
	return State{Status: StatusDisconnected, PublicIP: ip}
}

// TransitionKind names a recorded state change.
type TransitionKind string

const (
	TransitionConnect    TransitionKind = "connect"
	TransitionDisconnect TransitionKind = "disconnect"
	TransitionReconnect  TransitionKind = "reconnect"
	TransitionReconcile  TransitionKind = "reconcile"
)

// Transition describes one attempted state change.
type Transition struct {
	Kind    TransitionKind
	Profile string
	// From is the active profile before the attempt.
	From     string
	PublicIP string
	Err      error
}

// Recorder persists transitions. Failures are logged and never fail the
// transition being recorded.
type Recorder interface {
	RecordTransition(ctx context.Context, t Transition) error
}
