// Package vpn provides WireGuard connection management functionality.
// This file contains the Manager type which serializes every connection
// state transition.
package vpn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yllada/wireguard-gui/common"
)

// Options wires a Manager to its collaborators.
type Options struct {
	Profiles *ProfileStore
	Marker   *Marker
	Executor Executor
	Resolver common.IPResolver
	// Indicator defaults to common.NopIndicator.
	Indicator common.Indicator
	// Recorder is optional.
	Recorder Recorder
	// SettleDelay is waited after each successful toggle sequence.
	SettleDelay time.Duration
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
	// Logger defaults to the process-wide logger.
	Logger common.Logger
}

// Manager owns the connection state and drives transitions.
//
// mu is held for the full duration of each transition, including the
// toggle command and the settle delay, so no two transitions interleave.
// stateMu only guards the snapshot so State never waits on a transition.
type Manager struct {
	mu sync.Mutex

	stateMu sync.RWMutex
	state   State

	profiles  *ProfileStore
	marker    *Marker
	executor  Executor
	resolver  common.IPResolver
	indicator common.Indicator
	recorder  Recorder
	settle    time.Duration
	sleep     func(time.Duration)
	log       common.Logger
}

// NewManager creates a manager starting from initial, which normally comes
// from Reconciler.Reconcile.
func NewManager(opts Options, initial State) *Manager {
	m := &Manager{
		state:     initial,
		profiles:  opts.Profiles,
		marker:    opts.Marker,
		executor:  opts.Executor,
		resolver:  opts.Resolver,
		indicator: opts.Indicator,
		recorder:  opts.Recorder,
		settle:    opts.SettleDelay,
		sleep:     opts.Sleep,
		log:       opts.Logger,
	}
	if m.indicator == nil {
		m.indicator = common.NopIndicator{}
	}
	if m.sleep == nil {
		m.sleep = time.Sleep
	}
	if m.log == nil {
		m.log = common.GetLogger()
	}
	return m
}

// Profiles returns the profile store the manager operates on.
func (m *Manager) Profiles() *ProfileStore {
	return m.profiles
}

// State returns a snapshot of the connection state.
func (m *Manager) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.state = s
}

// Connect makes target the active profile, tearing down the current one
// first. If the teardown succeeds but bringing up target fails, the
// manager is left with no active profile; the previous profile is not
// restored.
func (m *Manager) Connect(ctx context.Context, target string) error {
	if !validRef(target) {
		return fmt.Errorf("%w: %q", common.ErrInvalidName, target)
	}
	if !m.profiles.Exists(target) {
		return fmt.Errorf("%w: %s", common.ErrNotFound, target)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.State()
	m.log.Info("Connecting to %s (active: %q)", target, prev.ActiveProfile)

	if prev.ActiveProfile != "" {
		if err := m.executor.Toggle(prev.ActiveProfile); err != nil {
			m.record(ctx, Transition{Kind: TransitionConnect, Profile: target, From: prev.ActiveProfile, Err: err})
			return err
		}
	}

	if err := m.executor.Toggle(target); err != nil {
		if prev.ActiveProfile != "" {
			m.log.Warn("%s was torn down but %s failed to come up; no profile is active", prev.ActiveProfile, target)
			m.setState(disconnectedState(""))
			m.discard("remove marker", m.marker.Remove())
		}
		m.record(ctx, Transition{Kind: TransitionConnect, Profile: target, From: prev.ActiveProfile, Err: err})
		return err
	}

	m.discard("write marker", m.marker.Write(target))
	ip := m.settleAndRefresh(ctx)
	m.setState(connectedState(target, ip))
	m.indicator.SetConnected(target)

	m.log.Info("Connected to %s (public ip %q)", target, ip)
	m.record(ctx, Transition{Kind: TransitionConnect, Profile: target, From: prev.ActiveProfile, PublicIP: ip})
	return nil
}

// Disconnect tears down the active profile. It is a no-op when nothing is
// active.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnectLocked(ctx)
}

func (m *Manager) disconnectLocked(ctx context.Context) error {
	prev := m.State()
	if prev.ActiveProfile == "" {
		m.log.Debug("Disconnect requested with no active profile")
		return nil
	}

	m.log.Info("Disconnecting from %s", prev.ActiveProfile)
	if err := m.executor.Toggle(prev.ActiveProfile); err != nil {
		m.record(ctx, Transition{Kind: TransitionDisconnect, Profile: prev.ActiveProfile, From: prev.ActiveProfile, Err: err})
		return err
	}

	m.discard("remove marker", m.marker.Remove())
	ip := m.settleAndRefresh(ctx)
	m.setState(disconnectedState(ip))
	m.indicator.SetDisconnected()

	m.log.Info("Disconnected from %s (public ip %q)", prev.ActiveProfile, ip)
	m.record(ctx, Transition{Kind: TransitionDisconnect, Profile: prev.ActiveProfile, From: prev.ActiveProfile, PublicIP: ip})
	return nil
}

// CreateProfile adds a new profile. It does not touch the connection state.
func (m *Manager) CreateProfile(name, content string) error {
	return m.profiles.Create(name, content)
}

// ListProfiles returns every stored profile.
func (m *Manager) ListProfiles() ([]*Profile, error) {
	return m.profiles.List()
}

// UpdateProfile replaces the content of a profile. When the profile is
// active, the new content is written first and the interface is then
// toggled down and up again; a failure of that reconnect is returned even
// though the content was already saved.
func (m *Manager) UpdateProfile(ctx context.Context, name, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.profiles.Write(name, content); err != nil {
		return err
	}
	m.log.Info("Updated profile %s", name)

	if m.State().ActiveProfile != name {
		return nil
	}
	return m.reconnectLocked(ctx, name)
}

// reconnectLocked toggles the active profile down and back up so it picks
// up new content. The active profile does not change on success.
func (m *Manager) reconnectLocked(ctx context.Context, name string) error {
	m.log.Info("Reconnecting %s to apply new content", name)

	if err := m.executor.Toggle(name); err != nil {
		m.record(ctx, Transition{Kind: TransitionReconnect, Profile: name, From: name, Err: err})
		return err
	}
	if err := m.executor.Toggle(name); err != nil {
		m.log.Warn("%s was torn down but failed to come back up; no profile is active", name)
		m.setState(disconnectedState(""))
		m.discard("remove marker", m.marker.Remove())
		m.record(ctx, Transition{Kind: TransitionReconnect, Profile: name, From: name, Err: err})
		return err
	}

	ip := m.settleAndRefresh(ctx)
	m.setState(connectedState(name, ip))
	m.record(ctx, Transition{Kind: TransitionReconnect, Profile: name, From: name, PublicIP: ip})
	return nil
}

// DeleteProfile removes a profile, disconnecting first when it is active.
// The file is removed even when the disconnect fails; the disconnect error
// is still returned. The two steps are not atomic.
func (m *Manager) DeleteProfile(ctx context.Context, name string) error {
	if !validRef(name) {
		return fmt.Errorf("%w: %q", common.ErrInvalidName, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var disconnectErr error
	if m.State().ActiveProfile == name {
		disconnectErr = m.disconnectLocked(ctx)
	}

	removeErr := m.profiles.Remove(name)
	if disconnectErr != nil {
		if removeErr != nil {
			m.log.Warn("Removing %s after failed disconnect: %v", name, removeErr)
		}
		return disconnectErr
	}
	return removeErr
}

// settleAndRefresh waits the settle delay and then looks up the public IP.
// The delay is always waited.
func (m *Manager) settleAndRefresh(ctx context.Context) string {
	m.sleep(m.settle)
	ip, err := lookupPublicIP(ctx, m.resolver)
	if err != nil {
		m.log.Warn("Public IP refresh failed: %v", err)
		return ""
	}
	return ip
}

// lookupPublicIP returns the error so callers decide explicitly to drop it.
func lookupPublicIP(ctx context.Context, r common.IPResolver) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no public ip resolver configured")
	}
	return r.PublicIP(ctx)
}

// discard logs the failure of a best-effort step.
func (m *Manager) discard(step string, err error) {
	if err != nil {
		m.log.Warn("Ignoring failed %s: %v", step, err)
	}
}

func (m *Manager) record(ctx context.Context, t Transition) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordTransition(ctx, t); err != nil {
		m.log.Warn("Could not record %s transition: %v", t.Kind, err)
	}
}
