// Package vpn provides WireGuard connection management functionality.
// This file contains the HealthChecker which watches the link of the
// active profile.
package vpn

import (
	"context"
	"sync"
	"time"

	"github.com/yllada/wireguard-gui/common"
)

// HealthState represents the current health state of a connection.
type HealthState int

const (
	HealthUnknown HealthState = iota
	HealthHealthy
	HealthDegraded
	HealthUnhealthy
)

// String returns a human-readable representation of the health state.
func (h HealthState) String() string {
	switch h {
	case HealthHealthy:
		return "Healthy"
	case HealthDegraded:
		return "Degraded"
	case HealthUnhealthy:
		return "Unhealthy"
	default:
		return "Unknown"
	}
}

// HealthConfig holds configuration for the health checker.
type HealthConfig struct {
	// CheckInterval is how often the active link is probed.
	CheckInterval time.Duration
	// FailureThreshold is how many consecutive down probes mark the link unhealthy.
	FailureThreshold int
}

// DefaultHealthConfig returns sensible defaults for health checking.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		CheckInterval:    common.HealthInterval,
		FailureThreshold: 2,
	}
}

// ConnectionHealth tracks the health of the active profile's link.
type ConnectionHealth struct {
	Profile          string
	State            HealthState
	LastCheck        time.Time
	LastSuccess      time.Time
	ConsecutiveFails int
}

// HealthChecker periodically probes the active profile's link. It only
// reports; it never reconnects.
type HealthChecker struct {
	mu             sync.RWMutex
	config         HealthConfig
	state          func() State
	prober         common.LinkProber
	running        bool
	stopChan       chan struct{}
	health         ConnectionHealth
	onHealthChange func(profile string, oldState, newState HealthState)
}

// NewHealthChecker creates a checker that reads the active profile from manager.
func NewHealthChecker(manager *Manager, prober common.LinkProber, config HealthConfig) *HealthChecker {
	return &HealthChecker{
		config:   config,
		state:    manager.State,
		prober:   prober,
		stopChan: make(chan struct{}),
	}
}

// SetOnHealthChange sets a callback for health state changes.
func (hc *HealthChecker) SetOnHealthChange(callback func(profile string, oldState, newState HealthState)) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.onHealthChange = callback
}

// Start begins the health checking loop.
func (hc *HealthChecker) Start() {
	hc.mu.Lock()
	if hc.running {
		hc.mu.Unlock()
		return
	}
	hc.running = true
	hc.stopChan = make(chan struct{})
	stop := hc.stopChan
	hc.mu.Unlock()

	common.LogInfo("Health checker started (interval: %v)", hc.config.CheckInterval)
	go hc.runLoop(stop)
}

// Stop stops the health checking loop.
func (hc *HealthChecker) Stop() {
	hc.mu.Lock()
	if !hc.running {
		hc.mu.Unlock()
		return
	}
	hc.running = false
	close(hc.stopChan)
	hc.mu.Unlock()

	common.LogInfo("Health checker stopped")
}

// IsRunning returns whether the health checker is currently running.
func (hc *HealthChecker) IsRunning() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.running
}

// Health returns a copy of the current health record.
func (hc *HealthChecker) Health() ConnectionHealth {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.health
}

func (hc *HealthChecker) runLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(hc.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), hc.config.CheckInterval)
			hc.Check(ctx)
			cancel()
		}
	}
}

// Check probes the active profile once and updates the health record.
// With no active profile the record resets to HealthUnknown.
func (hc *HealthChecker) Check(ctx context.Context) HealthState {
	st := hc.state()

	if st.ActiveProfile == "" {
		hc.mu.Lock()
		hc.health = ConnectionHealth{}
		hc.mu.Unlock()
		return HealthUnknown
	}

	up, err := hc.prober.LinkUp(ctx, st.ActiveProfile)

	hc.mu.Lock()
	if hc.health.Profile != st.ActiveProfile {
		hc.health = ConnectionHealth{Profile: st.ActiveProfile}
	}
	health := &hc.health
	oldState := health.State
	health.LastCheck = time.Now()

	switch {
	case err != nil:
		common.LogWarn("Health check for %s failed: %v", st.ActiveProfile, err)
		health.State = HealthDegraded
	case !up:
		health.ConsecutiveFails++
		if health.ConsecutiveFails >= hc.config.FailureThreshold {
			health.State = HealthUnhealthy
		} else {
			health.State = HealthDegraded
		}
	default:
		health.ConsecutiveFails = 0
		health.LastSuccess = health.LastCheck
		health.State = HealthHealthy
	}
	newState := health.State
	callback := hc.onHealthChange
	hc.mu.Unlock()

	if oldState != newState {
		common.LogInfo("Health of %s changed: %s -> %s", st.ActiveProfile, oldState, newState)
		if callback != nil {
			callback(st.ActiveProfile, oldState, newState)
		}
	}
	return newState
}
