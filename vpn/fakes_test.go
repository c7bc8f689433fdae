package vpn

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yllada/wireguard-gui/common"
)

// fakeExecutor records every toggle and fails the calls listed in failAt
// (1-based call numbers).
type fakeExecutor struct {
	mu     sync.Mutex
	calls  []string
	failAt map[int]error
}

func (f *fakeExecutor) Toggle(profile string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, profile)
	if err, ok := f.failAt[len(f.calls)]; ok {
		return err
	}
	return nil
}

func (f *fakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeResolver struct {
	ip    string
	err   error
	calls int
}

func (f *fakeResolver) PublicIP(context.Context) (string, error) {
	f.calls++
	return f.ip, f.err
}

type fakeProber struct {
	up    map[string]bool
	err   error
	calls []string
}

func (f *fakeProber) LinkUp(_ context.Context, profile string) (bool, error) {
	f.calls = append(f.calls, profile)
	return f.up[profile], f.err
}

type fakeIndicator struct {
	events []string
}

func (f *fakeIndicator) SetConnected(profile string) { f.events = append(f.events, "connected:"+profile) }
func (f *fakeIndicator) SetDisconnected()            { f.events = append(f.events, "disconnected") }

type fakeRecorder struct {
	transitions []Transition
	err         error
}

func (f *fakeRecorder) RecordTransition(_ context.Context, t Transition) error {
	f.transitions = append(f.transitions, t)
	return f.err
}

// fakeLogger keeps every formatted line, prefixed with its level.
type fakeLogger struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeLogger) add(level, msg string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, level+" "+fmt.Sprintf(msg, args...))
}

func (f *fakeLogger) Debug(msg string, args ...interface{}) { f.add("DEBUG", msg, args...) }
func (f *fakeLogger) Info(msg string, args ...interface{})  { f.add("INFO", msg, args...) }
func (f *fakeLogger) Warn(msg string, args ...interface{})  { f.add("WARN", msg, args...) }
func (f *fakeLogger) Error(msg string, args ...interface{}) { f.add("ERROR", msg, args...) }

func (f *fakeLogger) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

type testEnv struct {
	dir       string
	store     *ProfileStore
	marker    *Marker
	executor  *fakeExecutor
	resolver  *fakeResolver
	indicator *fakeIndicator
	recorder  *fakeRecorder
	logger    *fakeLogger
	sleeps    []time.Duration
	manager   *Manager
}

func newTestEnv(t *testing.T, initial State, profiles ...string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:       dir,
		store:     NewProfileStore(filepath.Join(dir, common.ProfilesDirName)),
		marker:    NewMarker(filepath.Join(dir, common.MarkerFileName)),
		executor:  &fakeExecutor{failAt: map[int]error{}},
		resolver:  &fakeResolver{ip: "203.0.113.7"},
		indicator: &fakeIndicator{},
		recorder:  &fakeRecorder{},
		logger:    &fakeLogger{},
	}
	for _, name := range profiles {
		if err := env.store.Create(name, "[Interface]\nPrivateKey = x\n"); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}
	env.manager = NewManager(Options{
		Profiles:    env.store,
		Marker:      env.marker,
		Executor:    env.executor,
		Resolver:    env.resolver,
		Indicator:   env.indicator,
		Recorder:    env.recorder,
		SettleDelay: common.SettleDelay,
		Sleep:       func(d time.Duration) { env.sleeps = append(env.sleeps, d) },
		Logger:      env.logger,
	}, initial)
	return env
}

func (e *testEnv) markerValue(t *testing.T) (string, bool) {
	t.Helper()
	name, ok, err := e.marker.Read()
	if err != nil {
		t.Fatalf("marker.Read() error = %v", err)
	}
	return name, ok
}

var errToggle = &common.ExecutionError{Profile: "x", Diagnostic: "wg-quick: permission denied"}

func isExecErr(err error) bool {
	var execErr *common.ExecutionError
	return errors.As(err, &execErr)
}
