package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/yllada/wireguard-gui/vpn"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	j.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	transitions := []vpn.Transition{
		{Kind: vpn.TransitionConnect, Profile: "home", PublicIP: "203.0.113.7"},
		{Kind: vpn.TransitionConnect, Profile: "work", From: "home", Err: errors.New("wg-quick: permission denied")},
		{Kind: vpn.TransitionDisconnect, Profile: "home", From: "home", PublicIP: "198.51.100.2"},
	}
	for _, tr := range transitions {
		if err := j.RecordTransition(ctx, tr); err != nil {
			t.Fatalf("RecordTransition() error = %v", err)
		}
	}

	entries, err := j.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(entries))
	}

	newest := entries[0]
	if newest.Kind != vpn.TransitionDisconnect || newest.PublicIP != "198.51.100.2" || !newest.OK() {
		t.Errorf("newest = %+v", newest)
	}
	if !newest.Time.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("newest.Time = %v", newest.Time)
	}

	failed := entries[1]
	if failed.OK() || failed.Error != "wg-quick: permission denied" || failed.From != "home" {
		t.Errorf("failed = %+v", failed)
	}
	if failed.ID == "" || failed.ID == newest.ID {
		t.Errorf("entries need unique ids, got %q and %q", failed.ID, newest.ID)
	}

	limited, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != newest.ID {
		t.Errorf("Recent(1) = %+v", limited)
	}
}

func TestJournal_Prune(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return old }
	if err := j.RecordTransition(ctx, vpn.Transition{Kind: vpn.TransitionReconcile}); err != nil {
		t.Fatal(err)
	}
	j.now = time.Now
	if err := j.RecordTransition(ctx, vpn.Transition{Kind: vpn.TransitionConnect, Profile: "home"}); err != nil {
		t.Fatal(err)
	}

	n, err := j.Prune(ctx, old.Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() removed %d, want 1", n)
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Profile != "home" {
		t.Errorf("remaining = %+v", entries)
	}
}

func TestJournal_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	j, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.RecordTransition(ctx, vpn.Transition{Kind: vpn.TransitionConnect, Profile: "home"}); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	j, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer j.Close()

	entries, err := j.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("entries after reopen = %d, want 1", len(entries))
	}
}
