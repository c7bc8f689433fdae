package vpn

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestToProfileEvent(t *testing.T) {
	tests := []struct {
		name   string
		event  fsnotify.Event
		want   ProfileEvent
		wantOK bool
	}{
		{"create", fsnotify.Event{Name: "/p/home.conf", Op: fsnotify.Create}, ProfileEvent{Name: "home", Op: ProfileCreated}, true},
		{"write", fsnotify.Event{Name: "/p/home.conf", Op: fsnotify.Write}, ProfileEvent{Name: "home", Op: ProfileChanged}, true},
		{"remove", fsnotify.Event{Name: "/p/home.conf", Op: fsnotify.Remove}, ProfileEvent{Name: "home", Op: ProfileRemoved}, true},
		{"rename", fsnotify.Event{Name: "/p/home.conf", Op: fsnotify.Rename}, ProfileEvent{Name: "home", Op: ProfileRemoved}, true},
		{"chmod", fsnotify.Event{Name: "/p/home.conf", Op: fsnotify.Chmod}, ProfileEvent{}, false},
		{"temp file", fsnotify.Event{Name: "/p/.home.1234.tmp", Op: fsnotify.Create}, ProfileEvent{}, false},
		{"other file", fsnotify.Event{Name: "/p/README", Op: fsnotify.Create}, ProfileEvent{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toProfileEvent(tt.event)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("toProfileEvent() = %+v, %v, want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestProfileStore_Watch(t *testing.T) {
	store := NewProfileStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan ProfileEvent, 64)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(ev ProfileEvent) { events <- ev })
	}()

	// The watcher registers asynchronously; keep creating profiles until
	// one is observed.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	i := 0
	for observed := false; !observed; {
		select {
		case ev := <-events:
			if ev.Op != ProfileCreated {
				t.Errorf("first event = %+v, want a create", ev)
			}
			observed = true
		case <-ticker.C:
			i++
			if err := store.Create(fmt.Sprintf("p%d", i), "[Interface]"); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no profile event observed")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}
