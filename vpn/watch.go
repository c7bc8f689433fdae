package vpn

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/yllada/wireguard-gui/common"
)

// ProfileOp is the kind of change observed on a profile file.
type ProfileOp string

const (
	ProfileCreated ProfileOp = "created"
	ProfileChanged ProfileOp = "changed"
	ProfileRemoved ProfileOp = "removed"
)

// ProfileEvent reports a change to one profile file.
type ProfileEvent struct {
	Name string    `json:"name"`
	Op   ProfileOp `json:"op"`
}

// Watch calls fn for every change to a profile file until ctx is done.
// Temporary files written by the store are not reported.
func (s *ProfileStore) Watch(ctx context.Context, fn func(ProfileEvent)) error {
	if err := common.EnsureDir(s.dir); err != nil {
		return common.NewIoError("mkdir", s.dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if pe, ok := toProfileEvent(ev); ok {
				fn(pe)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			common.LogWarn("Profile watcher error: %v", err)
		}
	}
}

func toProfileEvent(ev fsnotify.Event) (ProfileEvent, bool) {
	name, ok := profileName(filepath.Base(ev.Name))
	if !ok {
		return ProfileEvent{}, false
	}
	switch {
	case ev.Op&fsnotify.Create != 0:
		return ProfileEvent{Name: name, Op: ProfileCreated}, true
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return ProfileEvent{Name: name, Op: ProfileRemoved}, true
	case ev.Op&fsnotify.Write != 0:
		return ProfileEvent{Name: name, Op: ProfileChanged}, true
	default:
		return ProfileEvent{}, false
	}
}
