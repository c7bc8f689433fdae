// Package vpn provides WireGuard connection management functionality.
// This file contains the Profile and ProfileStore types for managing
// profile files on disk.
package vpn

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yllada/wireguard-gui/common"
)

// Profile is a named WireGuard configuration.
type Profile struct {
	// Name is the profile identity and the interface name wg-quick derives.
	Name string `json:"name"`
	// Content is the raw configuration text, stored verbatim.
	Content string `json:"content"`
}

// ProfileStore manages profile files in a single directory.
// Each profile is stored as <dir>/<name>.conf.
type ProfileStore struct {
	dir string
}

// NewProfileStore returns a store rooted at dir. The directory is created
// lazily by the first write.
func NewProfileStore(dir string) *ProfileStore {
	return &ProfileStore{dir: dir}
}

// Dir returns the profiles directory.
func (s *ProfileStore) Dir() string {
	return s.dir
}

// Path returns the file path for a profile name.
func (s *ProfileStore) Path(name string) string {
	return filepath.Join(s.dir, name+common.ProfileExt)
}

// Exists reports whether a profile file with that name exists.
func (s *ProfileStore) Exists(name string) bool {
	return common.FileExists(s.Path(name))
}

// ValidName reports whether name may be used to create a profile:
// non-empty and letters or digits only.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !common.IsAlphanumeric(r) {
			return false
		}
	}
	return true
}

// validRef accepts every name the store can produce, including the
// underscore suffixes import appends on collision.
func validRef(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r != '_' && !common.IsAlphanumeric(r) {
			return false
		}
	}
	return true
}

// SanitizeName strips every character that is not a letter or digit.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if common.IsAlphanumeric(r) {
			return r
		}
		return -1
	}, name)
}

// Create writes a new profile. It never overwrites an existing one.
func (s *ProfileStore) Create(name, content string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", common.ErrInvalidName, name)
	}
	if err := s.createExclusive(name, content); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", common.ErrAlreadyExists, name)
		}
		return err
	}
	common.LogInfo("Created profile %s", name)
	return nil
}

// createExclusive fails with fs.ErrExist when the file is already there.
func (s *ProfileStore) createExclusive(name, content string) error {
	if err := common.EnsureDir(s.dir); err != nil {
		return common.NewIoError("mkdir", s.dir, err)
	}
	path := s.Path(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		return common.NewIoError("create", path, err)
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(path)
		return common.NewIoError("write", path, err)
	}
	return common.NewIoError("close", path, file.Close())
}

// Write replaces the content of an existing profile. A name that could
// never have been stored is reported as not found.
func (s *ProfileStore) Write(name, content string) error {
	if !validRef(name) || !s.Exists(name) {
		return fmt.Errorf("%w: %q", common.ErrNotFound, name)
	}
	return s.writeAtomic(name, content)
}

// writeAtomic writes through a uniquely named temp file and renames it
// into place so a concurrent List never sees a truncated profile.
func (s *ProfileStore) writeAtomic(name, content string) error {
	path := s.Path(name)
	tmpPath := filepath.Join(s.dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.NewString()))

	if err := os.WriteFile(tmpPath, []byte(content), 0600); err != nil {
		return common.NewIoError("write", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return common.NewIoError("rename", path, err)
	}
	return nil
}

// Get loads a single profile.
func (s *ProfileStore) Get(name string) (*Profile, error) {
	if !validRef(name) {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidName, name)
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, name)
		}
		return nil, common.NewIoError("read", s.Path(name), err)
	}
	return &Profile{Name: name, Content: string(data)}, nil
}

// Remove deletes a profile file. A missing file is not an error.
func (s *ProfileStore) Remove(name string) error {
	if !validRef(name) {
		return fmt.Errorf("%w: %q", common.ErrInvalidName, name)
	}
	path := s.Path(name)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return common.NewIoError("remove", path, err)
	}
	common.LogInfo("Removed profile %s", name)
	return nil
}

// List returns every profile sorted by name. A file that cannot be read is
// listed with empty content rather than failing the listing.
func (s *ProfileStore) List() ([]*Profile, error) {
	names, err := s.names()
	if err != nil {
		return nil, err
	}

	profiles := make([]*Profile, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(s.Path(name))
		if err != nil {
			common.LogWarn("Could not read profile %s: %v", name, err)
		}
		profiles = append(profiles, &Profile{Name: name, Content: string(data)})
	}
	return profiles, nil
}

// names returns the sorted names of all profile files. A missing
// directory yields no names.
func (s *ProfileStore) names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, common.NewIoError("read dir", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := profileName(entry.Name()); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// profileName derives the profile name from a file name in the store.
func profileName(fileName string) (string, bool) {
	if strings.HasPrefix(fileName, ".") || !strings.HasSuffix(fileName, common.ProfileExt) {
		return "", false
	}
	name := strings.TrimSuffix(fileName, common.ProfileExt)
	return name, name != ""
}
