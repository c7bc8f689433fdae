package vpn

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/yllada/wireguard-gui/common"
)

// Marker is the durable pointer to the active profile. Its presence is the
// only connection state that survives a restart.
type Marker struct {
	path string
}

// NewMarker returns a marker stored at path.
func NewMarker(path string) *Marker {
	return &Marker{path: path}
}

// Path returns the marker file location.
func (m *Marker) Path() string {
	return m.path
}

// Read returns the recorded profile name. A missing or blank file reports
// ok == false without an error.
func (m *Marker) Read() (name string, ok bool, err error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, common.NewIoError("read", m.path, err)
	}
	name = strings.TrimSpace(string(data))
	return name, name != "", nil
}

// Write records name as the active profile.
func (m *Marker) Write(name string) error {
	return common.NewIoError("write", m.path, os.WriteFile(m.path, []byte(strings.TrimSpace(name)), 0600))
}

// Remove deletes the marker. A missing file is not an error.
func (m *Marker) Remove() error {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return common.NewIoError("remove", m.path, err)
	}
	return nil
}
