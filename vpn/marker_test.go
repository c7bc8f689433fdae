package vpn

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMarker(t *testing.T) {
	m := NewMarker(filepath.Join(t.TempDir(), "current"))

	if name, ok, err := m.Read(); err != nil || ok || name != "" {
		t.Fatalf("Read() on missing marker = %q, %v, %v", name, ok, err)
	}

	if err := m.Write("office"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if name, ok, err := m.Read(); err != nil || !ok || name != "office" {
		t.Fatalf("Read() = %q, %v, %v, want office", name, ok, err)
	}

	if err := m.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := m.Remove(); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
	if _, ok, _ := m.Read(); ok {
		t.Error("marker should be gone")
	}
}

func TestMarker_ReadTrimsWhitespace(t *testing.T) {
	tests := []struct {
		content string
		want    string
		wantOK  bool
	}{
		{"office\n", "office", true},
		{"  home \r\n", "home", true},
		{"\n", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "current")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			name, ok, err := NewMarker(path).Read()
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if name != tt.want || ok != tt.wantOK {
				t.Errorf("Read() = %q, %v, want %q, %v", name, ok, tt.want, tt.wantOK)
			}
		})
	}
}
