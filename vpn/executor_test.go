package vpn

import (
	"errors"
	"strings"
	"testing"

	"github.com/yllada/wireguard-gui/common"
)

func TestNewScriptExecutor_Empty(t *testing.T) {
	if _, err := NewScriptExecutor(nil); err == nil {
		t.Error("NewScriptExecutor(nil) should fail")
	}
}

func TestScriptExecutor_Toggle(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		wantErr  bool
		wantDiag string
	}{
		{name: "success", script: `test "$PROFILE" = office`},
		{name: "nonzero exit", script: `echo "wg-quick: $PROFILE missing" >&2; exit 3`, wantErr: true, wantDiag: "wg-quick: office missing\n"},
		{name: "silent failure", script: `exit 1`, wantErr: true},
		{name: "undecodable output", script: `printf 'bad\377' >&2; exit 2`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewScriptExecutor([]string{"sh", "-c", tt.script})
			if err != nil {
				t.Fatal(err)
			}

			err = e.Toggle("office")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Toggle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var execErr *common.ExecutionError
			if !errors.As(err, &execErr) {
				t.Fatalf("Toggle() error type = %T, want *common.ExecutionError", err)
			}
			if execErr.Profile != "office" {
				t.Errorf("Profile = %q", execErr.Profile)
			}
			if execErr.Diagnostic != tt.wantDiag {
				t.Errorf("Diagnostic = %q, want %q", execErr.Diagnostic, tt.wantDiag)
			}
			if err.Error() == "" {
				t.Error("Error() should never be empty")
			}
		})
	}
}

func TestScriptExecutor_MissingBinary(t *testing.T) {
	e, err := NewScriptExecutor([]string{"/nonexistent/wg.sh"})
	if err != nil {
		t.Fatal(err)
	}

	err = e.Toggle("office")
	var execErr *common.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Toggle() error = %v, want *common.ExecutionError", err)
	}
	if !strings.Contains(execErr.Diagnostic, "/nonexistent/wg.sh") {
		t.Errorf("Diagnostic = %q, want the launch failure", execErr.Diagnostic)
	}
}

func TestDecodeDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"utf8", []byte("permission denied"), "permission denied"},
		{"invalid bytes", []byte{'b', 'a', 'd', 0xff, '!'}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeDiagnostic(tt.raw); got != tt.want {
				t.Errorf("decodeDiagnostic() = %q, want %q", got, tt.want)
			}
		})
	}
}
