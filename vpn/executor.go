// Package vpn provides WireGuard connection management functionality.
// This file contains the executor that runs the privileged toggle command.
package vpn

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/yllada/wireguard-gui/common"
)

// Executor toggles the interface of a profile: up when it is down, down
// when it is up. Callers must not run overlapping toggles concurrently.
type Executor interface {
	Toggle(profile string) error
}

// ScriptExecutor runs an external command with PROFILE set in its
// environment. It waits for the command without a timeout.
type ScriptExecutor struct {
	argv []string
}

// NewScriptExecutor returns an executor for argv, typically the split
// toggle_command from the config file.
func NewScriptExecutor(argv []string) (*ScriptExecutor, error) {
	if len(argv) == 0 {
		return nil, errors.New("toggle command is empty")
	}
	return &ScriptExecutor{argv: append([]string(nil), argv...)}, nil
}

// Toggle runs the command once for profile. A zero exit is success; any
// other outcome is an *common.ExecutionError carrying the command's stderr.
func (e *ScriptExecutor) Toggle(profile string) error {
	cmd := exec.Command(e.argv[0], e.argv[1:]...)
	cmd.Env = append(os.Environ(), "PROFILE="+profile)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	common.LogDebug("Toggle %s: %s", profile, strings.Join(e.argv, " "))
	err := cmd.Run()
	if err == nil {
		common.LogInfo("Toggle %s succeeded", profile)
		return nil
	}

	diagnostic := decodeDiagnostic(stderr.Bytes())
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) && diagnostic == "" {
		// The command never ran (missing binary, permissions).
		diagnostic = err.Error()
	}
	common.LogError("Toggle %s failed: %v (%s)", profile, err, strings.TrimSpace(diagnostic))
	return &common.ExecutionError{Profile: profile, Diagnostic: diagnostic}
}

// decodeDiagnostic turns raw stderr into text. Output that is not valid
// UTF-8 yields an empty diagnostic.
func decodeDiagnostic(raw []byte) string {
	if !utf8.Valid(raw) {
		return ""
	}
	return string(raw)
}
