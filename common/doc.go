// Package common provides shared constants, error kinds, interfaces and the
// application logger used throughout WireGuard GUI.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: file names, directory names and default timings
//   - Errors: sentinel and typed errors shared by every command
//   - Interfaces: collaborators the connection manager drives (executor,
//     link prober, public IP lookup, tray indicator, notifier)
//   - Logger: leveled logging with optional rotating file output
//   - Utils: small filesystem helpers
//
// # Usage
//
//	common.LogInfo("Connecting to %s", profileName)
//
//	if errors.Is(err, common.ErrNotFound) {
//	    // Handle missing profile
//	}
//
//	var execErr *common.ExecutionError
//	if errors.As(err, &execErr) {
//	    fmt.Println(execErr.Diagnostic)
//	}
package common
