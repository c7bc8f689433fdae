// Package main provides the entry point for WireGuard GUI.
// WireGuard GUI manages a directory of WireGuard profiles and keeps at
// most one of them active, switching through a privileged toggle script.
//
// Features:
//   - Profile management: create, update, delete, import and export
//   - Single active profile with persisted state across restarts
//   - System tray indicator with desktop notifications
//   - Transition history in a local SQLite journal
//
// Usage:
//
//	wireguard-gui [command] [flags]
//
// Environment:
//
//	The default toggle script requires wg-quick, sudo and zenity.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yllada/wireguard-gui/cli"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

func main() {
	// SIGINT/SIGTERM cancel the context; a running transition still completes.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, cli.BuildInfo{
		Version: appVersion,
		Commit:  commitSHA,
		Date:    buildTime,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
