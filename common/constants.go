// Package common provides shared constants, types, and utilities
// used across the WireGuard GUI application.
package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "WireGuard GUI"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "wireguard-gui"
)

// File and directory names inside the configuration directory.
const (
	ProfilesDirName  = "profiles"
	MarkerFileName   = "current"
	ConfigFileName   = "config.yaml"
	HistoryFileName  = "history.db"
	LogFileName      = "wireguard-gui.log"
	LogsDirName      = "logs"
	ToggleScriptName = "wg.sh"
	AskpassName      = "askpass.sh"
)

// ProfileExt is the extension every profile file carries.
const ProfileExt = ".conf"

// MinProfileContentLength is the shortest content accepted on import.
const MinProfileContentLength = 8

// Default timings.
const (
	// SettleDelay is the wait after an interface toggle before the network
	// is considered stable.
	SettleDelay = 5 * time.Second
	// PublicIPTimeout bounds a single public IP lookup.
	PublicIPTimeout = 10 * time.Second
	// HealthInterval is how often the active link is probed.
	HealthInterval = 30 * time.Second
)

// Default external collaborators.
const (
	DefaultPublicIPURL   = "https://httpbin.org/ip"
	DefaultStatusCommand = "ip -br link show dev"
)

// Link probe modes.
const (
	LinkProbeCommand = "command"
	LinkProbeNetif   = "netif"
)
