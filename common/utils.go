// Package common provides shared constants, types, and utilities
// used across the WireGuard GUI application.
package common

import (
	"os"
	"path/filepath"
	"unicode"
)

// DefaultConfigDir returns ~/.config/wireguard-gui without creating it.
func DefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", WrapError(err, "failed to get home directory")
	}
	return filepath.Join(homeDir, ".config", ConfigDirName), nil
}

// EnsureDir ensures a directory exists with owner-only permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsSymlink reports whether path is a symbolic link.
// Returns false if path doesn't exist.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// IsAlphanumeric reports whether r is a Unicode letter or digit.
func IsAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
