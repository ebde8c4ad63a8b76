//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

// DefaultQuarantineDir returns the platform quarantine root.
func DefaultQuarantineDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "sentry", "quarantine")
}

// DefaultWatchPaths returns the directories the realtime monitor watches when
// no paths are configured.
func DefaultWatchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return []string{os.TempDir()}
	}
	return []string{
		filepath.Join(home, "Downloads"),
		filepath.Join(home, "Desktop"),
		filepath.Join(home, "Documents"),
		os.TempDir(),
	}
}
