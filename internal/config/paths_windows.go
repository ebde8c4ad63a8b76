//go:build windows

package config

import (
	"os"
	"path/filepath"
)

// DefaultQuarantineDir returns the platform quarantine root.
func DefaultQuarantineDir() string {
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		return filepath.Join(local, "Sentry", "Quarantine")
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "Sentry", "Quarantine")
}

// DefaultWatchPaths returns the directories the realtime monitor watches when
// no paths are configured.
func DefaultWatchPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Desktop"),
			filepath.Join(home, "Documents"),
		)
	}
	paths = append(paths, os.TempDir())
	if appData := os.Getenv("APPDATA"); appData != "" {
		paths = append(paths, appData)
	}
	return paths
}
