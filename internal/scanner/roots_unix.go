//go:build !windows

package scanner

import (
	"os"
	"path/filepath"
)

// QuickScanPaths returns common threat drop locations for quick scans.
func QuickScanPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Desktop"),
			filepath.Join(home, "Documents"),
		)
	}
	return append(paths, os.TempDir())
}

// FullScanRoots returns the filesystem roots a full scan covers.
func FullScanRoots() []string {
	return []string{"/"}
}
