//go:build windows

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
	paths = append(paths, os.TempDir())
	if appData := os.Getenv("APPDATA"); appData != "" {
		paths = append(paths, appData)
	}
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		paths = append(paths, filepath.Join(local, "Temp"))
	}
	return paths
}

// FullScanRoots returns every mounted drive letter.
func FullScanRoots() []string {
	var roots []string
	for letter := 'C'; letter <= 'Z'; letter++ {
		drive := string(letter) + `:\`
		if _, err := os.Stat(drive); err == nil {
			roots = append(roots, drive)
		}
	}
	return roots
}
