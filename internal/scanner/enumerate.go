package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// skipDirectories are never descended into during recursive scans. System
// directories are huge and churn constantly; tool directories are trusted.
var skipDirectories = map[string]bool{
	"Windows":                   true,
	"$Recycle.Bin":              true,
	"System Volume Information": true,
	".git":                      true,
	"node_modules":              true,
	"__pycache__":               true,
	".venv":                     true,
	"venv":                      true,
}

// scannableExtensions lists the file types worth scanning: executables,
// scripts, installers, archives, documents and shortcuts.
var scannableExtensions = map[string]bool{
	".exe": true, ".dll": true, ".bat": true, ".cmd": true, ".ps1": true,
	".vbs": true, ".js": true, ".jse": true, ".wsf": true, ".wsh": true,
	".msi": true, ".scr": true, ".pif": true, ".com": true, ".hta": true,
	".jar": true, ".py": true, ".rb": true, ".php": true, ".sh": true,
	".reg": true, ".inf": true,
	".zip": true, ".rar": true, ".7z": true, ".iso": true, ".img": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".pdf": true,
	".lnk": true, ".url": true,
}

// ShouldScan reports whether a file is eligible for scanning based on its
// extension. Files without an extension are eligible; they are often
// renamed executables.
func ShouldScan(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == "" || scannableExtensions[ext]
}

// HasScannableExtension reports whether the path carries one of the
// scannable extensions. Unlike ShouldScan it does not admit extensionless
// files; the realtime monitor uses it to keep noise out of its queue.
func HasScannableExtension(path string) bool {
	return scannableExtensions[strings.ToLower(filepath.Ext(path))]
}

// enumerate streams eligible file paths under root to fn. A root that is a
// regular file bypasses the extension and size filters: the caller asked for
// it explicitly. An error returned by fn stops the walk and is passed back.
func (s *Scanner) enumerate(ctx context.Context, root string, recursive bool, fn func(path string, size int64) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fn(root, info.Size())
	}

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			s.logger.Warn("cannot list directory", zap.String("path", root), zap.Error(err))
			return nil
		}
		for _, entry := range entries {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if entry.IsDir() || !ShouldScan(entry.Name()) {
				continue
			}
			fi, err := entry.Info()
			if err != nil || !fi.Mode().IsRegular() || s.tooLarge(fi.Size()) {
				continue
			}
			if err := fn(filepath.Join(root, entry.Name()), fi.Size()); err != nil {
				return err
			}
		}
		return nil
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			s.logger.Debug("cannot access path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() {
			// The root itself is always walked, even if its name matches
			// the skip list.
			if path != root && s.exclude[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !ShouldScan(path) || s.tooLarge(info.Size()) {
			return nil
		}
		return fn(path, info.Size())
	})
}

// countFiles pre-counts eligible files so progress can report a total.
func (s *Scanner) countFiles(ctx context.Context, roots []string, recursive bool) int {
	count := 0
	for _, root := range roots {
		_ = s.enumerate(ctx, root, recursive, func(string, int64) error {
			count++
			return ctx.Err()
		})
	}
	return count
}

func (s *Scanner) tooLarge(size int64) bool {
	return s.maxSize > 0 && size > s.maxSize
}
