package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ResolveDiskPath expands a leading "~" and returns a cleaned absolute
// path. Relative paths resolve against the working directory.
func ResolveDiskPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// CheckDiskFolderPath verifies a disk export folder is usable: set,
// absolute after resolution, and not shadowed by an existing file.
func CheckDiskFolderPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.Errorf("No disk folder specified")
	}
	resolved := ResolveDiskPath(path)
	if !filepath.IsAbs(resolved) {
		return errors.Errorf("Disk folder %q is not an absolute path", path)
	}
	if info, err := os.Stat(resolved); err == nil && !info.IsDir() {
		return errors.Errorf("Disk folder %q is a file, not a folder", resolved)
	}
	return nil
}

// CheckUnrealFolderPath verifies an engine-side content path: it must
// live under /Game and every segment must be a valid asset name.
func CheckUnrealFolderPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.Errorf("No unreal folder specified")
	}
	if !strings.HasPrefix(path, "/Game") {
		return errors.Errorf("Unreal folder %q must start with /Game", path)
	}
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			return errors.Errorf("Unreal folder %q contains an empty segment", path)
		}
		if invalidUnrealSegment(segment) {
			return errors.Errorf("Unreal folder %q contains invalid characters in %q", path, segment)
		}
	}
	return nil
}

// CheckUnrealAssetPath is CheckUnrealFolderPath for optional asset
// references: an empty path is fine, a set one must be valid.
func CheckUnrealAssetPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return CheckUnrealFolderPath(path)
}

func invalidUnrealSegment(segment string) bool {
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '+':
		default:
			return true
		}
	}
	return false
}
