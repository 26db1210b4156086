package utils

import (
	"os"
	"path/filepath"
)

// GetProjectRoot returns the nearest directory above the working directory
// that holds a go.mod, or "." when there is none.
func GetProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "."
}

// ResolvePath returns p unchanged when it exists or is absolute; otherwise it
// is tried relative to the project root, so binaries started with `go run`
// from a subdirectory still find files like the dev server seed.
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	candidate := filepath.Join(GetProjectRoot(), p)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return p
}
