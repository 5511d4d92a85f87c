package sqlutil

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizeFilePath applies the file-backed-database path rule from
// spec.md §4.1: a leading "//" collapses to a single "/", and relative
// paths are resolved against the process working directory. In-memory
// targets pass through unchanged.
func NormalizeFilePath(path string) (string, error) {
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		return path, nil
	}

	if strings.HasPrefix(path, "//") {
		path = path[1:]
	}

	if filepath.IsAbs(path) {
		return path, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, path), nil
}
