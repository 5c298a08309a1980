// Package filex has filesystem helpers for locating client data files.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path, with
// owner-only permissions, and returns it.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// DefaultDataPath returns <user config dir>/eduxperience/<name>, falling
// back to the working directory when the config dir is unknown.
func DefaultDataPath(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		cwd, cerr := os.Getwd()
		if cerr != nil {
			return name
		}
		base = cwd
	}
	return filepath.Join(base, "eduxperience", name)
}
