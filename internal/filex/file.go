// Package filex contains filesystem helpers for the local data directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDataDir creates dir (relative paths are resolved against the
// working directory) and returns its absolute path.
func EnsureDataDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// DataFile returns the absolute path of name inside the data directory,
// creating the directory when needed. Absolute names are returned as is.
func DataFile(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	base, err := EnsureDataDir(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, name), nil
}
