// Package app resolves where daykcal keeps its files on disk.
package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirName    = "daykcal"
	dbFileName = "daykcal.db"
	backupDir  = "backups"
)

// DataDir is $XDG_DATA_HOME/daykcal when XDG_DATA_HOME is set, otherwise the
// daykcal directory under the user config dir.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(xdg) {
		return filepath.Join(xdg, dirName), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, dirName), nil
}

func DefaultDBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFileName), nil
}

// EnsureDBDir creates the parent directory of a database path.
func EnsureDBDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create db directory for %s: %w", path, err)
	}
	return nil
}

// DefaultBackupDir places backups next to the database file.
func DefaultBackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), backupDir)
}
