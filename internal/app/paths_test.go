package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureDBDirCreatesParents(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a", "b", "daykcal.db")
	if err := EnsureDBDir(path); err != nil {
		t.Fatalf("ensure db dir: %v", err)
	}
	st, err := os.Stat(filepath.Dir(path))
	if err != nil || !st.IsDir() {
		t.Fatalf("expected directory to exist: %v", err)
	}
	if got := DefaultBackupDir(path); got != filepath.Join(filepath.Dir(path), "backups") {
		t.Fatalf("unexpected backup dir %s", got)
	}
}

func TestDefaultDBPathHonorsXDGDataHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default db path: %v", err)
	}
	if want := filepath.Join(dir, "daykcal", "daykcal.db"); path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
}

func TestDefaultDBPathIgnoresRelativeXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "relative/dir")
	path, err := DefaultDBPath()
	if err != nil {
		t.Skipf("no user config dir on this host: %v", err)
	}
	if strings.HasPrefix(path, "relative") {
		t.Fatalf("relative XDG_DATA_HOME must be ignored, got %s", path)
	}
}
