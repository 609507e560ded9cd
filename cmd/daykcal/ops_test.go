package daykcal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saadjs/daykcal/internal/service"
)

func TestExportImportRoundTrip(t *testing.T) {
	useMockClock(t, testNoon)
	src := tempDB(t)
	mustRun(t, "--db", src, "meal", "add", "--name", "Toast", "--calories", "220")
	mustRun(t, "--db", src, "water", "add", "300")
	mustRun(t, "--db", src, "goal", "set", "--calories", "1900")

	jsonPath := filepath.Join(t.TempDir(), "export.json")
	out := mustRun(t, "--db", src, "export", "--out", jsonPath)
	expectContains(t, out, "Exported 2 events")

	b, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var snap service.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if snap.Version != service.SnapshotVersion || len(snap.Events) != 2 || snap.Goal == nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	dst := tempDB(t)
	out = mustRun(t, "--db", dst, "import", "--in", jsonPath, "--dry-run")
	expectContains(t, out, "Dry run (merge): 2 inserted")
	out = mustRun(t, "--db", dst, "today")
	expectContains(t, out, "Meals: 0")

	out = mustRun(t, "--db", dst, "import", "--in", jsonPath)
	expectContains(t, out, "Imported (merge): 2 inserted, 0 skipped")
	out = mustRun(t, "--db", dst, "import", "--in", jsonPath)
	expectContains(t, out, "0 inserted, 2 skipped")

	out = mustRun(t, "--db", dst, "today")
	expectContains(t, out, "Intake: 220 / 1900 kcal")
}

func TestExportCSV(t *testing.T) {
	useMockClock(t, testNoon)
	path := tempDB(t)
	mustRun(t, "--db", path, "meal", "add", "--name", "Soup, tomato", "--calories", "180")

	csvPath := filepath.Join(t.TempDir(), "events.csv")
	mustRun(t, "--db", path, "export", "--format", "csv", "--out", csvPath)
	b, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,kind,date") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], `,meal,2026-03-10,`) || !strings.Contains(lines[1], `"Soup, tomato"`) {
		t.Fatalf("unexpected row %q", lines[1])
	}

	if _, err := runCLI(t, "--db", path, "export", "--format", "xml", "--out", csvPath); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestImportRejectsUnknownMode(t *testing.T) {
	path := tempDB(t)
	if _, err := runCLI(t, "--db", path, "import", "--in", "x.json", "--mode", "upsert"); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func TestBackupCreateListRestore(t *testing.T) {
	useMockClock(t, testNoon)
	path := tempDB(t)
	mustRun(t, "--db", path, "meal", "add", "--name", "Rice", "--calories", "300")

	out := mustRun(t, "--db", path, "backup", "create")
	expectContains(t, out, "Created backup: ")
	expectContains(t, out, "daykcal-20260310-090000.db")

	out = mustRun(t, "--db", path, "backup", "list")
	expectContains(t, out, "daykcal-20260310-090000.db")

	backup := filepath.Join(filepath.Dir(path), "backups", "daykcal-20260310-090000.db")
	if _, err := runCLI(t, "--db", path, "backup", "create"); err == nil {
		t.Fatalf("expected second backup with the same name to fail")
	}

	restored := filepath.Join(t.TempDir(), "restored.db")
	mustRun(t, "--db", restored, "backup", "restore", "--file", backup)
	out = mustRun(t, "--db", restored, "today")
	expectContains(t, out, "Intake: 300 / 2000 kcal")

	if _, err := runCLI(t, "--db", restored, "backup", "restore", "--file", backup); err == nil {
		t.Fatalf("expected restore over existing db without --force to fail")
	}
}

func TestDoctorHealthyDatabase(t *testing.T) {
	useMockClock(t, testNoon)
	path := tempDB(t)
	mustRun(t, "--db", path, "water", "add", "400")

	out := mustRun(t, "--db", path, "doctor")
	expectContains(t, out, "Events: 1")
	expectContains(t, out, "Invalid events: 0")
}
