package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/daykcal/internal/dayclock"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/store"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	Keys              int      `json:"keys"`
	UnknownKeys       []string `json:"unknown_keys,omitempty"`
	UndecodableKeys   []string `json:"undecodable_keys,omitempty"`
	ClockIssue        string   `json:"clock_issue,omitempty"`
	Events            int      `json:"events"`
	InvalidEvents     int      `json:"invalid_events"`
	DuplicateEventIDs int      `json:"duplicate_event_ids"`
	Fixed             []string `json:"fixed,omitempty"`
}

// Healthy reports whether the check found nothing to fix.
func (r DoctorReport) Healthy() bool {
	return len(r.UndecodableKeys) == 0 && r.ClockIssue == "" && r.InvalidEvents == 0 && r.DuplicateEventIDs == 0
}

// CreateBackup writes a consistent copy of the open database to outPath
// with a .sha256 sidecar.
func CreateBackup(ctx context.Context, db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// BackupFileName names a backup taken at t.
func BackupFileName(t time.Time) string {
	return "daykcal-" + t.UTC().Format("20060102-150405") + ".db"
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	// Stale WAL files would be replayed over the restored copy.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", dbPath+suffix, err)
		}
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		info, err := f.Info()
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: info.ModTime(), SizeBytes: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks every stored blob. With fix set it repairs the clock,
// drops duplicate and invalid events, and removes an unreadable goal so the
// defaults apply. An unreadable event log is reported but never discarded.
func RunDoctor(ctx context.Context, st store.Store, realNow time.Time, offsetHours int, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	keys, err := st.Keys(ctx)
	if err != nil {
		return report, fmt.Errorf("doctor list keys: %w", err)
	}
	report.Keys = len(keys)
	for _, k := range keys {
		switch k {
		case store.KeyEvents, store.KeyClockState, store.KeyUserGoal:
		default:
			report.UnknownKeys = append(report.UnknownKeys, k)
		}
	}

	if err := doctorClock(ctx, st, realNow, offsetHours, fix, &report); err != nil {
		return report, err
	}
	if err := doctorGoal(ctx, st, fix, &report); err != nil {
		return report, err
	}
	if err := doctorEvents(ctx, st, fix, &report); err != nil {
		return report, err
	}
	return report, nil
}

func doctorClock(ctx context.Context, st store.Store, realNow time.Time, offsetHours int, fix bool, report *DoctorReport) error {
	raw, ok, err := st.Load(ctx, store.KeyClockState)
	if err != nil {
		return fmt.Errorf("doctor load clock: %w", err)
	}
	if !ok {
		return nil
	}
	var s model.ClockState
	if err := json.Unmarshal(raw, &s); err != nil {
		report.UndecodableKeys = append(report.UndecodableKeys, store.KeyClockState)
		report.ClockIssue = "clock state is not valid JSON"
		s = dayclock.Initial(realNow, offsetHours)
	} else if !dayclock.Valid(s) {
		report.ClockIssue = fmt.Sprintf("clock state out of range: offset=%d count=%d date=%q", s.DayOffset, s.DayCount, s.LastObservedRealDate)
		s = dayclock.Repair(s, realNow, offsetHours)
	} else {
		return nil
	}
	if !fix {
		return nil
	}
	if err := store.SaveJSON(ctx, st, store.KeyClockState, s); err != nil {
		return fmt.Errorf("doctor fix clock: %w", err)
	}
	report.Fixed = append(report.Fixed, store.KeyClockState)
	return nil
}

func doctorGoal(ctx context.Context, st store.Store, fix bool, report *DoctorReport) error {
	raw, ok, err := st.Load(ctx, store.KeyUserGoal)
	if err != nil {
		return fmt.Errorf("doctor load goal: %w", err)
	}
	if !ok {
		return nil
	}
	var g model.UserGoal
	if json.Unmarshal(raw, &g) == nil {
		return nil
	}
	report.UndecodableKeys = append(report.UndecodableKeys, store.KeyUserGoal)
	if !fix {
		return nil
	}
	if err := st.Delete(ctx, store.KeyUserGoal); err != nil {
		return fmt.Errorf("doctor fix goal: %w", err)
	}
	report.Fixed = append(report.Fixed, store.KeyUserGoal)
	return nil
}

func doctorEvents(ctx context.Context, st store.Store, fix bool, report *DoctorReport) error {
	raw, ok, err := st.Load(ctx, store.KeyEvents)
	if err != nil {
		return fmt.Errorf("doctor load events: %w", err)
	}
	if !ok {
		return nil
	}
	var events []model.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		report.UndecodableKeys = append(report.UndecodableKeys, store.KeyEvents)
		return nil
	}
	report.Events = len(events)

	seen := make(map[string]bool, len(events))
	kept := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if err := validateEvent(ev); err != nil {
			report.InvalidEvents++
			continue
		}
		if seen[ev.ID] {
			report.DuplicateEventIDs++
			continue
		}
		seen[ev.ID] = true
		kept = append(kept, ev)
	}
	if !fix || len(kept) == len(events) {
		return nil
	}
	if err := saveEvents(ctx, st, kept); err != nil {
		return fmt.Errorf("doctor fix events: %w", err)
	}
	report.Fixed = append(report.Fixed, store.KeyEvents)
	return nil
}

// validateEvent checks a stored or imported event.
func validateEvent(ev model.Event) error {
	if strings.TrimSpace(ev.ID) == "" {
		return fmt.Errorf("event has no id")
	}
	if ev.CreatedAt.IsZero() {
		return fmt.Errorf("event %s has no timestamp", ev.ID)
	}
	switch ev.Kind {
	case model.EventMeal:
		if ev.Meal == nil {
			return fmt.Errorf("meal event %s has no payload", ev.ID)
		}
		if _, err := validateMeal(MealInput{
			Name:       ev.Meal.Name,
			Items:      ev.Meal.Items,
			Calories:   ev.Meal.Calories,
			Macros:     ev.Meal.Macros,
			Confidence: ev.Meal.Confidence,
			Source:     ev.Meal.Source,
		}); err != nil {
			return fmt.Errorf("meal event %s: %w", ev.ID, err)
		}
	case model.EventWater:
		if ev.WaterML <= 0 {
			return fmt.Errorf("water event %s has no volume", ev.ID)
		}
	default:
		return fmt.Errorf("event %s has unknown kind %q", ev.ID, ev.Kind)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
