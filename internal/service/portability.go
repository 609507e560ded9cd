package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/daykcal/internal/dayclock"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/store"
)

const SnapshotVersion = 1

// Snapshot is the export document.
type Snapshot struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Clock      *model.ClockState `json:"clock,omitempty"`
	Goal       *model.UserGoal   `json:"goal,omitempty"`
	Events     []model.Event     `json:"events"`
}

type ImportMode string

const (
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted     int      `json:"inserted"`
	Skipped      int      `json:"skipped"`
	Removed      int      `json:"removed"`
	GoalUpdated  bool     `json:"goal_updated"`
	ClockUpdated bool     `json:"clock_updated"`
	Warnings     []string `json:"warnings,omitempty"`
}

func ParseImportMode(raw string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ImportModeMerge:
		return ImportModeMerge, nil
	case ImportModeReplace:
		return ImportModeReplace, nil
	default:
		return "", fmt.Errorf("unsupported import mode %q (use merge or replace)", raw)
	}
}

func ExportSnapshot(ctx context.Context, st store.Store, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{Version: SnapshotVersion, ExportedAt: now.UTC()}

	var clock model.ClockState
	ok, err := store.LoadJSON(ctx, st, store.KeyClockState, &clock)
	if err != nil {
		return nil, fmt.Errorf("export clock: %w", err)
	}
	if ok {
		snap.Clock = &clock
	}

	var goal model.UserGoal
	ok, err = store.LoadJSON(ctx, st, store.KeyUserGoal, &goal)
	if err != nil {
		return nil, fmt.Errorf("export goal: %w", err)
	}
	if ok {
		snap.Goal = &goal
	}

	events, err := LoadEvents(ctx, st)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	snap.Events = events
	return snap, nil
}

// ImportSnapshot loads snap into the store. Merge keeps existing events and
// adds unseen IDs; the goal is taken only if it is newer, and the clock is
// left alone. Replace overwrites all three.
func ImportSnapshot(ctx context.Context, d Deps, snap *Snapshot, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	if snap == nil {
		return report, fmt.Errorf("import snapshot is empty")
	}
	if snap.Version > SnapshotVersion {
		return report, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}
	mode := opts.Mode
	if mode == "" {
		mode = ImportModeMerge
	}

	existing, err := LoadEvents(ctx, d.Store)
	if err != nil {
		return report, err
	}
	seen := make(map[string]bool, len(existing))
	merged := existing
	if mode == ImportModeReplace {
		report.Removed = len(existing)
		merged = make([]model.Event, 0, len(snap.Events))
	} else {
		for _, ev := range existing {
			seen[ev.ID] = true
		}
	}
	for _, ev := range snap.Events {
		if err := validateEvent(ev); err != nil {
			report.Warnings = append(report.Warnings, err.Error())
			report.Skipped++
			continue
		}
		if seen[ev.ID] {
			report.Skipped++
			continue
		}
		seen[ev.ID] = true
		merged = append(merged, ev)
		report.Inserted++
	}

	goal, err := importGoal(ctx, d.Store, snap.Goal, mode)
	if err != nil {
		return report, err
	}
	report.GoalUpdated = goal != nil

	var clock *model.ClockState
	if mode == ImportModeReplace && snap.Clock != nil {
		if !dayclock.Valid(*snap.Clock) {
			return report, fmt.Errorf("imported clock state is out of range: %+v", *snap.Clock)
		}
		clock = snap.Clock
		report.ClockUpdated = true
	}

	if opts.DryRun {
		return report, nil
	}
	if report.Inserted > 0 || report.Removed > 0 {
		if err := saveEvents(ctx, d.Store, merged); err != nil {
			return report, err
		}
	}
	if goal != nil {
		if err := store.SaveJSON(ctx, d.Store, store.KeyUserGoal, goal); err != nil {
			return report, fmt.Errorf("import goal: %w", err)
		}
	}
	if clock != nil {
		if err := importClock(ctx, d, *clock); err != nil {
			return report, err
		}
	}
	d.logger().Info(ctx, "snapshot imported", "mode", mode, "inserted", report.Inserted, "skipped", report.Skipped)
	return report, nil
}

func importGoal(ctx context.Context, st store.Store, incoming *model.UserGoal, mode ImportMode) (*model.UserGoal, error) {
	if incoming == nil {
		return nil, nil
	}
	if incoming.CalorieTarget <= 0 || incoming.WaterTargetML <= 0 {
		return nil, fmt.Errorf("imported goal has non-positive targets")
	}
	if mode == ImportModeReplace {
		return incoming, nil
	}
	var current model.UserGoal
	ok, err := store.LoadJSON(ctx, st, store.KeyUserGoal, &current)
	if err != nil {
		return nil, fmt.Errorf("load goal: %w", err)
	}
	if ok && !incoming.UpdatedAt.After(current.UpdatedAt) {
		return nil, nil
	}
	return incoming, nil
}

func importClock(ctx context.Context, d Deps, s model.ClockState) error {
	if d.Clock != nil {
		return d.Clock.Replace(ctx, s)
	}
	if err := store.SaveJSON(ctx, d.Store, store.KeyClockState, s); err != nil {
		return fmt.Errorf("import clock: %w", err)
	}
	return nil
}
