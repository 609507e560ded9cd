package daykcal

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/daykcal/internal/calendar"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/service"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
	importIn     string
	importMode   string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export local data (json or csv)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOut) == "" {
			return fmt.Errorf("--out is required")
		}
		format := strings.ToLower(strings.TrimSpace(exportFormat))
		if format != "json" && format != "csv" {
			return fmt.Errorf("invalid --format %q (use json|csv)", exportFormat)
		}
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			snap, err := service.ExportSnapshot(ctx, env.deps.Store, clockSource.Now())
			if err != nil {
				return err
			}
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			if format == "json" {
				enc := json.NewEncoder(f)
				enc.SetIndent("", "  ")
				if err := enc.Encode(snap); err != nil {
					return fmt.Errorf("write export json: %w", err)
				}
			} else if err := writeEventsCSV(f, snap.Events, env.offset()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d events to %s\n", len(snap.Events), exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		mode, err := service.ParseImportMode(importMode)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		var snap service.Snapshot
		if err := json.Unmarshal(b, &snap); err != nil {
			return fmt.Errorf("decode import json: %w", err)
		}
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			report, err := service.ImportSnapshot(ctx, env.deps, &snap, service.ImportOptions{Mode: mode, DryRun: importDryRun})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			prefix := "Imported"
			if importDryRun {
				prefix = "Dry run"
			}
			fmt.Fprintf(out, "%s (%s): %d inserted, %d skipped, %d removed\n", prefix, mode, report.Inserted, report.Skipped, report.Removed)
			fmt.Fprintf(out, "Goal updated: %t | clock updated: %t\n", report.GoalUpdated, report.ClockUpdated)
			for _, w := range report.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		})
	},
}

func writeEventsCSV(w io.Writer, events []model.Event, offsetHours int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "kind", "date", "created_at", "name", "calories", "protein_g", "carbs_g", "fat_g", "water_ml", "source", "confidence", "notes"}); err != nil {
		return fmt.Errorf("write export csv header: %w", err)
	}
	for _, ev := range events {
		record := []string{
			ev.ID,
			string(ev.Kind),
			calendar.DayKey(ev.CreatedAt, offsetHours),
			ev.CreatedAt.UTC().Format(time.RFC3339),
			"", "0", "0", "0", "0",
			strconv.Itoa(ev.WaterML),
			"", "", "",
		}
		if m := ev.Meal; m != nil {
			record[4] = m.Name
			record[5] = strconv.Itoa(m.Calories)
			record[6] = strconv.FormatFloat(m.Macros.ProteinG, 'f', -1, 64)
			record[7] = strconv.FormatFloat(m.Macros.CarbsG, 'f', -1, 64)
			record[8] = strconv.FormatFloat(m.Macros.FatG, 'f', -1, 64)
			record[10] = string(m.Source)
			record[11] = strconv.FormatFloat(m.Confidence, 'f', -1, 64)
			record[12] = m.Notes
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write export csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export csv: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json|csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path")
	importCmd.Flags().StringVar(&importIn, "in", "", "JSON export to import")
	importCmd.Flags().StringVar(&importMode, "mode", "merge", "merge|replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Report changes without writing")
}
