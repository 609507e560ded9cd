package daykcal

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/saadjs/daykcal/internal/service"
	"github.com/saadjs/daykcal/internal/store"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		// The clock is checked from the raw store; loading it through the
		// day machine would fail on the state doctor is meant to repair.
		return openDB(cfg, func(sqldb *sql.DB, _ string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			offset, err := service.UTCOffset(sqldb)
			if err != nil {
				return err
			}
			st := store.NewSQLiteStore(sqldb)
			report, err := service.RunDoctor(ctx, st, clockSource.Now(), offset, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Keys: %d\n", report.Keys)
			if len(report.UnknownKeys) > 0 {
				fmt.Fprintf(out, "Unknown keys: %s\n", strings.Join(report.UnknownKeys, ", "))
			}
			if len(report.UndecodableKeys) > 0 {
				fmt.Fprintf(out, "Undecodable keys: %s\n", strings.Join(report.UndecodableKeys, ", "))
			}
			if report.ClockIssue != "" {
				fmt.Fprintf(out, "Clock: %s\n", report.ClockIssue)
			}
			fmt.Fprintf(out, "Events: %d\n", report.Events)
			fmt.Fprintf(out, "Invalid events: %d\n", report.InvalidEvents)
			fmt.Fprintf(out, "Duplicate event ids: %d\n", report.DuplicateEventIDs)

			counts, err := service.EstimateOutcomeCounts(ctx, service.Deps{DB: sqldb})
			if err != nil {
				return err
			}
			if len(counts) > 0 {
				outcomes := make([]string, 0, len(counts))
				for k := range counts {
					outcomes = append(outcomes, k)
				}
				sort.Strings(outcomes)
				parts := make([]string, 0, len(outcomes))
				for _, k := range outcomes {
					parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
				}
				fmt.Fprintf(out, "Estimates: %s\n", strings.Join(parts, " "))
			}

			if doctorFix {
				for _, f := range report.Fixed {
					fmt.Fprintf(out, "Fixed: %s\n", f)
				}
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(ctx, st, clockSource.Now(), offset, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
