package daykcal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/saadjs/daykcal/internal/service"
	"github.com/spf13/cobra"
)

var todayJSON bool

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the current virtual day's intake against your goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			m := env.deps.Clock
			events, err := service.LoadEvents(ctx, env.deps.Store)
			if err != nil {
				return err
			}
			goal, err := service.LoadGoal(ctx, env.deps.Store)
			if err != nil {
				return err
			}
			status := service.TodaySummary(events, goal, m.Today(), env.offset())
			if todayJSON {
				b, err := json.MarshalIndent(struct {
					DayCount  int    `json:"day_count"`
					DayOffset int    `json:"day_offset"`
					Remaining string `json:"remaining"`
					service.TodayStatus
				}{m.State().DayCount, m.State().DayOffset, m.Remaining().Round(time.Second).String(), status}, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal today json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Day %d | %s | %s until next day\n", m.State().DayCount, status.Date, formatDuration(m.Remaining()))
			printTodayStatus(out, status)
			return nil
		})
	},
}

func printTodayStatus(out io.Writer, status service.TodayStatus) {
	fmt.Fprintf(out, "Meals: %d\n", status.Meals)
	fmt.Fprintf(out, "Intake: %d / %d kcal\n", status.Calories, status.GoalCalories)
	fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", status.ProteinG, status.CarbsG, status.FatG)
	fmt.Fprintf(out, "Water: %d / %d ml\n", status.WaterML, status.GoalWaterML)
	if status.OverCalories {
		fmt.Fprintf(out, "Remaining: over by %d kcal | %d ml water\n", -status.RemainingCalories, status.RemainingWaterML)
		return
	}
	fmt.Fprintf(out, "Remaining: %d kcal | %d ml water\n", status.RemainingCalories, status.RemainingWaterML)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%02dm", h, m)
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output as JSON")
}
