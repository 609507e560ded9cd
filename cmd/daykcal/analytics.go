package daykcal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/saadjs/daykcal/internal/service"
	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "View weekly and monthly intake summaries",
}

var (
	analyticsJSON      bool
	analyticsEnd       string
	analyticsDays      int
	analyticsTolerance float64
	analyticsNoCharts  bool
)

var analyticsWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Summary of the 7 days ending today",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalytics(cmd, "week")
	},
}

var analyticsMonthCmd = &cobra.Command{
	Use:   "month",
	Short: "Summary of the 30 days ending today",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalytics(cmd, "month")
	},
}

var analyticsRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Summary of --days days ending at --end",
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyticsDays <= 0 {
			return fmt.Errorf("--days must be > 0")
		}
		if analyticsDays > service.MaxPeriodDays {
			return fmt.Errorf("--days must be <= %d", service.MaxPeriodDays)
		}
		return runAnalyticsDays(cmd, analyticsDays)
	},
}

func runAnalytics(cmd *cobra.Command, period string) error {
	days, err := service.PeriodLength(period)
	if err != nil {
		return err
	}
	return runAnalyticsDays(cmd, days)
}

func runAnalyticsDays(cmd *cobra.Command, days int) error {
	if analyticsTolerance < 0 || analyticsTolerance > 1 {
		return fmt.Errorf("--tolerance must be between 0 and 1")
	}
	return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
		end, err := parseDateOr(analyticsEnd, env.deps.Clock.Today())
		if err != nil {
			return err
		}
		events, err := service.LoadEvents(ctx, env.deps.Store)
		if err != nil {
			return err
		}
		goal, err := service.LoadGoal(ctx, env.deps.Store)
		if err != nil {
			return err
		}
		report := service.PeriodSummary(events, end, days, env.offset())
		report.ApplyGoal(goal, analyticsTolerance)

		if analyticsJSON {
			b, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal analytics json: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		printAnalytics(cmd.OutOrStdout(), report, !analyticsNoCharts)
		return nil
	})
}

func printAnalytics(out io.Writer, r *service.PeriodReport, charts bool) {
	fmt.Fprintf(out, "Range: %s to %s (%d days, %d tracked)\n", r.FromDate, r.ToDate, len(r.Days), r.TrackedDays)
	fmt.Fprintf(out, "Totals: %d kcal | P %.1fg | C %.1fg | F %.1fg | water %d ml\n", r.TotalCalories, r.TotalProtein, r.TotalCarbs, r.TotalFat, r.TotalWaterML)
	fmt.Fprintf(out, "Averages/tracked day: %.1f kcal | P %.1fg | C %.1fg | F %.1fg\n", r.AverageCaloriesPerDay, r.AverageProteinPerDay, r.AverageCarbsPerDay, r.AverageFatPerDay)
	fmt.Fprintf(out, "Average water/day: %.0f ml\n", r.AverageWaterPerDay)
	if r.HighestDay != nil && r.LowestDay != nil {
		fmt.Fprintf(out, "Highest day: %s (%d kcal)\n", r.HighestDay.Date, r.HighestDay.Calories)
		fmt.Fprintf(out, "Lowest day: %s (%d kcal)\n", r.LowestDay.Date, r.LowestDay.Calories)
	}
	if a := r.Adherence; a != nil {
		fmt.Fprintf(out, "Adherence: %d/%d tracked days at or under %d kcal (%.1f%%), %d within tolerance\n", a.WithinGoalDays, a.EvaluatedDays, a.CalorieTarget, a.PercentWithin, a.OnTargetDays)
		fmt.Fprintf(out, "Water goal met: %d days (%d ml)\n", a.WaterGoalDays, a.WaterTargetML)
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tKCAL\tWATER\tMEALS\t")
	maxKcal := 0
	for _, d := range r.Days {
		if d.Calories > maxKcal {
			maxKcal = d.Calories
		}
	}
	for _, d := range r.Days {
		bar := ""
		if charts {
			bar = chartBar(d.Calories, maxKcal, 24)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", d.Date, d.Calories, d.WaterML, d.Meals, bar)
	}
	_ = w.Flush()
}

func chartBar(v, top, width int) string {
	if top <= 0 || v <= 0 {
		return ""
	}
	n := v * width / top
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
	analyticsCmd.AddCommand(analyticsWeekCmd, analyticsMonthCmd, analyticsRangeCmd)
	for _, c := range []*cobra.Command{analyticsWeekCmd, analyticsMonthCmd, analyticsRangeCmd} {
		c.Flags().BoolVar(&analyticsJSON, "json", false, "Output as JSON")
		c.Flags().StringVar(&analyticsEnd, "end", "", "Last day of the range YYYY-MM-DD (default current virtual day)")
		c.Flags().Float64Var(&analyticsTolerance, "tolerance", service.DefaultAdherenceTolerance, "Adherence tolerance ratio")
		c.Flags().BoolVar(&analyticsNoCharts, "no-charts", false, "Hide the per-day bars")
	}
	analyticsRangeCmd.Flags().IntVar(&analyticsDays, "days", 14, "Number of days")
}
