package daykcal

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Inspect or advance the virtual day",
}

var dayStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the virtual day counter and clock state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			m := env.deps.Clock
			s := m.State()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Day: %d\n", s.DayCount)
			fmt.Fprintf(out, "Logical date: %s\n", m.Today())
			fmt.Fprintf(out, "Days ahead of real date: %d\n", s.DayOffset)
			fmt.Fprintf(out, "Last observed real date: %s\n", s.LastObservedRealDate)
			fmt.Fprintf(out, "UTC offset: %+d\n", m.OffsetHours())
			fmt.Fprintf(out, "Next day in: %s\n", formatDuration(m.Remaining()))
			return nil
		})
	},
}

var dayEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the current day now and start the next one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			s, err := env.deps.Clock.EndDay(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started day %d (%s)\n", s.DayCount, env.deps.Clock.Today())
			return nil
		})
	},
}

var dayResetConfirm bool

var dayResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the day counter to day 1 at the real date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !dayResetConfirm {
			return fmt.Errorf("refusing to reset the day counter without --yes")
		}
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			s, err := env.deps.Clock.Reset(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset to day %d (%s)\n", s.DayCount, s.LastObservedRealDate)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dayCmd)
	dayCmd.AddCommand(dayStatusCmd, dayEndCmd, dayResetCmd)
	dayResetCmd.Flags().BoolVar(&dayResetConfirm, "yes", false, "Confirm the reset")
}
