package daykcal

import (
	"context"
	"fmt"

	"github.com/saadjs/daykcal/internal/service"
	"github.com/spf13/cobra"
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Log water intake",
}

var waterAddCmd = &cobra.Command{
	Use:   "add <ml>",
	Short: "Log water in millilitres",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := parsePositiveInt("ml", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			ev, err := service.LogWater(ctx, env.deps, ml)
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
			status := service.TodaySummary(events, goal, env.deps.Clock.Today(), env.offset())
			fmt.Fprintf(cmd.OutOrStdout(), "Logged water %s: %d ml (%d / %d ml today)\n", shortID(ev.ID), ev.WaterML, status.WaterML, status.GoalWaterML)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(waterCmd)
	waterCmd.AddCommand(waterAddCmd)
}
