package daykcal

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/saadjs/daykcal/internal/calendar"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/service"
	"github.com/spf13/cobra"
)

var (
	historyDate  string
	historyFrom  string
	historyTo    string
	historyKind  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List logged meals and water, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			events, err := service.ListEvents(ctx, env.deps.Store, env.offset(), service.ListEventsFilter{
				Date:     historyDate,
				FromDate: historyFrom,
				ToDate:   historyTo,
				Kind:     model.EventKind(historyKind),
				Limit:    historyLimit,
			})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTIME\tKIND\tDETAIL\tAMOUNT")
			zone := calendar.Zone(env.offset())
			for _, ev := range events {
				local := ev.CreatedAt.In(zone)
				detail, amount := "water", fmt.Sprintf("%d ml", ev.WaterML)
				if ev.Kind == model.EventMeal && ev.Meal != nil {
					detail, amount = ev.Meal.Name, fmt.Sprintf("%d kcal", ev.Meal.Calories)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", shortID(ev.ID), local.Format(calendar.KeyLayout), local.Format("15:04"), ev.Kind, detail, amount)
			}
			return w.Flush()
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a logged meal or water entry by id or id prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			ev, err := service.RemoveEvent(ctx, env.deps, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", ev.Kind, ev.ID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd, rmCmd)
	historyCmd.Flags().StringVar(&historyDate, "date", "", "Only this day YYYY-MM-DD")
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "Start date YYYY-MM-DD")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "End date YYYY-MM-DD")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "meal|water")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Max rows")
}
