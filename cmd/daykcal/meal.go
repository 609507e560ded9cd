package daykcal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/saadjs/daykcal/internal/estimator"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/service"
	"github.com/spf13/cobra"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log meals manually, from a description, or from a photo",
}

var (
	mealName     string
	mealCalories int
	mealProtein  float64
	mealCarbs    float64
	mealFat      float64
	mealNotes    string
)

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a meal with known nutrition",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			ev, err := service.LogMeal(ctx, env.deps, service.MealInput{
				Name:       mealName,
				Calories:   mealCalories,
				Macros:     model.Macros{ProteinG: mealProtein, CarbsG: mealCarbs, FatG: mealFat},
				Confidence: 1,
				Source:     model.SourceManual,
				Notes:      mealNotes,
			})
			if err != nil {
				return err
			}
			printLoggedMeal(cmd.OutOrStdout(), ev)
			return nil
		})
	},
}

var mealDescribeCmd = &cobra.Command{
	Use:   "describe <description>",
	Short: "Estimate a meal from a text description and log it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := strings.Join(args, " ")
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			if err := env.useEstimator(); err != nil {
				return err
			}
			ev, err := service.LogMealFromText(ctx, env.deps, description, mealNotes)
			if err != nil {
				return explainEstimateError(err, "description")
			}
			printLoggedMeal(cmd.OutOrStdout(), ev)
			return nil
		})
	},
}

var mealPhotoCmd = &cobra.Command{
	Use:   "photo <image-file>",
	Short: "Estimate a meal from a photo and log it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		mimeType := estimator.DetectMIME(args[0])
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			if err := env.useEstimator(); err != nil {
				return err
			}
			ev, err := service.LogMealFromImage(ctx, env.deps, image, mimeType, mealNotes)
			if err != nil {
				return explainEstimateError(err, "photo")
			}
			printLoggedMeal(cmd.OutOrStdout(), ev)
			return nil
		})
	},
}

var mealAuditLimit int

var mealAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent estimator requests and their outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			rows, err := service.RecentEstimates(ctx, env.deps, mealAuditLimit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "REQUESTED\tPROVIDER\tINPUT\tOUTCOME\tKCAL")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.RequestedAt.Format("2006-01-02 15:04"), r.Provider, r.InputKind, r.Outcome, r.Calories)
			}
			return w.Flush()
		})
	},
}

// explainEstimateError keeps the error chain but gives the not-food and
// missing-key cases a readable message.
func explainEstimateError(err error, input string) error {
	switch {
	case errors.Is(err, estimator.ErrNotFood):
		return fmt.Errorf("the %s does not look like food; nothing was logged: %w", input, err)
	case errors.Is(err, service.ErrNoEstimator):
		return fmt.Errorf("meal estimation is unavailable: %w", err)
	default:
		return err
	}
}

func printLoggedMeal(out io.Writer, ev model.Event) {
	m := ev.Meal
	fmt.Fprintf(out, "Logged meal %s: %s (%d kcal)\n", shortID(ev.ID), m.Name, m.Calories)
	fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", m.Macros.ProteinG, m.Macros.CarbsG, m.Macros.FatG)
	if m.Source != model.SourceManual {
		fmt.Fprintf(out, "Source: %s | confidence %.0f%%\n", m.Source, m.Confidence*100)
	}
	for _, it := range m.Items {
		fmt.Fprintf(out, "  - %s: %d kcal\n", it.Name, it.Calories)
	}
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd, mealDescribeCmd, mealPhotoCmd, mealAuditCmd)

	mealAddCmd.Flags().StringVar(&mealName, "name", "", "Meal name")
	mealAddCmd.Flags().IntVar(&mealCalories, "calories", 0, "Calories (kcal)")
	mealAddCmd.Flags().Float64Var(&mealProtein, "protein", 0, "Protein grams")
	mealAddCmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "Carbs grams")
	mealAddCmd.Flags().Float64Var(&mealFat, "fat", 0, "Fat grams")
	_ = mealAddCmd.MarkFlagRequired("name")
	_ = mealAddCmd.MarkFlagRequired("calories")

	for _, c := range []*cobra.Command{mealAddCmd, mealDescribeCmd, mealPhotoCmd} {
		c.Flags().StringVar(&mealNotes, "notes", "", "Optional notes")
	}
	mealAuditCmd.Flags().IntVar(&mealAuditLimit, "limit", 20, "Max rows")
}
