package daykcal

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/service"
	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage daily calorie and water targets",
}

var (
	goalCalories  int
	goalWater     int
	goalAuto      bool
	goalWeight    float64
	goalHeight    float64
	goalAge       int
	goalSex       string
	goalActivity  string
	goalDirection string
)

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			goal, err := service.LoadGoal(ctx, env.deps.Store)
			if err != nil {
				return err
			}
			printGoal(cmd.OutOrStdout(), goal)
			return nil
		})
	},
}

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set calorie and water targets, optionally from biometrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			goal, err := service.LoadGoal(ctx, env.deps.Store)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if hasBiometricFlags(cmd) {
				b := biometricsFromFlags()
				goal.Biometrics = &b
			}
			if flags.Changed("calories") {
				goal.CalorieTarget = goalCalories
				goal.AutoCalories = false
			}
			if flags.Changed("water") {
				goal.WaterTargetML = goalWater
			}
			if flags.Changed("auto") {
				goal.AutoCalories = goalAuto
			}
			saved, err := service.SaveGoal(ctx, env.deps.Store, goal, clockSource.Now())
			if err != nil {
				return err
			}
			printGoal(cmd.OutOrStdout(), saved)
			return nil
		})
	},
}

var goalRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print the recommended daily calories for the given biometrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := biometricsFromFlags()
		if err := service.ValidateBiometrics(b); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "BMR: %.0f kcal\n", service.BMR(b))
		fmt.Fprintf(out, "Activity multiplier: %.3f (%s)\n", service.ActivityMultiplier(b.ActivityLevel), b.ActivityLevel)
		fmt.Fprintf(out, "Recommended: %d kcal/day to %s\n", service.RecommendedCalories(b), b.Direction)
		return nil
	},
}

var goalWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactively set biometrics and targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, env *appEnv) error {
			goal, err := service.LoadGoal(ctx, env.deps.Store)
			if err != nil {
				return err
			}
			answers := newWizardAnswers(goal)
			if err := goalForm(answers).Run(); err != nil {
				return fmt.Errorf("goal wizard: %w", err)
			}
			next, err := answers.goal()
			if err != nil {
				return err
			}
			saved, err := service.SaveGoal(ctx, env.deps.Store, next, clockSource.Now())
			if err != nil {
				return err
			}
			printGoal(cmd.OutOrStdout(), saved)
			return nil
		})
	},
}

func hasBiometricFlags(cmd *cobra.Command) bool {
	for _, name := range []string{"weight", "height", "age", "sex", "activity", "direction"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func biometricsFromFlags() model.Biometrics {
	return model.Biometrics{
		WeightKg:      goalWeight,
		HeightCm:      goalHeight,
		Age:           goalAge,
		Sex:           model.Sex(strings.ToLower(strings.TrimSpace(goalSex))),
		ActivityLevel: strings.ToLower(strings.TrimSpace(goalActivity)),
		Direction:     model.GoalDirection(strings.ToLower(strings.TrimSpace(goalDirection))),
	}
}

func printGoal(out io.Writer, g model.UserGoal) {
	mode := "manual"
	if g.AutoCalories {
		mode = "auto"
	}
	fmt.Fprintf(out, "Calories: %d kcal (%s)\n", g.CalorieTarget, mode)
	fmt.Fprintf(out, "Water: %d ml\n", g.WaterTargetML)
	if b := g.Biometrics; b != nil {
		fmt.Fprintf(out, "Biometrics: %.1f kg | %.1f cm | %d y | %s | %s | %s\n", b.WeightKg, b.HeightCm, b.Age, b.Sex, b.ActivityLevel, b.Direction)
	}
	if !g.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "Updated: %s\n", g.UpdatedAt.Format("2006-01-02 15:04 MST"))
	}
}

// wizardAnswers holds the form's string-backed fields.
type wizardAnswers struct {
	weight, height, age string
	sex, activity       string
	direction           string
	water, calories     string
	auto                bool
}

func newWizardAnswers(g model.UserGoal) *wizardAnswers {
	a := &wizardAnswers{
		sex:       string(model.SexMale),
		activity:  service.ActivityLevels[0],
		direction: string(model.DirectionMaintain),
		water:     strconv.Itoa(g.WaterTargetML),
		calories:  strconv.Itoa(g.CalorieTarget),
		auto:      true,
	}
	if b := g.Biometrics; b != nil {
		a.weight = strconv.FormatFloat(b.WeightKg, 'f', -1, 64)
		a.height = strconv.FormatFloat(b.HeightCm, 'f', -1, 64)
		a.age = strconv.Itoa(b.Age)
		a.sex = string(b.Sex)
		a.activity = b.ActivityLevel
		a.direction = string(b.Direction)
	}
	return a
}

func (a *wizardAnswers) goal() (model.UserGoal, error) {
	weight, err := strconv.ParseFloat(strings.TrimSpace(a.weight), 64)
	if err != nil {
		return model.UserGoal{}, fmt.Errorf("invalid weight %q", a.weight)
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(a.height), 64)
	if err != nil {
		return model.UserGoal{}, fmt.Errorf("invalid height %q", a.height)
	}
	age, err := strconv.Atoi(strings.TrimSpace(a.age))
	if err != nil {
		return model.UserGoal{}, fmt.Errorf("invalid age %q", a.age)
	}
	water, err := parsePositiveInt("water target", a.water)
	if err != nil {
		return model.UserGoal{}, err
	}
	g := model.UserGoal{
		Biometrics: &model.Biometrics{
			WeightKg:      weight,
			HeightCm:      height,
			Age:           age,
			Sex:           model.Sex(a.sex),
			ActivityLevel: a.activity,
			Direction:     model.GoalDirection(a.direction),
		},
		WaterTargetML: water,
		AutoCalories:  a.auto,
	}
	if !a.auto {
		g.CalorieTarget, err = parsePositiveInt("calorie target", a.calories)
		if err != nil {
			return model.UserGoal{}, err
		}
	}
	return g, nil
}

func positiveNumber(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a number greater than zero")
	}
	return nil
}

func goalForm(a *wizardAnswers) *huh.Form {
	activity := make([]huh.Option[string], 0, len(service.ActivityLevels))
	for _, level := range service.ActivityLevels {
		activity = append(activity, huh.NewOption(level, level))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Weight (kg)").Value(&a.weight).Validate(positiveNumber),
			huh.NewInput().Title("Height (cm)").Value(&a.height).Validate(positiveNumber),
			huh.NewInput().Title("Age (years)").Value(&a.age).Validate(positiveNumber),
			huh.NewSelect[string]().Title("Sex").Options(
				huh.NewOption("Male", string(model.SexMale)),
				huh.NewOption("Female", string(model.SexFemale)),
			).Value(&a.sex),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Activity level").Options(activity...).Value(&a.activity),
			huh.NewSelect[string]().Title("Goal").Options(
				huh.NewOption("Lose weight", string(model.DirectionLose)),
				huh.NewOption("Maintain", string(model.DirectionMaintain)),
				huh.NewOption("Gain weight", string(model.DirectionGain)),
			).Value(&a.direction),
			huh.NewInput().Title("Water target (ml)").Value(&a.water).Validate(positiveNumber),
			huh.NewConfirm().Title("Calculate calorie target from biometrics?").Value(&a.auto),
		),
		huh.NewGroup(
			huh.NewInput().Title("Calorie target (kcal)").Value(&a.calories).Validate(positiveNumber),
		).WithHideFunc(func() bool { return a.auto }),
	).WithTheme(huh.ThemeBase16())
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalShowCmd, goalSetCmd, goalRecommendCmd, goalWizardCmd)

	goalSetCmd.Flags().IntVar(&goalCalories, "calories", 0, "Daily calorie target")
	goalSetCmd.Flags().IntVar(&goalWater, "water", 0, "Daily water target (ml)")
	goalSetCmd.Flags().BoolVar(&goalAuto, "auto", false, "Derive the calorie target from biometrics")
	for _, c := range []*cobra.Command{goalSetCmd, goalRecommendCmd} {
		c.Flags().Float64Var(&goalWeight, "weight", 0, "Weight in kg")
		c.Flags().Float64Var(&goalHeight, "height", 0, "Height in cm")
		c.Flags().IntVar(&goalAge, "age", 0, "Age in years")
		c.Flags().StringVar(&goalSex, "sex", "", "male|female")
		c.Flags().StringVar(&goalActivity, "activity", "sedentary", "sedentary|light|moderate|active|very_active")
		c.Flags().StringVar(&goalDirection, "direction", "maintain", "lose|maintain|gain")
	}
}
