package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/store"
)

const (
	DefaultCalorieTarget = 2000
	DefaultWaterTargetML = 2000

	// DirectionDelta is the daily kcal shift applied for lose/gain goals.
	DirectionDelta = 500
)

// ActivityMultipliers maps activity levels to their TDEE multiplier.
var ActivityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// ActivityLevels lists the keys of ActivityMultipliers from least to most active.
var ActivityLevels = []string{"sedentary", "light", "moderate", "active", "very_active"}

// BMR is the Mifflin-St Jeor basal metabolic rate.
func BMR(b model.Biometrics) float64 {
	bmr := 10*b.WeightKg + 6.25*b.HeightCm - 5*float64(b.Age)
	if b.Sex == model.SexMale {
		return bmr + 5
	}
	return bmr - 161
}

// ActivityMultiplier returns the multiplier for level, falling back to
// sedentary for unknown levels.
func ActivityMultiplier(level string) float64 {
	if m, ok := ActivityMultipliers[strings.ToLower(strings.TrimSpace(level))]; ok {
		return m
	}
	return ActivityMultipliers["sedentary"]
}

// RecommendedCalories derives a daily target from biometrics. Inputs are not
// validated; nonsense in gives nonsense out.
func RecommendedCalories(b model.Biometrics) int {
	kcal := BMR(b) * ActivityMultiplier(b.ActivityLevel)
	switch b.Direction {
	case model.DirectionLose:
		kcal -= DirectionDelta
	case model.DirectionGain:
		kcal += DirectionDelta
	}
	return int(math.Round(kcal))
}

// ValidateBiometrics is the input check the CLI and goal wizard run before
// calling RecommendedCalories.
func ValidateBiometrics(b model.Biometrics) error {
	if b.WeightKg <= 0 || b.WeightKg > 500 {
		return fmt.Errorf("weight must be between 0 and 500 kg")
	}
	if b.HeightCm <= 0 || b.HeightCm > 300 {
		return fmt.Errorf("height must be between 0 and 300 cm")
	}
	if b.Age <= 0 || b.Age > 130 {
		return fmt.Errorf("age must be between 1 and 130")
	}
	if b.Sex != model.SexMale && b.Sex != model.SexFemale {
		return fmt.Errorf("sex must be male or female")
	}
	if _, ok := ActivityMultipliers[b.ActivityLevel]; !ok {
		return fmt.Errorf("activity level must be one of: %s", strings.Join(ActivityLevels, ", "))
	}
	switch b.Direction {
	case model.DirectionLose, model.DirectionMaintain, model.DirectionGain:
	default:
		return fmt.Errorf("direction must be lose, maintain or gain")
	}
	return nil
}

func DefaultGoal() model.UserGoal {
	return model.UserGoal{
		CalorieTarget: DefaultCalorieTarget,
		WaterTargetML: DefaultWaterTargetML,
	}
}

// LoadGoal returns the stored goal, or DefaultGoal when none was saved.
func LoadGoal(ctx context.Context, st store.Store) (model.UserGoal, error) {
	g := DefaultGoal()
	if _, err := store.LoadJSON(ctx, st, store.KeyUserGoal, &g); err != nil {
		return model.UserGoal{}, fmt.Errorf("load goal: %w", err)
	}
	return g, nil
}

// SaveGoal replaces the stored goal. With AutoCalories set the calorie target
// is recomputed from the biometrics.
func SaveGoal(ctx context.Context, st store.Store, g model.UserGoal, now time.Time) (model.UserGoal, error) {
	if g.AutoCalories {
		if g.Biometrics == nil {
			return model.UserGoal{}, fmt.Errorf("auto calories requires biometrics")
		}
		if err := ValidateBiometrics(*g.Biometrics); err != nil {
			return model.UserGoal{}, err
		}
		g.CalorieTarget = RecommendedCalories(*g.Biometrics)
	}
	if g.CalorieTarget <= 0 {
		return model.UserGoal{}, fmt.Errorf("calorie target must be > 0")
	}
	if g.WaterTargetML <= 0 {
		return model.UserGoal{}, fmt.Errorf("water target must be > 0")
	}
	g.UpdatedAt = now.UTC()
	if err := store.SaveJSON(ctx, st, store.KeyUserGoal, g); err != nil {
		return model.UserGoal{}, fmt.Errorf("save goal: %w", err)
	}
	return g, nil
}

func AdherenceWithin(actual float64, target float64, tolerance float64) bool {
	if target == 0 {
		return actual == 0
	}
	lower := target * (1 - tolerance)
	upper := target * (1 + tolerance)
	return actual >= lower && actual <= upper
}
