package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/saadjs/daykcal/internal/calendar"
	"github.com/saadjs/daykcal/internal/model"
)

const (
	WeekDays  = 7
	MonthDays = 30

	// MaxPeriodDays caps a single period report.
	MaxPeriodDays = 366

	DefaultAdherenceTolerance = 0.10
)

type AdherenceSummary struct {
	EvaluatedDays  int     `json:"evaluated_days"`
	WithinGoalDays int     `json:"within_goal_days"`
	OnTargetDays   int     `json:"on_target_days"`
	PercentWithin  float64 `json:"percent_within_goal"`
	WaterGoalDays  int     `json:"water_goal_days"`
	CalorieTarget  int     `json:"calorie_target"`
	WaterTargetML  int     `json:"water_target_ml"`
}

type PeriodReport struct {
	FromDate              string            `json:"from_date"`
	ToDate                string            `json:"to_date"`
	Days                  []model.DayTotals `json:"days"`
	TotalCalories         int               `json:"total_calories"`
	TotalProtein          float64           `json:"total_protein_g"`
	TotalCarbs            float64           `json:"total_carbs_g"`
	TotalFat              float64           `json:"total_fat_g"`
	TotalWaterML          int               `json:"total_water_ml"`
	TrackedDays           int               `json:"tracked_days"`
	AverageCaloriesPerDay float64           `json:"avg_calories_per_day"`
	AverageProteinPerDay  float64           `json:"avg_protein_per_day"`
	AverageCarbsPerDay    float64           `json:"avg_carbs_per_day"`
	AverageFatPerDay      float64           `json:"avg_fat_per_day"`
	AverageWaterPerDay    float64           `json:"avg_water_ml_per_day"`
	HighestDay            *model.DayTotals  `json:"highest_day,omitempty"`
	LowestDay             *model.DayTotals  `json:"lowest_day,omitempty"`
	Adherence             *AdherenceSummary `json:"adherence,omitempty"`
}

// PeriodLength maps a period name to its number of day keys.
func PeriodLength(name string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "week":
		return WeekDays, nil
	case "month":
		return MonthDays, nil
	default:
		return 0, fmt.Errorf("unknown period %q (expected week or month)", name)
	}
}

// bucketEvents sums events per civil day of their stored timestamp.
func bucketEvents(events []model.Event, offsetHours int) map[string]model.DayTotals {
	out := make(map[string]model.DayTotals)
	for _, ev := range events {
		key := calendar.DayKey(ev.CreatedAt, offsetHours)
		d := out[key]
		d.Date = key
		switch ev.Kind {
		case model.EventMeal:
			if ev.Meal == nil {
				continue
			}
			d.Calories += ev.Meal.Calories
			d.ProteinG += ev.Meal.Macros.ProteinG
			d.CarbsG += ev.Meal.Macros.CarbsG
			d.FatG += ev.Meal.Macros.FatG
			d.Meals++
		case model.EventWater:
			d.WaterML += ev.WaterML
		}
		out[key] = d
	}
	return out
}

// DayTotals sums the events that fall on key. A day without events yields
// zero totals.
func DayTotals(events []model.Event, key string, offsetHours int) model.DayTotals {
	if d, ok := bucketEvents(events, offsetHours)[key]; ok {
		return d
	}
	return model.DayTotals{Date: key}
}

// PeriodSummary reports the days consecutive keys ending at endKey. Averages
// are per tracked day: days without logged energy are left out of the
// denominator. days is clamped to MaxPeriodDays.
func PeriodSummary(events []model.Event, endKey string, days, offsetHours int) *PeriodReport {
	if days > MaxPeriodDays {
		days = MaxPeriodDays
	}
	keys := calendar.KeysEnding(endKey, days)
	report := &PeriodReport{Days: make([]model.DayTotals, 0, len(keys))}
	if len(keys) == 0 {
		return report
	}
	report.FromDate = keys[0]
	report.ToDate = keys[len(keys)-1]

	buckets := bucketEvents(events, offsetHours)
	waterDays := 0
	for _, key := range keys {
		d, ok := buckets[key]
		if !ok {
			d = model.DayTotals{Date: key}
		}
		report.Days = append(report.Days, d)
		report.TotalCalories += d.Calories
		report.TotalProtein += d.ProteinG
		report.TotalCarbs += d.CarbsG
		report.TotalFat += d.FatG
		report.TotalWaterML += d.WaterML
		if d.Tracked() {
			report.TrackedDays++
		}
		if d.WaterML > 0 {
			waterDays++
		}
	}

	if report.TrackedDays > 0 {
		div := float64(report.TrackedDays)
		report.AverageCaloriesPerDay = float64(report.TotalCalories) / div
		report.AverageProteinPerDay = report.TotalProtein / div
		report.AverageCarbsPerDay = report.TotalCarbs / div
		report.AverageFatPerDay = report.TotalFat / div
		report.HighestDay, report.LowestDay = extremeDays(report.Days)
	}
	if waterDays > 0 {
		report.AverageWaterPerDay = float64(report.TotalWaterML) / float64(waterDays)
	}
	return report
}

// ApplyGoal fills in adherence against goal for the report's tracked days.
func (r *PeriodReport) ApplyGoal(goal model.UserGoal, tolerance float64) {
	out := &AdherenceSummary{CalorieTarget: goal.CalorieTarget, WaterTargetML: goal.WaterTargetML}
	for _, d := range r.Days {
		if goal.WaterTargetML > 0 && d.WaterML >= goal.WaterTargetML {
			out.WaterGoalDays++
		}
		if !d.Tracked() {
			continue
		}
		out.EvaluatedDays++
		if d.Calories <= goal.CalorieTarget {
			out.WithinGoalDays++
		}
		if AdherenceWithin(float64(d.Calories), float64(goal.CalorieTarget), tolerance) {
			out.OnTargetDays++
		}
	}
	if out.EvaluatedDays > 0 {
		out.PercentWithin = (float64(out.WithinGoalDays) / float64(out.EvaluatedDays)) * 100
	}
	r.Adherence = out
}

func extremeDays(days []model.DayTotals) (*model.DayTotals, *model.DayTotals) {
	tracked := make([]model.DayTotals, 0, len(days))
	for _, d := range days {
		if d.Tracked() {
			tracked = append(tracked, d)
		}
	}
	if len(tracked) == 0 {
		return nil, nil
	}
	sort.SliceStable(tracked, func(i, j int) bool {
		return tracked[i].Calories < tracked[j].Calories
	})
	low := tracked[0]
	high := tracked[len(tracked)-1]
	return &high, &low
}
