package service

import "github.com/saadjs/daykcal/internal/model"

type TodayStatus struct {
	Date              string  `json:"date"`
	Calories          int     `json:"calories"`
	ProteinG          float64 `json:"protein_g"`
	CarbsG            float64 `json:"carbs_g"`
	FatG              float64 `json:"fat_g"`
	WaterML           int     `json:"water_ml"`
	Meals             int     `json:"meals"`
	GoalCalories      int     `json:"goal_calories"`
	GoalWaterML       int     `json:"goal_water_ml"`
	RemainingCalories int     `json:"remaining_calories"`
	RemainingWaterML  int     `json:"remaining_water_ml"`
	OverCalories      bool    `json:"over_calories"`
}

// TodaySummary compares the totals for key against goal. Remaining water
// never goes below zero; remaining calories may, and OverCalories flags it.
func TodaySummary(events []model.Event, goal model.UserGoal, key string, offsetHours int) TodayStatus {
	d := DayTotals(events, key, offsetHours)
	status := TodayStatus{
		Date:         key,
		Calories:     d.Calories,
		ProteinG:     d.ProteinG,
		CarbsG:       d.CarbsG,
		FatG:         d.FatG,
		WaterML:      d.WaterML,
		Meals:        d.Meals,
		GoalCalories: goal.CalorieTarget,
		GoalWaterML:  goal.WaterTargetML,
	}
	status.RemainingCalories = goal.CalorieTarget - d.Calories
	status.OverCalories = status.RemainingCalories < 0
	status.RemainingWaterML = max(goal.WaterTargetML-d.WaterML, 0)
	return status
}
