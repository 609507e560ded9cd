package model

import "time"

type EventKind string

const (
	EventMeal  EventKind = "meal"
	EventWater EventKind = "water"
)

type MealSource string

const (
	SourcePhoto  MealSource = "photo"
	SourceText   MealSource = "text"
	SourceManual MealSource = "manual"
)

// ClockState is the persisted virtual day. DayOffset counts manual
// advances not yet absorbed by real midnights.
type ClockState struct {
	DayOffset            int    `json:"day_offset"`
	DayCount             int    `json:"day_count"`
	LastObservedRealDate string `json:"last_observed_real_date"`
}

type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

type FoodItem struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

type NutritionEstimate struct {
	MealName      string     `json:"meal_name"`
	Items         []FoodItem `json:"items"`
	TotalCalories int        `json:"total_calories"`
	Macros        Macros     `json:"macros"`
	Confidence    float64    `json:"confidence"`
}

type MealPayload struct {
	Name       string     `json:"name"`
	Items      []FoodItem `json:"items,omitempty"`
	Calories   int        `json:"calories"`
	Macros     Macros     `json:"macros"`
	Confidence float64    `json:"confidence"`
	Source     MealSource `json:"source"`
	Notes      string     `json:"notes,omitempty"`
}

// Event is a logged meal or water intake. CreatedAt is the virtual
// timestamp at logging time and never changes.
type Event struct {
	ID        string       `json:"id"`
	Kind      EventKind    `json:"kind"`
	CreatedAt time.Time    `json:"created_at"`
	Meal      *MealPayload `json:"meal,omitempty"`
	WaterML   int          `json:"water_ml,omitempty"`
}

func (e Event) Calories() int {
	if e.Meal == nil {
		return 0
	}
	return e.Meal.Calories
}

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type GoalDirection string

const (
	DirectionLose     GoalDirection = "lose"
	DirectionMaintain GoalDirection = "maintain"
	DirectionGain     GoalDirection = "gain"
)

type Biometrics struct {
	WeightKg      float64       `json:"weight_kg"`
	HeightCm      float64       `json:"height_cm"`
	Age           int           `json:"age"`
	Sex           Sex           `json:"sex"`
	ActivityLevel string        `json:"activity_level"`
	Direction     GoalDirection `json:"direction"`
}

type UserGoal struct {
	Biometrics    *Biometrics `json:"biometrics,omitempty"`
	CalorieTarget int         `json:"calorie_target"`
	WaterTargetML int         `json:"water_target_ml"`
	AutoCalories  bool        `json:"auto_calories"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type DayTotals struct {
	Date     string  `json:"date"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	WaterML  int     `json:"water_ml"`
	Meals    int     `json:"meals"`
}

// Tracked reports whether any energy was logged for the day.
func (d DayTotals) Tracked() bool {
	return d.Calories > 0
}
