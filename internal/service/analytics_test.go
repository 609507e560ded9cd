package service_test

import (
	"testing"
	"time"

	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/service"
)

func meal(id string, at time.Time, kcal int, p, c, f float64) model.Event {
	return model.Event{
		ID:        id,
		Kind:      model.EventMeal,
		CreatedAt: at,
		Meal:      &model.MealPayload{Name: id, Calories: kcal, Macros: model.Macros{ProteinG: p, CarbsG: c, FatG: f}, Source: model.SourceManual},
	}
}

func water(id string, at time.Time, ml int) model.Event {
	return model.Event{ID: id, Kind: model.EventWater, CreatedAt: at, WaterML: ml}
}

// at returns hh:00 on the given March 2026 day at UTC+3.
func at(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
}

func TestDayTotalsZeroDay(t *testing.T) {
	t.Parallel()
	events := []model.Event{meal("a", at(10, 8), 400, 20, 50, 10)}
	got := service.DayTotals(events, "2026-03-09", 3)
	want := model.DayTotals{Date: "2026-03-09"}
	if got != want {
		t.Fatalf("expected zero totals, got %+v", got)
	}
	if got.Tracked() {
		t.Fatalf("zero day must not count as tracked")
	}
}

func TestDayTotalsSumsByStoredTimestamp(t *testing.T) {
	t.Parallel()
	events := []model.Event{
		meal("breakfast", at(10, 8), 400, 20, 50, 10),
		meal("late", at(10, 23), 300, 10, 30, 12),
		// 00:30 at UTC+3 is still 2026-03-10 in UTC; bucketing must use the fixed offset.
		meal("after-midnight", time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC), 999, 0, 0, 0),
		water("w1", at(10, 9), 500),
		water("w2", at(10, 15), 750),
	}
	got := service.DayTotals(events, "2026-03-10", 3)
	if got.Calories != 700 || got.ProteinG != 30 || got.CarbsG != 80 || got.FatG != 22 {
		t.Fatalf("unexpected energy totals: %+v", got)
	}
	if got.WaterML != 1250 || got.Meals != 2 {
		t.Fatalf("unexpected water/meal totals: %+v", got)
	}
	next := service.DayTotals(events, "2026-03-11", 3)
	if next.Calories != 999 {
		t.Fatalf("expected after-midnight meal on 2026-03-11, got %+v", next)
	}
}

func TestPeriodSummaryAveragesTrackedDaysOnly(t *testing.T) {
	t.Parallel()
	events := []model.Event{
		meal("d8", at(8, 12), 1800, 100, 200, 60),
		meal("d10a", at(10, 8), 1000, 50, 100, 30),
		meal("d10b", at(10, 19), 1200, 70, 120, 40),
		water("w9", at(9, 10), 2000), // water only: not a tracked day
		meal("old", at(1, 12), 5000, 0, 0, 0),
	}
	r := service.PeriodSummary(events, "2026-03-10", service.WeekDays, 3)
	if r.FromDate != "2026-03-04" || r.ToDate != "2026-03-10" || len(r.Days) != 7 {
		t.Fatalf("unexpected range %s..%s (%d days)", r.FromDate, r.ToDate, len(r.Days))
	}
	if r.TotalCalories != 4000 || r.TrackedDays != 2 {
		t.Fatalf("expected 4000 kcal over 2 tracked days, got %d over %d", r.TotalCalories, r.TrackedDays)
	}
	if r.AverageCaloriesPerDay != 2000 {
		t.Fatalf("expected 2000 avg per tracked day, got %v", r.AverageCaloriesPerDay)
	}
	if r.AverageProteinPerDay != 110 {
		t.Fatalf("expected 110 g protein avg, got %v", r.AverageProteinPerDay)
	}
	if r.TotalWaterML != 2000 || r.AverageWaterPerDay != 2000 {
		t.Fatalf("unexpected water totals: %d / %v", r.TotalWaterML, r.AverageWaterPerDay)
	}
	if r.HighestDay == nil || r.HighestDay.Date != "2026-03-10" || r.LowestDay.Date != "2026-03-08" {
		t.Fatalf("unexpected extremes: %+v %+v", r.HighestDay, r.LowestDay)
	}
	if r.Days[0].Date != "2026-03-04" || r.Days[0].Calories != 0 {
		t.Fatalf("expected zero-filled first day, got %+v", r.Days[0])
	}
}

func TestPeriodSummaryEmpty(t *testing.T) {
	t.Parallel()
	r := service.PeriodSummary(nil, "2026-03-10", service.MonthDays, 3)
	if len(r.Days) != 30 || r.TrackedDays != 0 || r.AverageCaloriesPerDay != 0 {
		t.Fatalf("unexpected empty report: %+v", r)
	}
	if r.HighestDay != nil || r.LowestDay != nil {
		t.Fatalf("expected no extremes without tracked days")
	}
	if r.FromDate != "2026-02-09" {
		t.Fatalf("expected month to start 2026-02-09, got %s", r.FromDate)
	}
}

func TestPeriodSummaryClampsDays(t *testing.T) {
	t.Parallel()
	r := service.PeriodSummary(nil, "2026-03-10", 1_000_000_000, 3)
	if len(r.Days) != service.MaxPeriodDays {
		t.Fatalf("expected %d days, got %d", service.MaxPeriodDays, len(r.Days))
	}
	if r.ToDate != "2026-03-10" || r.FromDate != "2025-03-10" {
		t.Fatalf("unexpected range %s..%s", r.FromDate, r.ToDate)
	}
}

func TestApplyGoalAdherence(t *testing.T) {
	t.Parallel()
	events := []model.Event{
		meal("d8", at(8, 12), 1900, 0, 0, 0),
		meal("d9", at(9, 12), 2400, 0, 0, 0),
		meal("d10", at(10, 12), 1200, 0, 0, 0),
		water("w10", at(10, 9), 2100),
	}
	r := service.PeriodSummary(events, "2026-03-10", service.WeekDays, 3)
	r.ApplyGoal(model.UserGoal{CalorieTarget: 2000, WaterTargetML: 2000}, service.DefaultAdherenceTolerance)
	a := r.Adherence
	if a == nil {
		t.Fatalf("expected adherence")
	}
	if a.EvaluatedDays != 3 || a.WithinGoalDays != 2 || a.OnTargetDays != 1 || a.WaterGoalDays != 1 {
		t.Fatalf("unexpected adherence: %+v", a)
	}
	if a.PercentWithin < 66.6 || a.PercentWithin > 66.7 {
		t.Fatalf("expected ~66.7%% within goal, got %v", a.PercentWithin)
	}
}

func TestPeriodLength(t *testing.T) {
	t.Parallel()
	if n, err := service.PeriodLength("Week"); err != nil || n != 7 {
		t.Fatalf("expected week=7, got %d (%v)", n, err)
	}
	if n, err := service.PeriodLength("month"); err != nil || n != 30 {
		t.Fatalf("expected month=30, got %d (%v)", n, err)
	}
	if _, err := service.PeriodLength("fortnight"); err == nil {
		t.Fatalf("expected unknown period to fail")
	}
}

func TestTodaySummaryRemaining(t *testing.T) {
	t.Parallel()
	events := []model.Event{
		meal("a", at(10, 8), 1500, 60, 150, 50),
		meal("b", at(10, 20), 800, 30, 80, 30),
		water("w", at(10, 9), 2500),
	}
	s := service.TodaySummary(events, model.UserGoal{CalorieTarget: 2000, WaterTargetML: 2000}, "2026-03-10", 3)
	if s.Calories != 2300 || s.RemainingCalories != -300 || !s.OverCalories {
		t.Fatalf("unexpected calorie status: %+v", s)
	}
	if s.WaterML != 2500 || s.RemainingWaterML != 0 {
		t.Fatalf("unexpected water status: %+v", s)
	}
	if s.Meals != 2 || s.GoalCalories != 2000 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
