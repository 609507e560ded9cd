package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/saadjs/daykcal/internal/estimator"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/service"
)

func TestLogMealStampsVirtualNow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)

	first, err := service.LogMeal(ctx, env.deps, service.MealInput{Name: " Oatmeal ", Calories: 350})
	if err != nil {
		t.Fatalf("log meal: %v", err)
	}
	if first.Meal.Name != "Oatmeal" || first.Meal.Source != model.SourceManual {
		t.Fatalf("unexpected payload: %+v", first.Meal)
	}
	if !first.CreatedAt.Equal(testNoon) {
		t.Fatalf("expected created_at %s, got %s", testNoon, first.CreatedAt)
	}

	if _, err := env.deps.Clock.EndDay(ctx); err != nil {
		t.Fatalf("end day: %v", err)
	}
	second, err := service.LogMeal(ctx, env.deps, service.MealInput{Name: "Eggs", Calories: 200})
	if err != nil {
		t.Fatalf("log meal: %v", err)
	}
	if got := second.CreatedAt.Sub(testNoon); got != 24*time.Hour {
		t.Fatalf("expected event a day ahead after end day, got %s", got)
	}

	tomorrow, err := service.ListEvents(ctx, env.deps.Store, 3, service.ListEventsFilter{Date: "2026-03-11"})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(tomorrow) != 1 || tomorrow[0].ID != second.ID {
		t.Fatalf("expected only the second meal on 2026-03-11, got %+v", tomorrow)
	}
}

func TestLogMealValidates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)

	bad := []service.MealInput{
		{Name: "", Calories: 100},
		{Name: "Toast", Calories: -1},
		{Name: "Toast", Macros: model.Macros{FatG: -2}},
		{Name: "Toast", Confidence: 1.5},
		{Name: "Toast", Items: []model.FoodItem{{Name: "butter", Calories: -10}}},
	}
	for i, in := range bad {
		if _, err := service.LogMeal(ctx, env.deps, in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	events, err := service.LoadEvents(ctx, env.deps.Store)
	if err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events after failed validation, got %d", len(events))
	}
}

func TestLogMealFromTextUsesEstimate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := &fakeEstimator{out: estimator.Outcome{
		Kind: estimator.KindFood,
		Estimate: model.NutritionEstimate{
			MealName:      "Chicken Salad",
			Items:         []model.FoodItem{{Name: "chicken", Calories: 300}, {Name: "greens", Calories: 50}},
			TotalCalories: 350,
			Macros:        model.Macros{ProteinG: 40, CarbsG: 10, FatG: 15},
			Confidence:    0.7,
		},
	}}
	env := newTestEnv(t, fake)

	ev, err := service.LogMealFromText(ctx, env.deps, "grilled chicken salad", "lunch")
	if err != nil {
		t.Fatalf("log from text: %v", err)
	}
	if fake.lastArg != "grilled chicken salad" {
		t.Fatalf("estimator got %q", fake.lastArg)
	}
	if ev.Meal.Calories != 350 || ev.Meal.Source != model.SourceText || ev.Meal.Notes != "lunch" || len(ev.Meal.Items) != 2 {
		t.Fatalf("unexpected meal: %+v", ev.Meal)
	}

	counts, err := service.EstimateOutcomeCounts(ctx, env.deps)
	if err != nil {
		t.Fatalf("audit counts: %v", err)
	}
	if counts["food"] != 1 {
		t.Fatalf("expected one food audit row, got %+v", counts)
	}
}

func TestLogMealFromImageFailureLogsNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := &fakeEstimator{err: &estimator.EstimationError{Provider: "fake", Reason: estimator.ReasonStatus, Err: errors.New("status 503")}}
	env := newTestEnv(t, fake)

	_, err := service.LogMealFromImage(ctx, env.deps, []byte{1, 2, 3}, "image/png", "")
	var estErr *estimator.EstimationError
	if !errors.As(err, &estErr) || estErr.Reason != estimator.ReasonStatus {
		t.Fatalf("expected status estimation error, got %v", err)
	}
	if fake.lastArg != "image/png" {
		t.Fatalf("expected mime type passed through, got %q", fake.lastArg)
	}
	events, err := service.LoadEvents(ctx, env.deps.Store)
	if err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events after failure, got %d", len(events))
	}

	rows, err := service.RecentEstimates(ctx, env.deps, 5)
	if err != nil {
		t.Fatalf("recent estimates: %v", err)
	}
	if len(rows) != 1 || rows[0].Outcome != "status" || rows[0].InputKind != "image" {
		t.Fatalf("unexpected audit rows: %+v", rows)
	}
}

func TestLogMealFromTextNotFood(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, &fakeEstimator{out: estimator.Outcome{Kind: estimator.KindNotFood}})

	_, err := service.LogMealFromText(ctx, env.deps, "a red stapler", "")
	if !errors.Is(err, estimator.ErrNotFood) {
		t.Fatalf("expected ErrNotFood, got %v", err)
	}
	var estErr *estimator.EstimationError
	if !errors.As(err, &estErr) || estErr.Reason != estimator.ReasonNotFood {
		t.Fatalf("expected not_food EstimationError, got %v", err)
	}
	events, _ := service.LoadEvents(ctx, env.deps.Store)
	if len(events) != 0 {
		t.Fatalf("expected no events for not-food input")
	}
}

func TestLogMealFromTextWithoutEstimator(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	if _, err := service.LogMealFromText(context.Background(), env.deps, "toast", ""); !errors.Is(err, service.ErrNoEstimator) {
		t.Fatalf("expected ErrNoEstimator, got %v", err)
	}
}

func TestRemoveEventByPrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)

	meal, err := service.LogMeal(ctx, env.deps, service.MealInput{Name: "Bagel", Calories: 280})
	if err != nil {
		t.Fatalf("log meal: %v", err)
	}
	water, err := service.LogWater(ctx, env.deps, 500)
	if err != nil {
		t.Fatalf("log water: %v", err)
	}

	if _, err := service.RemoveEvent(ctx, env.deps, "ab"); err == nil || !strings.Contains(err.Error(), "at least") {
		t.Fatalf("expected short prefix error, got %v", err)
	}
	if _, err := service.RemoveEvent(ctx, env.deps, "ffffffff-0000"); !errors.Is(err, service.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}

	removed, err := service.RemoveEvent(ctx, env.deps, strings.ToUpper(meal.ID[:8]))
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.ID != meal.ID {
		t.Fatalf("removed wrong event %s", removed.ID)
	}
	events, err := service.LoadEvents(ctx, env.deps.Store)
	if err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 || events[0].ID != water.ID {
		t.Fatalf("expected only the water event left, got %+v", events)
	}
}

func TestLogWaterBounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)
	for _, ml := range []int{0, -250, service.MaxWaterML + 1} {
		if _, err := service.LogWater(ctx, env.deps, ml); err == nil {
			t.Fatalf("expected %d ml to be rejected", ml)
		}
	}
	ev, err := service.LogWater(ctx, env.deps, 250)
	if err != nil {
		t.Fatalf("log water: %v", err)
	}
	if ev.Kind != model.EventWater || ev.WaterML != 250 || ev.Calories() != 0 {
		t.Fatalf("unexpected water event: %+v", ev)
	}
}

func TestListEventsFiltersAndOrders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, nil)

	for i, name := range []string{"Breakfast", "Lunch", "Dinner"} {
		env.clock.Set(testNoon.Add(time.Duration(i) * time.Hour))
		if _, err := service.LogMeal(ctx, env.deps, service.MealInput{Name: name, Calories: 100 * (i + 1)}); err != nil {
			t.Fatalf("log %s: %v", name, err)
		}
	}
	if _, err := service.LogWater(ctx, env.deps, 300); err != nil {
		t.Fatalf("log water: %v", err)
	}

	meals, err := service.ListEvents(ctx, env.deps.Store, 3, service.ListEventsFilter{Kind: model.EventMeal, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(meals) != 2 || meals[0].Meal.Name != "Dinner" || meals[1].Meal.Name != "Lunch" {
		t.Fatalf("expected newest two meals, got %+v", meals)
	}

	if _, err := service.ListEvents(ctx, env.deps.Store, 3, service.ListEventsFilter{Date: "2026-03-10", FromDate: "2026-03-01"}); err == nil {
		t.Fatalf("expected date and range together to fail")
	}
	if _, err := service.ListEvents(ctx, env.deps.Store, 3, service.ListEventsFilter{FromDate: "2026-03-11", ToDate: "2026-03-10"}); err == nil {
		t.Fatalf("expected inverted range to fail")
	}
	none, err := service.ListEvents(ctx, env.deps.Store, 3, service.ListEventsFilter{FromDate: "2026-03-11"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no events after 2026-03-11, got %d", len(none))
	}
}
