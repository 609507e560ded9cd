package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/saadjs/daykcal/internal/calendar"
	"github.com/saadjs/daykcal/internal/estimator"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/store"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrAmbiguousID   = errors.New("event id prefix matches more than one event")
	ErrNoEstimator   = errors.New("no estimator configured")
)

// minIDPrefix is the shortest id prefix accepted by RemoveEvent.
const minIDPrefix = 4

type MealInput struct {
	Name       string
	Items      []model.FoodItem
	Calories   int
	Macros     model.Macros
	Confidence float64
	Source     model.MealSource
	Notes      string
}

type ListEventsFilter struct {
	Date     string
	FromDate string
	ToDate   string
	Kind     model.EventKind
	Limit    int
}

func validateMeal(in MealInput) (MealInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("meal name is required")
	}
	if err := validateNonNegativeInt("calories", in.Calories); err != nil {
		return in, err
	}
	if err := validateNonNegativeFloat("protein", in.Macros.ProteinG); err != nil {
		return in, err
	}
	if err := validateNonNegativeFloat("carbs", in.Macros.CarbsG); err != nil {
		return in, err
	}
	if err := validateNonNegativeFloat("fat", in.Macros.FatG); err != nil {
		return in, err
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return in, fmt.Errorf("confidence must be between 0 and 1")
	}
	for _, it := range in.Items {
		if err := validateNonNegativeInt("item calories", it.Calories); err != nil {
			return in, err
		}
	}
	if in.Source == "" {
		in.Source = model.SourceManual
	}
	return in, nil
}

// LogMeal appends a meal stamped with the virtual now.
func LogMeal(ctx context.Context, d Deps, in MealInput) (model.Event, error) {
	in, err := validateMeal(in)
	if err != nil {
		return model.Event{}, err
	}
	ev := model.Event{
		ID:        uuid.NewString(),
		Kind:      model.EventMeal,
		CreatedAt: d.Clock.Now().UTC(),
		Meal: &model.MealPayload{
			Name:       in.Name,
			Items:      in.Items,
			Calories:   in.Calories,
			Macros:     in.Macros,
			Confidence: in.Confidence,
			Source:     in.Source,
			Notes:      strings.TrimSpace(in.Notes),
		},
	}
	if err := appendEvent(ctx, d, ev); err != nil {
		return model.Event{}, err
	}
	d.logger().Info(ctx, "meal logged", "id", ev.ID, "calories", in.Calories, "source", in.Source)
	return ev, nil
}

// LogMealFromText estimates a described meal and logs it. Any estimation
// failure is returned as *estimator.EstimationError and nothing is logged.
func LogMealFromText(ctx context.Context, d Deps, description, notes string) (model.Event, error) {
	if d.Estimator == nil {
		return model.Event{}, ErrNoEstimator
	}
	out, err := d.Estimator.EstimateFromText(ctx, description)
	return logEstimated(ctx, d, auditText, out, err, model.SourceText, notes)
}

func LogMealFromImage(ctx context.Context, d Deps, image []byte, mimeType, notes string) (model.Event, error) {
	if d.Estimator == nil {
		return model.Event{}, ErrNoEstimator
	}
	out, err := d.Estimator.EstimateFromImage(ctx, image, mimeType)
	return logEstimated(ctx, d, auditImage, out, err, model.SourcePhoto, notes)
}

func logEstimated(ctx context.Context, d Deps, inputKind string, out estimator.Outcome, err error, source model.MealSource, notes string) (model.Event, error) {
	provider := d.Estimator.Name()
	if err != nil {
		recordEstimate(ctx, d, inputKind, failureOutcome(err), 0)
		d.logger().Warn(ctx, "estimate failed", "provider", provider, "err", err)
		return model.Event{}, err
	}
	if !out.IsFood() {
		recordEstimate(ctx, d, inputKind, string(estimator.KindNotFood), 0)
		return model.Event{}, estimator.NotFood(provider)
	}
	est := out.Estimate
	recordEstimate(ctx, d, inputKind, string(estimator.KindFood), est.TotalCalories)
	return LogMeal(ctx, d, MealInput{
		Name:       est.MealName,
		Items:      est.Items,
		Calories:   est.TotalCalories,
		Macros:     est.Macros,
		Confidence: est.Confidence,
		Source:     source,
		Notes:      notes,
	})
}

func failureOutcome(err error) string {
	var estErr *estimator.EstimationError
	if errors.As(err, &estErr) {
		return string(estErr.Reason)
	}
	return "error"
}

func appendEvent(ctx context.Context, d Deps, ev model.Event) error {
	events, err := LoadEvents(ctx, d.Store)
	if err != nil {
		return err
	}
	return saveEvents(ctx, d.Store, append(events, ev))
}

// RemoveEvent deletes the event whose id equals or uniquely starts with id.
func RemoveEvent(ctx context.Context, d Deps, id string) (model.Event, error) {
	id = strings.TrimSpace(strings.ToLower(id))
	if len(id) < minIDPrefix {
		return model.Event{}, fmt.Errorf("event id must have at least %d characters", minIDPrefix)
	}
	events, err := LoadEvents(ctx, d.Store)
	if err != nil {
		return model.Event{}, err
	}
	idx, err := findEvent(events, id)
	if err != nil {
		return model.Event{}, err
	}
	removed := events[idx]
	events = append(events[:idx], events[idx+1:]...)
	if err := saveEvents(ctx, d.Store, events); err != nil {
		return model.Event{}, err
	}
	d.logger().Info(ctx, "event removed", "id", removed.ID, "kind", removed.Kind)
	return removed, nil
}

func findEvent(events []model.Event, id string) (int, error) {
	match := -1
	for i, ev := range events {
		if ev.ID == id {
			return i, nil
		}
		if strings.HasPrefix(ev.ID, id) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return match, nil
}

// ListEvents returns events newest first, bucketed by the civil day of their
// stored timestamp.
func ListEvents(ctx context.Context, st store.Store, offsetHours int, f ListEventsFilter) ([]model.Event, error) {
	f, err := normalizeListFilter(f)
	if err != nil {
		return nil, err
	}
	events, err := LoadEvents(ctx, st)
	if err != nil {
		return nil, err
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if f.Kind != "" && ev.Kind != f.Kind {
			continue
		}
		key := calendar.DayKey(ev.CreatedAt, offsetHours)
		if f.Date != "" && key != f.Date {
			continue
		}
		if f.FromDate != "" && key < f.FromDate {
			continue
		}
		if f.ToDate != "" && key > f.ToDate {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func normalizeListFilter(f ListEventsFilter) (ListEventsFilter, error) {
	for _, p := range []*string{&f.Date, &f.FromDate, &f.ToDate} {
		if strings.TrimSpace(*p) == "" {
			*p = ""
			continue
		}
		key, err := calendar.ParseKey(*p)
		if err != nil {
			return f, err
		}
		*p = key
	}
	if f.Date != "" && (f.FromDate != "" || f.ToDate != "") {
		return f, fmt.Errorf("use either a single date or a from/to range")
	}
	if f.FromDate != "" && f.ToDate != "" && f.FromDate > f.ToDate {
		return f, fmt.Errorf("from date must be <= to date")
	}
	switch f.Kind {
	case "", model.EventMeal, model.EventWater:
	default:
		return f, fmt.Errorf("unknown event kind %q", f.Kind)
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return f, nil
}
