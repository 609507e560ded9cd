package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saadjs/daykcal/internal/model"
)

// MaxWaterML caps a single hydration entry.
const MaxWaterML = 5000

func LogWater(ctx context.Context, d Deps, ml int) (model.Event, error) {
	if ml <= 0 {
		return model.Event{}, fmt.Errorf("water amount must be > 0 ml")
	}
	if ml > MaxWaterML {
		return model.Event{}, fmt.Errorf("water amount must be <= %d ml per entry", MaxWaterML)
	}
	ev := model.Event{
		ID:        uuid.NewString(),
		Kind:      model.EventWater,
		CreatedAt: d.Clock.Now().UTC(),
		WaterML:   ml,
	}
	if err := appendEvent(ctx, d, ev); err != nil {
		return model.Event{}, err
	}
	d.logger().Info(ctx, "water logged", "id", ev.ID, "ml", ml)
	return ev, nil
}
