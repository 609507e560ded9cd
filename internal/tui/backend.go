package tui

import (
	"context"
	"time"

	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/service"
)

// Status is everything the live view renders.
type Status struct {
	Clock       model.ClockState
	Today       string
	Remaining   time.Duration
	OffsetHours int
	Summary     service.TodayStatus
	Recent      []model.Event
}

type Backend interface {
	// Tick runs the day-boundary reconciliation.
	Tick(ctx context.Context) (bool, error)
	EndDay(ctx context.Context) error
	Status(ctx context.Context) (*Status, error)
}

// ServiceBackend serves the live view from the local store.
type ServiceBackend struct {
	Deps service.Deps
}

func (b ServiceBackend) Tick(ctx context.Context) (bool, error) {
	return b.Deps.Clock.Tick(ctx)
}

func (b ServiceBackend) EndDay(ctx context.Context) error {
	_, err := b.Deps.Clock.EndDay(ctx)
	return err
}

func (b ServiceBackend) Status(ctx context.Context) (*Status, error) {
	m := b.Deps.Clock
	today := m.Today()
	events, err := service.LoadEvents(ctx, b.Deps.Store)
	if err != nil {
		return nil, err
	}
	goal, err := service.LoadGoal(ctx, b.Deps.Store)
	if err != nil {
		return nil, err
	}
	recent, err := service.ListEvents(ctx, b.Deps.Store, m.OffsetHours(), service.ListEventsFilter{Date: today, Limit: 8})
	if err != nil {
		return nil, err
	}
	return &Status{
		Clock:       m.State(),
		Today:       today,
		Remaining:   m.Remaining(),
		OffsetHours: m.OffsetHours(),
		Summary:     service.TodaySummary(events, goal, today, m.OffsetHours()),
		Recent:      recent,
	}, nil
}
