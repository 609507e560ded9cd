package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/daykcal/internal/dayclock"
	"github.com/saadjs/daykcal/internal/logging"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/service"
	"github.com/saadjs/daykcal/internal/store"
)

type fakeBackend struct {
	ticks   int
	ended   int
	rolled  bool
	status  *Status
	failErr error
}

func (f *fakeBackend) Tick(context.Context) (bool, error) {
	f.ticks++
	return f.rolled, f.failErr
}

func (f *fakeBackend) EndDay(context.Context) error {
	f.ended++
	f.status.Clock.DayCount++
	return f.failErr
}

func (f *fakeBackend) Status(context.Context) (*Status, error) {
	return f.status, nil
}

func sampleStatus() *Status {
	return &Status{
		Clock:     model.ClockState{DayOffset: 1, DayCount: 3, LastObservedRealDate: "2026-03-10"},
		Today:     "2026-03-11",
		Remaining: 2*time.Hour + 5*time.Minute,
		Summary: service.TodayStatus{
			Date: "2026-03-11", Calories: 2300, GoalCalories: 2000, RemainingCalories: -300, OverCalories: true,
			WaterML: 500, GoalWaterML: 2000, RemainingWaterML: 1500, Meals: 2,
		},
		Recent: []model.Event{
			{ID: "a", Kind: model.EventMeal, CreatedAt: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), Meal: &model.MealPayload{Name: "Omelette", Calories: 450}},
			{ID: "b", Kind: model.EventWater, CreatedAt: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC), WaterML: 500},
		},
	}
}

func TestReconcileTicksBackend(t *testing.T) {
	fb := &fakeBackend{status: sampleStatus(), rolled: true}
	m := NewModel(fb)

	msg := m.reconcile()()
	require.Equal(t, 1, fb.ticks)

	next, cmd := m.Update(msg)
	assert.Nil(t, cmd)
	got := next.(Model)
	assert.Equal(t, "A new real day started.", got.Notice)
	require.NotNil(t, got.Status)

	view := got.View()
	assert.Contains(t, view, "DAY 3")
	assert.Contains(t, view, "2026-03-11")
	assert.Contains(t, view, "300 kcal over")
	assert.Contains(t, view, "02:05:00")
	assert.Contains(t, view, "Omelette")
	assert.Contains(t, view, "1 day(s) ahead")
}

func TestTickSchedulesReconcile(t *testing.T) {
	m := NewModel(&fakeBackend{status: sampleStatus()})
	_, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
}

func TestEndDayKey(t *testing.T) {
	fb := &fakeBackend{status: sampleStatus()}
	m := NewModel(fb)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, 1, fb.ended)

	next, _ := m.Update(msg)
	assert.Contains(t, next.(Model).Notice, "Day 4")
}

func TestErrorIsShown(t *testing.T) {
	fb := &fakeBackend{status: sampleStatus(), failErr: errors.New("disk full")}
	m := NewModel(fb)
	next, _ := m.Update(m.reconcile()())
	assert.True(t, strings.Contains(next.(Model).View(), "disk full"))
}

func TestServiceBackendStatus(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	clk := dayclock.NewMockClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	machine, err := dayclock.Load(ctx, st, clk, 3, logging.Discard())
	require.NoError(t, err)
	deps := service.Deps{Store: st, Clock: machine, Log: logging.Discard()}

	_, err = service.LogWater(ctx, deps, 750)
	require.NoError(t, err)

	b := ServiceBackend{Deps: deps}
	require.NoError(t, b.EndDay(ctx))
	status, err := b.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", status.Today)
	assert.Equal(t, 2, status.Clock.DayCount)
	assert.Equal(t, 0, status.Summary.WaterML, "water logged yesterday stays on its own day")
	assert.Equal(t, 12*time.Hour, status.Remaining)
	assert.Equal(t, 3, status.OffsetHours)

	clk.Advance(13 * time.Hour)
	rolled, err := b.Tick(ctx)
	require.NoError(t, err)
	assert.True(t, rolled)
	assert.Equal(t, 0, machine.State().DayOffset)
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "00:00:00", formatRemaining(-time.Second))
	assert.Equal(t, "23:59:59", formatRemaining(24*time.Hour-time.Second))
}

func TestRecentRowsUseCivilZone(t *testing.T) {
	// 22:30 UTC is 01:30 the next morning at UTC+3.
	events := []model.Event{
		{ID: "w", Kind: model.EventWater, CreatedAt: time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC), WaterML: 250},
	}
	rows := recentRows(events, 3)
	require.Len(t, rows, 1)
	assert.Equal(t, "01:30", rows[0][0])

	rows = recentRows(events, 0)
	assert.Equal(t, "22:30", rows[0][0])
}
