// Package tui is the live "today" view. It drives the day-boundary check
// once a second while open.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/saadjs/daykcal/internal/calendar"
	"github.com/saadjs/daykcal/internal/model"
)

const TickInterval = time.Second

type tickMsg time.Time

type statusMsg struct {
	status *Status
	rolled bool
	ended  bool
}

type errMsg struct{ err error }

type keyMap struct {
	Quit    key.Binding
	EndDay  key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	EndDay:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end day")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

type Model struct {
	Backend Backend

	Status  *Status
	Err     error
	Notice  string
	Width   int
	Height  int
	Calorie progress.Model
	Water   progress.Model
	Recent  table.Model
}

func NewModel(backend Backend) Model {
	return Model{
		Backend: backend,
		Calorie: progress.New(progress.WithSolidFill(string(ColorAccent)), progress.WithWidth(40)),
		Water:   progress.New(progress.WithSolidFill(string(ColorWater)), progress.WithWidth(40)),
		Recent: table.New(
			table.WithColumns([]table.Column{
				{Title: "Time", Width: 6},
				{Title: "Kind", Width: 6},
				{Title: "Item", Width: 28},
				{Title: "Amount", Width: 10},
			}),
			table.WithHeight(8),
		),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reconcile(), tickEvery())
}

func tickEvery() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// reconcile ticks the clock and reloads the status.
func (m Model) reconcile() tea.Cmd {
	backend := m.Backend
	return func() tea.Msg {
		ctx := context.Background()
		rolled, err := backend.Tick(ctx)
		if err != nil {
			return errMsg{err}
		}
		st, err := backend.Status(ctx)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg{status: st, rolled: rolled}
	}
}

func (m Model) endDay() tea.Cmd {
	backend := m.Backend
	return func() tea.Msg {
		ctx := context.Background()
		if err := backend.EndDay(ctx); err != nil {
			return errMsg{err}
		}
		st, err := backend.Status(ctx)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg{status: st, ended: true}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.EndDay):
			return m, m.endDay()
		case key.Matches(msg, keys.Refresh):
			return m, m.reconcile()
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		w := min(max(msg.Width-20, 10), 60)
		m.Calorie.Width = w
		m.Water.Width = w
	case tickMsg:
		return m, tea.Batch(m.reconcile(), tickEvery())
	case statusMsg:
		m.Status = msg.status
		m.Err = nil
		switch {
		case msg.rolled:
			m.Notice = "A new real day started."
		case msg.ended:
			m.Notice = fmt.Sprintf("Day ended. Now logging Day %d.", msg.status.Clock.DayCount)
		}
		m.Recent.SetRows(recentRows(msg.status.Recent, msg.status.OffsetHours))
	case errMsg:
		m.Err = msg.err
	}
	return m, nil
}

// recentRows shows event times in the civil zone the events are bucketed in.
func recentRows(events []model.Event, offsetHours int) []table.Row {
	zone := calendar.Zone(offsetHours)
	rows := make([]table.Row, 0, len(events))
	for _, ev := range events {
		when := ev.CreatedAt.In(zone).Format("15:04")
		switch ev.Kind {
		case model.EventMeal:
			name := ""
			if ev.Meal != nil {
				name = ev.Meal.Name
			}
			rows = append(rows, table.Row{when, "meal", name, fmt.Sprintf("%d kcal", ev.Calories())})
		case model.EventWater:
			rows = append(rows, table.Row{when, "water", "", fmt.Sprintf("%d ml", ev.WaterML)})
		}
	}
	return rows
}

func ratio(v, target int) float64 {
	if target <= 0 {
		return 0
	}
	return min(float64(v)/float64(target), 1)
}

func (m Model) View() string {
	if m.Status == nil {
		if m.Err != nil {
			return StyleApp.Render(StyleBad.Render("error: " + m.Err.Error()))
		}
		return StyleApp.Render("Loading today...")
	}
	s := m.Status
	sum := s.Summary

	header := StyleHeader.Render(fmt.Sprintf("DAY %d  %s", s.Clock.DayCount, s.Today))
	sub := StyleSubtitle.Render(fmt.Sprintf("Real midnight in %s", formatRemaining(s.Remaining)))
	if s.Clock.DayOffset > 0 {
		sub += StyleMuted.Render(fmt.Sprintf("  (%d day(s) ahead of the calendar)", s.Clock.DayOffset))
	}

	remaining := StyleGood.Render(fmt.Sprintf("%d kcal left", sum.RemainingCalories))
	if sum.OverCalories {
		remaining = StyleBad.Render(fmt.Sprintf("%d kcal over", -sum.RemainingCalories))
	}
	energy := StyleCard.Render(lipgloss.JoinVertical(lipgloss.Left,
		StyleTitle.Render("Energy"),
		m.Calorie.ViewAs(ratio(sum.Calories, sum.GoalCalories)),
		fmt.Sprintf("%d / %d kcal  %s", sum.Calories, sum.GoalCalories, remaining),
		StyleMuted.Render(fmt.Sprintf("P %.0fg  C %.0fg  F %.0fg  meals %d", sum.ProteinG, sum.CarbsG, sum.FatG, sum.Meals)),
	))
	hydration := StyleCard.Render(lipgloss.JoinVertical(lipgloss.Left,
		StyleTitle.Render("Water"),
		m.Water.ViewAs(ratio(sum.WaterML, sum.GoalWaterML)),
		fmt.Sprintf("%d / %d ml", sum.WaterML, sum.GoalWaterML),
	))

	parts := []string{header, sub, energy, hydration, StyleCard.Render(m.Recent.View())}
	if m.Notice != "" {
		parts = append(parts, StyleGood.Render(m.Notice))
	}
	if m.Err != nil {
		parts = append(parts, StyleBad.Render("error: "+m.Err.Error()))
	}
	parts = append(parts, StyleMuted.Render(helpLine()))
	return StyleApp.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func helpLine() string {
	items := []string{}
	for _, b := range []key.Binding{keys.EndDay, keys.Refresh, keys.Quit} {
		h := b.Help()
		items = append(items, h.Key+" "+h.Desc)
	}
	return strings.Join(items, "  •  ")
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	h := int(d.Hours())
	mnt := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, mnt, sec)
}

// Run starts the live view and blocks until the user quits.
func Run(backend Backend) error {
	_, err := tea.NewProgram(NewModel(backend), tea.WithAltScreen()).Run()
	return err
}
