package dayclock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saadjs/daykcal/internal/logging"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/store"
)

// Machine owns the persisted clock state. Every mutation is written to the
// store before the method returns; a failed write leaves the in-memory state
// untouched.
type Machine struct {
	mu     sync.Mutex
	state  model.ClockState
	clock  Clock
	store  store.Store
	offset int
	log    logging.Logger
}

// Load reads the clock state, creating and persisting the initial state on
// first run. A stored state outside the invariants is repaired and saved.
// It does not reconcile; call Tick for that.
func Load(ctx context.Context, st store.Store, clk Clock, offsetHours int, log logging.Logger) (*Machine, error) {
	if clk == nil {
		clk = RealClock{}
	}
	m := &Machine{
		clock:  clk,
		store:  st,
		offset: offsetHours,
		log:    logging.Component(log, "dayclock"),
	}
	var s model.ClockState
	ok, err := store.LoadJSON(ctx, st, store.KeyClockState, &s)
	if err != nil {
		return nil, fmt.Errorf("load clock state: %w", err)
	}
	if !ok {
		s = Initial(clk.Now(), offsetHours)
		if err := store.SaveJSON(ctx, st, store.KeyClockState, s); err != nil {
			return nil, fmt.Errorf("save initial clock state: %w", err)
		}
		m.log.Info(ctx, "clock initialized", "date", s.LastObservedRealDate)
	} else if !Valid(s) {
		repaired := Repair(s, clk.Now(), offsetHours)
		if err := store.SaveJSON(ctx, st, store.KeyClockState, repaired); err != nil {
			return nil, fmt.Errorf("save repaired clock state: %w", err)
		}
		m.log.Warn(ctx, "clock state out of range, repaired",
			"day_offset", s.DayOffset, "day_count", s.DayCount, "date", s.LastObservedRealDate)
		s = repaired
	}
	m.state = s
	return m, nil
}

// Tick runs the reconciliation check against the real clock. It reports
// whether the state changed.
func (m *Machine) Tick(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := Reconcile(m.state, m.clock.Now(), m.offset)
	if next == m.state {
		return false, nil
	}
	if err := m.commit(ctx, next); err != nil {
		return false, err
	}
	m.log.Info(ctx, "real day boundary crossed",
		"date", next.LastObservedRealDate,
		"day_count", next.DayCount,
		"day_offset", next.DayOffset)
	return true, nil
}

// EndDay closes the logical day before real midnight.
func (m *Machine) EndDay(ctx context.Context) (model.ClockState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := EndDayNow(m.state)
	if err := m.commit(ctx, next); err != nil {
		return m.state, err
	}
	m.log.Info(ctx, "day ended early", "day_count", next.DayCount, "day_offset", next.DayOffset)
	return next, nil
}

func (m *Machine) Reset(ctx context.Context) (model.ClockState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := Reset(m.clock.Now(), m.offset)
	if err := m.commit(ctx, next); err != nil {
		return m.state, err
	}
	m.log.Warn(ctx, "clock reset", "date", next.LastObservedRealDate)
	return next, nil
}

// Replace overwrites the state wholesale, as used by import and doctor.
func (m *Machine) Replace(ctx context.Context, s model.ClockState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit(ctx, s)
}

func (m *Machine) commit(ctx context.Context, next model.ClockState) error {
	if err := store.SaveJSON(ctx, m.store, store.KeyClockState, next); err != nil {
		return fmt.Errorf("save clock state: %w", err)
	}
	m.state = next
	return nil
}

func (m *Machine) State() model.ClockState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Now returns the virtual timestamp for new events.
func (m *Machine) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return VirtualNow(m.state, m.clock.Now())
}

// Today returns the logical day key.
func (m *Machine) Today() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Today(m.state, m.clock.Now(), m.offset)
}

// Remaining is the real time left until the next civil-day boundary.
func (m *Machine) Remaining() time.Duration {
	now := m.clock.Now()
	return NextBoundary(now, m.offset).Sub(now)
}

func (m *Machine) OffsetHours() int {
	return m.offset
}

func (m *Machine) RealNow() time.Time {
	return m.clock.Now()
}
