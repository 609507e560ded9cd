// Package dayclock implements the virtual day: a logical "today" that the
// user can push ahead of the calendar, and that real midnights pull back in
// line.
//
// The transition functions in this file are pure. Machine wraps them with a
// time source and persistence.
package dayclock

import (
	"time"

	"github.com/saadjs/daykcal/internal/calendar"
	"github.com/saadjs/daykcal/internal/model"
)

// Initial is the state of a fresh install observed at realNow.
func Initial(realNow time.Time, offsetHours int) model.ClockState {
	return model.ClockState{
		DayOffset:            0,
		DayCount:             1,
		LastObservedRealDate: calendar.DayKey(realNow, offsetHours),
	}
}

// Reset is Initial under another name: reset discards all progress.
func Reset(realNow time.Time, offsetHours int) model.ClockState {
	return Initial(realNow, offsetHours)
}

// Reconcile absorbs the real civil-day boundaries crossed since the state was
// last observed. Each boundary first consumes one unit of pending manual
// advance; once none is pending it counts as a natural rollover.
//
// A gap of several days is treated as that many single boundaries. If the
// real day is earlier than the stored one (host clock moved back) only the
// anchor moves.
func Reconcile(s model.ClockState, realNow time.Time, offsetHours int) model.ClockState {
	today := calendar.DayKey(realNow, offsetHours)
	if today == s.LastObservedRealDate {
		return s
	}
	crossed := calendar.DaysBetween(s.LastObservedRealDate, today)
	s.LastObservedRealDate = today
	if crossed <= 0 {
		return s
	}
	absorbed := min(s.DayOffset, crossed)
	s.DayOffset -= absorbed
	s.DayCount += crossed - absorbed
	return s
}

// EndDayNow closes the current logical day ahead of real midnight.
func EndDayNow(s model.ClockState) model.ClockState {
	s.DayOffset++
	s.DayCount++
	return s
}

// VirtualNow is the timestamp stamped on new events.
func VirtualNow(s model.ClockState, realNow time.Time) time.Time {
	return realNow.Add(time.Duration(s.DayOffset) * calendar.Day)
}

// Today is the logical civil day events are currently logged under.
func Today(s model.ClockState, realNow time.Time, offsetHours int) string {
	return calendar.DayKey(VirtualNow(s, realNow), offsetHours)
}

// NextBoundary is always computed from real time; the virtual offset does
// not move midnight.
func NextBoundary(realNow time.Time, offsetHours int) time.Time {
	return calendar.NextBoundary(realNow, offsetHours)
}

// Valid reports whether s satisfies the clock invariants.
func Valid(s model.ClockState) bool {
	if s.DayOffset < 0 || s.DayCount < 1 {
		return false
	}
	_, err := calendar.ParseKey(s.LastObservedRealDate)
	return err == nil
}

// Repair clamps s back inside the invariants. An unreadable anchor is
// replaced with the real day at realNow.
func Repair(s model.ClockState, realNow time.Time, offsetHours int) model.ClockState {
	if s.DayOffset < 0 {
		s.DayOffset = 0
	}
	if s.DayCount < 1 {
		s.DayCount = 1
	}
	if key, err := calendar.ParseKey(s.LastObservedRealDate); err != nil {
		s.LastObservedRealDate = calendar.DayKey(realNow, offsetHours)
	} else {
		s.LastObservedRealDate = key
	}
	return s
}
