package dayclock

import (
	"testing"
	"time"

	"github.com/saadjs/daykcal/internal/calendar"
	"github.com/saadjs/daykcal/internal/model"
)

const testOffset = 3

// noonOn returns local noon at UTC+3 for the given key.
func noonOn(t *testing.T, key string) time.Time {
	t.Helper()
	start, err := calendar.StartOfDay(key, testOffset)
	if err != nil {
		t.Fatalf("start of day: %v", err)
	}
	return start.Add(12 * time.Hour)
}

func TestReconcileIdempotentWithinDay(t *testing.T) {
	t.Parallel()
	s := model.ClockState{DayOffset: 1, DayCount: 4, LastObservedRealDate: "2026-03-01"}
	now := noonOn(t, "2026-03-02")

	first := Reconcile(s, now, testOffset)
	second := Reconcile(first, now, testOffset)
	if first != second {
		t.Fatalf("second reconcile changed state: %+v -> %+v", first, second)
	}
	third := Reconcile(second, now.Add(6*time.Hour), testOffset)
	if third != second {
		t.Fatalf("reconcile later the same day changed state: %+v", third)
	}
}

func TestReconcileOffsetDecay(t *testing.T) {
	t.Parallel()
	s := model.ClockState{DayOffset: 3, DayCount: 7, LastObservedRealDate: "2026-03-01"}
	for i := 1; i <= 3; i++ {
		boundary, err := calendar.StartOfDay(calendar.AddDays("2026-03-01", i), testOffset)
		if err != nil {
			t.Fatalf("boundary: %v", err)
		}
		s = Reconcile(s, boundary, testOffset)
		if s.DayOffset != 3-i {
			t.Fatalf("after boundary %d expected offset %d, got %d", i, 3-i, s.DayOffset)
		}
	}
	if s.DayCount != 7 {
		t.Fatalf("expected day count unchanged at 7, got %d", s.DayCount)
	}
	if s.LastObservedRealDate != "2026-03-04" {
		t.Fatalf("expected anchor 2026-03-04, got %s", s.LastObservedRealDate)
	}
}

func TestReconcileNaturalRollover(t *testing.T) {
	t.Parallel()
	s := model.ClockState{DayOffset: 0, DayCount: 12, LastObservedRealDate: "2026-03-01"}
	boundary, err := calendar.StartOfDay("2026-03-02", testOffset)
	if err != nil {
		t.Fatalf("boundary: %v", err)
	}
	got := Reconcile(s, boundary, testOffset)
	want := model.ClockState{DayOffset: 0, DayCount: 13, LastObservedRealDate: "2026-03-02"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	// One millisecond earlier is still the old day.
	if same := Reconcile(s, boundary.Add(-time.Millisecond), testOffset); same != s {
		t.Fatalf("reconcile before midnight changed state: %+v", same)
	}
}

func TestReconcileMultiDayGap(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		offset int
		gap    int
		want   model.ClockState
	}{
		{"no pending advance", 0, 3, model.ClockState{DayOffset: 0, DayCount: 8, LastObservedRealDate: "2026-03-04"}},
		{"advance fully absorbed", 2, 2, model.ClockState{DayOffset: 0, DayCount: 5, LastObservedRealDate: "2026-03-03"}},
		{"advance partly absorbed", 3, 2, model.ClockState{DayOffset: 1, DayCount: 5, LastObservedRealDate: "2026-03-03"}},
		{"gap exceeds advance", 1, 4, model.ClockState{DayOffset: 0, DayCount: 8, LastObservedRealDate: "2026-03-05"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := model.ClockState{DayOffset: tc.offset, DayCount: 5, LastObservedRealDate: "2026-03-01"}
			got := Reconcile(s, noonOn(t, calendar.AddDays("2026-03-01", tc.gap)), testOffset)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestReconcileGapMatchesDailyTicks(t *testing.T) {
	t.Parallel()
	start := model.ClockState{DayOffset: 2, DayCount: 3, LastObservedRealDate: "2026-06-10"}

	stepped := start
	for i := 1; i <= 5; i++ {
		stepped = Reconcile(stepped, noonOn(t, calendar.AddDays("2026-06-10", i)), testOffset)
	}
	jumped := Reconcile(start, noonOn(t, "2026-06-15"), testOffset)
	if stepped != jumped {
		t.Fatalf("daily ticks %+v differ from single catch-up %+v", stepped, jumped)
	}
}

func TestReconcileBackwardsClockOnlyReanchors(t *testing.T) {
	t.Parallel()
	s := model.ClockState{DayOffset: 2, DayCount: 9, LastObservedRealDate: "2026-03-05"}
	got := Reconcile(s, noonOn(t, "2026-03-03"), testOffset)
	want := model.ClockState{DayOffset: 2, DayCount: 9, LastObservedRealDate: "2026-03-03"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestEndDayNow(t *testing.T) {
	t.Parallel()
	s := model.ClockState{DayOffset: 0, DayCount: 6, LastObservedRealDate: "2026-03-01"}
	got := EndDayNow(s)
	want := model.ClockState{DayOffset: 1, DayCount: 7, LastObservedRealDate: "2026-03-01"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestResetYieldsInitialState(t *testing.T) {
	t.Parallel()
	now := noonOn(t, "2026-08-20")
	want := model.ClockState{DayOffset: 0, DayCount: 1, LastObservedRealDate: "2026-08-20"}
	if got := Reset(now, testOffset); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got := Initial(now, testOffset); got != want {
		t.Fatalf("expected initial state %+v, got %+v", want, got)
	}
}

func TestVirtualNowAndToday(t *testing.T) {
	t.Parallel()
	now := noonOn(t, "2026-03-01")
	s := model.ClockState{DayOffset: 2, DayCount: 3, LastObservedRealDate: "2026-03-01"}
	if got := VirtualNow(s, now); got.Sub(now) != 48*time.Hour {
		t.Fatalf("expected virtual now two days ahead, got %s", got.Sub(now))
	}
	if got := Today(s, now, testOffset); got != "2026-03-03" {
		t.Fatalf("expected logical today 2026-03-03, got %s", got)
	}
}

func TestNextBoundaryIgnoresOffset(t *testing.T) {
	t.Parallel()
	now := noonOn(t, "2026-03-01")
	want, _ := calendar.StartOfDay("2026-03-02", testOffset)
	if got := NextBoundary(now, testOffset); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestValid(t *testing.T) {
	t.Parallel()
	if !Valid(model.ClockState{DayOffset: 0, DayCount: 1, LastObservedRealDate: "2026-03-01"}) {
		t.Fatalf("expected initial-shaped state to be valid")
	}
	for _, s := range []model.ClockState{
		{DayOffset: -1, DayCount: 1, LastObservedRealDate: "2026-03-01"},
		{DayOffset: 0, DayCount: 0, LastObservedRealDate: "2026-03-01"},
		{DayOffset: 0, DayCount: 1, LastObservedRealDate: ""},
	} {
		if Valid(s) {
			t.Fatalf("expected %+v to be invalid", s)
		}
	}
}

func TestRepairClampsInvariants(t *testing.T) {
	t.Parallel()
	now := noonOn(t, "2026-05-05")
	got := Repair(model.ClockState{DayOffset: -2, DayCount: 0, LastObservedRealDate: "not-a-date"}, now, testOffset)
	want := model.ClockState{DayOffset: 0, DayCount: 1, LastObservedRealDate: "2026-05-05"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	ok := model.ClockState{DayOffset: 2, DayCount: 9, LastObservedRealDate: "2026-05-01"}
	if Repair(ok, now, testOffset) != ok {
		t.Fatalf("repair changed a valid state")
	}
}
