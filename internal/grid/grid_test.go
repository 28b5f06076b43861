package grid

import (
	"testing"
	"time"

	"github.com/sadbob/mcal/internal/contract"
)

// januaryGrid builds a Gregorian January 2024 grid the way the service lays
// it out: Sunday-first, leading days from December, trailing from February.
func januaryGrid() *contract.CalendarGrid {
	g := &contract.CalendarGrid{
		CalendarType: contract.Gregorian,
		Year:         2024,
		Month:        1,
		MonthYear:    "January 2024",
	}
	day := func(n int, current bool) contract.CalendarDayCell {
		return contract.CalendarDayCell{Day: n, IsCurrentMonth: current}
	}
	cells := []contract.CalendarDayCell{day(31, false)}
	for n := 1; n <= 31; n++ {
		cells = append(cells, day(n, true))
	}
	for n := 1; n <= 10; n++ {
		cells = append(cells, day(n, false))
	}
	for i := 0; i < len(cells); i += 7 {
		end := i + 7
		if end > len(cells) {
			end = len(cells)
		}
		g.Weeks = append(g.Weeks, contract.CalendarWeekRow{Days: cells[i:end]})
	}
	return g
}

func countToday(v *MonthView) (int, DayCell) {
	var n int
	var hit DayCell
	for _, w := range v.Weeks {
		for _, c := range w.Days {
			if c.IsToday {
				n++
				hit = c
			}
		}
	}
	return n, hit
}

func TestBuildMarksExactlyOneTodayCell(t *testing.T) {
	now := time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC)
	v := Build(januaryGrid(), nil, now)
	n, hit := countToday(v)
	if n != 1 {
		t.Fatalf("expected exactly one today cell, got %d", n)
	}
	if hit.Day != 15 || !hit.IsCurrentMonth {
		t.Fatalf("today landed on wrong cell: %+v", hit)
	}
}

func TestBuildNoTodayOutsideViewedMonth(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	v := Build(januaryGrid(), nil, now)
	if n, _ := countToday(v); n != 0 {
		t.Fatalf("february today must not mark a january grid, got %d", n)
	}
}

func TestBuildAdjacentMonthCellNeverToday(t *testing.T) {
	// Jan 31 appears twice: once as a leading December-row cell and once as
	// the real current-month day. Only the current-month one may match.
	now := time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC)
	v := Build(januaryGrid(), nil, now)
	n, hit := countToday(v)
	if n != 1 {
		t.Fatalf("expected one today cell, got %d", n)
	}
	if !hit.IsCurrentMonth {
		t.Fatalf("today marked an adjacent-month cell: %+v", hit)
	}
}

func TestBuildOverlaysHolidaysOnCurrentMonthOnly(t *testing.T) {
	holidays := []contract.HolidayRecord{
		{Name: "Epiphany", Date: "2024-01-06", CalendarType: contract.Gregorian, HolidayType: contract.HolidayReligious},
		{Name: "Second on Six", Date: "2024-01-06"},
		{Name: "Day Ten", Date: "2024-01-10"},
	}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	v := Build(januaryGrid(), holidays, now)

	var sixes []DayCell
	for _, w := range v.Weeks {
		for _, c := range w.Days {
			if c.Day == 6 {
				sixes = append(sixes, c)
			}
		}
	}
	// Day 6 shows up in current month and in the trailing February cells.
	for _, c := range sixes {
		if c.IsCurrentMonth {
			if c.Holiday == nil || c.Holiday.Name != "Epiphany" {
				t.Fatalf("first-in-order holiday must win: %+v", c.Holiday)
			}
		} else if c.Holiday != nil {
			t.Fatalf("adjacent-month cell must not carry a holiday: %+v", c)
		}
	}
}

func TestBuildMissingHolidaysMeansNoHolidays(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	v := Build(januaryGrid(), nil, now)
	for _, w := range v.Weeks {
		for _, c := range w.Days {
			if c.Holiday != nil {
				t.Fatalf("nil holiday list produced an overlay: %+v", c)
			}
		}
	}
}

func TestNavigate(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next := Navigate(anchor, Next)
	if next.Year() != 2024 || next.Month() != time.February {
		t.Fatalf("next navigated to %v", next)
	}
	prev := Navigate(anchor, Prev)
	if prev.Year() != 2023 || prev.Month() != time.December {
		t.Fatalf("prev navigated to %v", prev)
	}
}

func TestNavigateMonthEndAnchor(t *testing.T) {
	// AddDate on a day-31 anchor normalizes into the month after next; the
	// anchor's day-of-month must not leak into navigation.
	jan31 := time.Date(2026, 1, 31, 10, 30, 0, 0, time.UTC)
	next := Navigate(jan31, Next)
	if next.Year() != 2026 || next.Month() != time.February {
		t.Fatalf("next from Jan 31 navigated to %v", next)
	}
	mar31 := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	prev := Navigate(mar31, Prev)
	if prev.Year() != 2026 || prev.Month() != time.February {
		t.Fatalf("prev from Mar 31 navigated to %v", prev)
	}
	oct31 := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)
	if got := Navigate(oct31, Prev); got.Month() != time.September {
		t.Fatalf("prev from Oct 31 navigated to %v", got)
	}
}
