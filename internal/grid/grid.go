// Package grid overlays holiday and today markers onto the month grids the
// calendar service returns. The service decides the grid shape (week count,
// 13-month Ethiopian years); this package only annotates cells.
package grid

import (
	"time"

	"github.com/sadbob/mcal/internal/contract"
)

// Clock abstracts time.Now() so "today" marking is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// DayCell is a raw service cell plus the overlay annotations.
type DayCell struct {
	contract.CalendarDayCell
	Holiday *contract.HolidayRecord `json:"holiday,omitempty"`
}

type WeekRow struct {
	Days []DayCell `json:"days"`
}

// MonthView is the fully annotated grid the renderer consumes.
type MonthView struct {
	CalendarType contract.CalendarKind    `json:"calendarType"`
	Year         int                      `json:"year"`
	Month        int                      `json:"month"`
	MonthYear    string                   `json:"monthYear"`
	Weeks        []WeekRow                `json:"weeks"`
	Holidays     []contract.HolidayRecord `json:"holidays"`
}

// Build attaches holidays and the today flag to every current-month cell of
// raw. Holiday matching is calendar-relative day-of-month, first record in
// list order winning ties. The today flag compares the viewed year/month/day
// against now in the Gregorian frame; "today" is Gregorian-anchored no matter
// which calendar kind is on screen, so in non-Gregorian views the mark lands
// on the service-reported current date only when the grid numbers happen to
// line up. Day boundaries that shift against Gregorian midnight (Hijri
// sunset) are not compensated. A nil or empty holidays list means "no
// holidays", never an error.
func Build(raw *contract.CalendarGrid, holidays []contract.HolidayRecord, now time.Time) *MonthView {
	view := &MonthView{
		CalendarType: raw.CalendarType,
		Year:         raw.Year,
		Month:        raw.Month,
		MonthYear:    raw.MonthYear,
		Holidays:     holidays,
		Weeks:        make([]WeekRow, len(raw.Weeks)),
	}
	y, m, d := now.Date()
	todayMatchesMonth := raw.Year == y && raw.Month == int(m)
	for wi, week := range raw.Weeks {
		row := WeekRow{Days: make([]DayCell, len(week.Days))}
		for di, cell := range week.Days {
			out := DayCell{CalendarDayCell: cell}
			out.IsToday = false
			if cell.IsCurrentMonth {
				out.Holiday = contract.HolidayOnDay(holidays, cell.Day)
				out.IsToday = todayMatchesMonth && cell.Day == d
			}
			row.Days[di] = out
		}
		view.Weeks[wi] = row
	}
	return view
}

type Direction int

const (
	Prev Direction = iota
	Next
)

// Navigate moves anchor exactly one Gregorian month. The anchor is pinned to
// the first of its month before the arithmetic: AddDate normalizes overflow,
// so a day-31 anchor would otherwise skip short months (Jan 31 + 1 month
// lands in March). The result only anchors the next service query; it says
// nothing about the displayed calendar's own month arithmetic.
func Navigate(anchor time.Time, dir Direction) time.Time {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	if dir == Prev {
		return first.AddDate(0, -1, 0)
	}
	return first.AddDate(0, 1, 0)
}
