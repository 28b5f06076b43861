package app

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/sadbob/mcal/internal/contract"
)

// icsHoliday pairs a holiday record with its Gregorian occurrence date.
// Records from non-Gregorian calendars are resolved through the conversion
// service before they reach the builder.
type icsHoliday struct {
	Record contract.HolidayRecord
	Date   time.Time
}

// buildHolidayICS assembles a VCALENDAR of all-day holiday events. Recurring
// Gregorian holidays get RRULE:FREQ=YEARLY; recurring holidays from other
// calendars are emitted as single occurrences because their yearly cycle does
// not line up with Gregorian years.
func buildHolidayICS(holidays []icsHoliday, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//mcal//holiday export//EN")
	cal.Props.SetText("X-WR-CALNAME", "Holidays")
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")

	for _, h := range holidays {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%s@mcal", uuid.NewString()))
		event.Props.SetText(ical.PropSummary, h.Record.Name)
		if h.Record.Description != "" {
			event.Props.SetText(ical.PropDescription, h.Record.Description)
		}
		if h.Record.HolidayType != "" {
			event.Props.SetText(ical.PropCategories, string(h.Record.HolidayType))
		}

		dtStamp := ical.NewProp(ical.PropDateTimeStamp)
		dtStamp.SetDateTime(now.UTC())
		event.Props.Set(dtStamp)

		dtStart := ical.NewProp(ical.PropDateTimeStart)
		dtStart.SetDate(h.Date)
		event.Props.Set(dtStart)

		if h.Record.IsRecurring && h.Record.CalendarType == contract.Gregorian {
			r, err := rrule.NewRRule(rrule.ROption{Freq: rrule.YEARLY, Dtstart: h.Date})
			if err != nil {
				return nil, fmt.Errorf("rrule for %s: %w", h.Record.Name, err)
			}
			rprop := ical.NewProp(ical.PropRecurrenceRule)
			rprop.Value = r.OrigOptions.RRuleString()
			event.Props.Set(rprop)
		}

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
