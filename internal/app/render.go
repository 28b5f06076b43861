package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	strftime "github.com/ncruces/go-strftime"
	"github.com/olekukonko/tablewriter"

	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/grid"
)

var weekdayHeader = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func newPlainTable(w io.Writer, headers []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	return tw
}

func printConvertPlain(w io.Writer, res *contract.ConversionResult) error {
	tw := newPlainTable(w, []string{"CALENDAR", "DATE", "FORMATTED"})
	tw.Append([]string{string(res.SourceCalendar), res.SourceDate, res.FormattedDates[res.SourceCalendar]})
	for _, kind := range contract.AllCalendarKinds() {
		if kind == res.SourceCalendar {
			continue
		}
		date, ok := res.Conversions[kind]
		if !ok {
			continue
		}
		tw.Append([]string{string(kind), date, res.FormattedDates[kind]})
	}
	tw.Render()
	for _, h := range res.SourceHolidays {
		if _, err := fmt.Fprintf(w, "holiday (source): %s\n", h); err != nil {
			return err
		}
	}
	for _, h := range res.TargetHolidays {
		if _, err := fmt.Fprintf(w, "holiday (target): %s\n", h); err != nil {
			return err
		}
	}
	return nil
}

func printTodayPlain(w io.Writer, res *contract.TodayResult) error {
	tw := newPlainTable(w, []string{"CALENDAR", "DATE", "FORMATTED"})
	for _, kind := range contract.AllCalendarKinds() {
		tw.Append([]string{string(kind), res.TodayDates[kind], res.FormattedDates[kind]})
	}
	tw.Render()
	return nil
}

func printAgePlain(w io.Writer, res *contract.AgeResult) error {
	if _, err := fmt.Fprintf(w, "%s\n", contract.DescribeAge(res.Age)); err != nil {
		return err
	}
	if res.NextBirthday != "" {
		if _, err := fmt.Fprintf(w, "next birthday: %s\n", res.NextBirthday); err != nil {
			return err
		}
	}
	if res.Message != "" {
		if _, err := fmt.Fprintf(w, "%s\n", res.Message); err != nil {
			return err
		}
	}
	return nil
}

func printBulkPlain(w io.Writer, resp *contract.BulkConversionResponse) error {
	tw := newPlainTable(w, []string{"SOURCE DATE", "SOURCE", "TARGET DATE", "TARGET", "FORMATTED", "STATUS"})
	for _, r := range resp.Results {
		status := "Success"
		if !r.Success {
			status = "Failed: " + r.ErrorMessage
		}
		tw.Append([]string{r.SourceDate, string(r.SourceCalendar), r.TargetDate, string(r.TargetCalendar), r.FormattedTargetDate, status})
	}
	tw.Render()
	elapsed := time.Duration(resp.Summary.ProcessingTimeMs) * time.Millisecond
	_, err := fmt.Fprintf(w, "%s requests, %s ok, %s failed in %s\n",
		humanize.Comma(int64(resp.Summary.TotalRequests)),
		humanize.Comma(int64(resp.Summary.SuccessfulConversions)),
		humanize.Comma(int64(resp.Summary.FailedConversions)),
		elapsed)
	return err
}

// monthCaption prefers the service's own caption; for Gregorian views
// without one it formats the anchor locally.
func monthCaption(view *grid.MonthView) string {
	if view.MonthYear != "" {
		return view.MonthYear
	}
	if view.CalendarType == contract.Gregorian && view.Month >= 1 && view.Month <= 12 {
		anchor := time.Date(view.Year, time.Month(view.Month), 1, 0, 0, 0, 0, time.UTC)
		return strftime.Format("%B %Y", anchor)
	}
	return fmt.Sprintf("%d-%02d (%s)", view.Year, view.Month, view.CalendarType)
}

// printMonthViewPlain renders the Sunday-first grid. Today is marked with a
// trailing *, holiday cells with a trailing +, and the month's holidays are
// listed under the table.
func printMonthViewPlain(w io.Writer, view *grid.MonthView) error {
	if _, err := fmt.Fprintf(w, "%s\n", monthCaption(view)); err != nil {
		return err
	}
	tw := newPlainTable(w, weekdayHeader)
	for _, week := range view.Weeks {
		row := make([]string, len(week.Days))
		for i, cell := range week.Days {
			label := cell.DisplayDay
			if label == "" {
				label = strconv.Itoa(cell.Day)
			}
			if !cell.IsCurrentMonth {
				label = "(" + label + ")"
			}
			if cell.Holiday != nil {
				label += "+"
			}
			if cell.IsToday {
				label += "*"
			}
			row[i] = label
		}
		tw.Append(row)
	}
	tw.Render()
	for _, h := range view.Holidays {
		if _, err := fmt.Fprintf(w, "%s  %s (%s)\n", h.Date, h.Name, h.HolidayType); err != nil {
			return err
		}
	}
	return nil
}

func printHolidaysPlain(w io.Writer, holidays []contract.HolidayRecord) error {
	tw := newPlainTable(w, []string{"DATE", "NAME", "TYPE", "RECURRING"})
	for _, h := range holidays {
		recurring := "no"
		if h.IsRecurring {
			recurring = "yes"
		}
		tw.Append([]string{h.Date, h.Name, string(h.HolidayType), recurring})
	}
	tw.Render()
	return nil
}

func printHolidayCheckPlain(w io.Writer, check *contract.HolidayCheck) error {
	if !check.IsHoliday {
		_, err := fmt.Fprintf(w, "%s is not a holiday (%s)\n", check.Date, check.CalendarType)
		return err
	}
	_, err := fmt.Fprintf(w, "%s is %s (%s)\n", check.Date, check.HolidayName, check.HolidayType)
	return err
}

func printHistoryPlain(w io.Writer, recs []historyRecord) error {
	tw := newPlainTable(w, []string{"WHEN", "FROM", "DATE", "TO", "RESULT"})
	for _, r := range recs {
		tw.Append([]string{humanize.Time(r.At), string(r.SourceCalendar), r.SourceDate, string(r.TargetCalendar), r.TargetDate})
	}
	tw.Render()
	return nil
}
