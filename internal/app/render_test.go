package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/grid"
)

func TestMonthCaption(t *testing.T) {
	view := &grid.MonthView{CalendarType: contract.Ethiopian, Year: 2016, Month: 4, MonthYear: "Tahsas 2016"}
	if got := monthCaption(view); got != "Tahsas 2016" {
		t.Fatalf("service caption must win, got %q", got)
	}
	view = &grid.MonthView{CalendarType: contract.Gregorian, Year: 2026, Month: 1}
	if got := monthCaption(view); got != "January 2026" {
		t.Fatalf("expected formatted Gregorian caption, got %q", got)
	}
	view = &grid.MonthView{CalendarType: contract.Ethiopian, Year: 2016, Month: 13}
	if got := monthCaption(view); !strings.Contains(got, "2016-13") {
		t.Fatalf("expected numeric fallback for captionless non-Gregorian month, got %q", got)
	}
}

func TestPrintMonthViewPlainMarkers(t *testing.T) {
	view := &grid.MonthView{
		CalendarType: contract.Gregorian, Year: 2026, Month: 1, MonthYear: "January 2026",
		Weeks: []grid.WeekRow{{Days: []grid.DayCell{
			{CalendarDayCell: contract.CalendarDayCell{Day: 31, DisplayDay: "31"}},
			{
				CalendarDayCell: contract.CalendarDayCell{Day: 1, DisplayDay: "1", IsCurrentMonth: true, IsToday: true},
				Holiday:         &contract.HolidayRecord{Name: "New Year", Date: "2026-01-01"},
			},
		}}},
		Holidays: []contract.HolidayRecord{{Name: "New Year", Date: "2026-01-01", HolidayType: contract.HolidayInternational}},
	}
	var buf bytes.Buffer
	if err := printMonthViewPlain(&buf, view); err != nil {
		t.Fatalf("printMonthViewPlain failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "(31)") {
		t.Fatalf("adjacent-month cell not parenthesized:\n%s", out)
	}
	if !strings.Contains(out, "1+*") {
		t.Fatalf("holiday+today markers missing:\n%s", out)
	}
	if !strings.Contains(out, "New Year") {
		t.Fatalf("holiday listing missing:\n%s", out)
	}
}

func TestPrintBulkPlainSummaryLine(t *testing.T) {
	resp := &contract.BulkConversionResponse{
		Results: []contract.SingleConversionResult{
			{SourceDate: "2024-01-01", Success: true, TargetDate: "2016-04-22"},
			{SourceDate: "2024-02-30", Success: false, ErrorMessage: "Invalid date"},
		},
		Summary: contract.BulkSummary{TotalRequests: 2, SuccessfulConversions: 1, FailedConversions: 1, ProcessingTimeMs: 1500},
	}
	var buf bytes.Buffer
	if err := printBulkPlain(&buf, resp); err != nil {
		t.Fatalf("printBulkPlain failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Failed: Invalid date") {
		t.Fatalf("per-row failure missing:\n%s", out)
	}
	if !strings.Contains(out, "2 requests, 1 ok, 1 failed in 1.5s") {
		t.Fatalf("summary line wrong:\n%s", out)
	}
}

func TestPrintAgePlainUsesDescription(t *testing.T) {
	var buf bytes.Buffer
	if err := printAgePlain(&buf, &contract.AgeResult{Age: 0, NextBirthday: "2027-01-01"}); err != nil {
		t.Fatalf("printAgePlain failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Less than 1 year old") {
		t.Fatalf("age description missing: %q", buf.String())
	}
}
