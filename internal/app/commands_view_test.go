package app

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sadbob/mcal/internal/contract"
)

func TestViewMonthPlainShowsHolidayAndCaption(t *testing.T) {
	fb := &fakeService{
		holidays: &contract.MonthHolidays{
			Year: 2016, Month: 4, CalendarType: contract.Ethiopian,
			Holidays: []contract.HolidayRecord{{
				Name: "Genna", Date: "2016-04-29", CalendarType: contract.Ethiopian,
				HolidayType: contract.HolidayReligious,
			}},
		},
	}
	withFakeService(t, fb)

	out, _, err := runCommand(t, "view", "month", "--calendar", "ethiopian", "--year", "2016", "--month", "4", "--plain")
	if code := ExitCode(err); code != 0 {
		t.Fatalf("expected exit 0, got %d err=%v", code, err)
	}
	if fb.gridCalls != 1 || fb.holidayCalls != 1 {
		t.Fatalf("expected one grid and one holiday fetch, got %d/%d", fb.gridCalls, fb.holidayCalls)
	}
	if !strings.Contains(out, "Test Month") {
		t.Fatalf("caption missing:\n%s", out)
	}
	if !strings.Contains(out, "Genna") {
		t.Fatalf("holiday listing missing:\n%s", out)
	}
}

func TestViewMonthJoinedFailure(t *testing.T) {
	fb := &fakeService{holidaysErr: errors.New("holiday backend down")}
	withFakeService(t, fb)

	_, _, err := runCommand(t, "view", "month", "--calendar", "gregorian", "--year", "2026", "--month", "1")
	if code := ExitCode(err); code != 6 {
		t.Fatalf("grid view must fail as a whole, got exit %d err=%v", code, err)
	}
}

func TestViewMonthJSONEnvelope(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)

	out, _, err := runCommand(t, "view", "month", "--calendar", "gregorian", "--year", "2026", "--month", "1", "--json")
	if code := ExitCode(err); code != 0 {
		t.Fatalf("expected exit 0, got %d err=%v", code, err)
	}
	var env contract.SuccessEnvelope
	if uerr := json.Unmarshal([]byte(out), &env); uerr != nil {
		t.Fatalf("invalid envelope: %v", uerr)
	}
	if env.Command != "view.month" {
		t.Fatalf("unexpected command: %q", env.Command)
	}
}

func TestResolveViewMonthNonGregorianRequiresExplicit(t *testing.T) {
	cmd := newTestCmd()
	if _, _, err := resolveViewMonth(cmd, contract.Ethiopian, "today", 0, 0, 0, 0, ""); err == nil {
		t.Fatalf("expected error without --year/--month")
	}
	if _, _, err := resolveViewMonth(cmd, contract.Hijri, "today", 1446, 9, 1, 0, ""); err == nil {
		t.Fatalf("expected error for --prev on a non-Gregorian view")
	}
	y, m, err := resolveViewMonth(cmd, contract.Ethiopian, "today", 2016, 13, 0, 0, "")
	if err != nil || y != 2016 || m != 13 {
		t.Fatalf("explicit Ethiopian month rejected: %d-%d err=%v", y, m, err)
	}
}

func TestResolveViewMonthGregorianNavigation(t *testing.T) {
	cmd := newTestCmd()
	y, m, err := resolveViewMonth(cmd, contract.Gregorian, "today", 2026, 1, 2, 0, "")
	if err != nil {
		t.Fatalf("resolveViewMonth failed: %v", err)
	}
	if y != 2025 || m != 11 {
		t.Fatalf("expected 2025-11 after two months back, got %d-%d", y, m)
	}
	y, m, err = resolveViewMonth(cmd, contract.Gregorian, "today", 2025, 12, 0, 1, "")
	if err != nil || y != 2026 || m != 1 {
		t.Fatalf("expected 2026-01 after one month forward, got %d-%d err=%v", y, m, err)
	}
}

func TestNavigateMonthsYearBoundary(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	back := navigateMonths(anchor, 1, 0)
	if back.Year() != 2025 || back.Month() != time.December {
		t.Fatalf("expected December 2025, got %s", back)
	}
}

func TestNavigateMonthsMonthEndAnchor(t *testing.T) {
	// An --anchor on day 29-31 (or running on those days with the default
	// "today" anchor) must still move exactly one month per step.
	next := navigateMonths(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 0, 1)
	if next.Year() != 2026 || next.Month() != time.February {
		t.Fatalf("next from Jan 31 landed in %s %d", next.Month(), next.Year())
	}
	prev := navigateMonths(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), 1, 0)
	if prev.Year() != 2026 || prev.Month() != time.February {
		t.Fatalf("prev from Mar 31 landed in %s %d", prev.Month(), prev.Year())
	}
}
