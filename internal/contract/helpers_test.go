package contract

import "testing"

func TestHolidayOnDayFirstMatchWins(t *testing.T) {
	hs := []HolidayRecord{
		{Name: "Epiphany", Date: "2024-01-10"},
		{Name: "Second Feast", Date: "2024-01-10"},
		{Name: "Later", Date: "2024-01-19"},
	}
	for i := 0; i < 5; i++ {
		got := HolidayOnDay(hs, 10)
		if got == nil || got.Name != "Epiphany" {
			t.Fatalf("iteration %d: expected Epiphany, got %+v", i, got)
		}
	}
}

func TestHolidayOnDayNoMatch(t *testing.T) {
	hs := []HolidayRecord{{Name: "Epiphany", Date: "2024-01-10"}}
	if got := HolidayOnDay(hs, 11); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if got := HolidayOnDay(nil, 10); got != nil {
		t.Fatalf("expected nil on nil list, got %+v", got)
	}
}

func TestHolidayOnDayMalformedDateSkipped(t *testing.T) {
	hs := []HolidayRecord{
		{Name: "Broken", Date: "not-a-date"},
		{Name: "Good", Date: "2017-13-05"},
	}
	got := HolidayOnDay(hs, 5)
	if got == nil || got.Name != "Good" {
		t.Fatalf("expected Good, got %+v", got)
	}
}

func TestDescribeAge(t *testing.T) {
	cases := []struct {
		age  int
		want string
	}{
		{0, "Less than 1 year old"},
		{1, "1 year old"},
		{2, "2 years old"},
		{41, "41 years old"},
	}
	for _, c := range cases {
		if got := DescribeAge(c.age); got != c.want {
			t.Fatalf("DescribeAge(%d) = %q, want %q", c.age, got, c.want)
		}
	}
}

func TestParseCalendarKind(t *testing.T) {
	for _, in := range []string{"gregorian", "GREGORIAN", " Greg ", "gc"} {
		k, err := ParseCalendarKind(in)
		if err != nil || k != Gregorian {
			t.Fatalf("ParseCalendarKind(%q) = %v, %v", in, k, err)
		}
	}
	if k, err := ParseCalendarKind("eth"); err != nil || k != Ethiopian {
		t.Fatalf("eth parse failed: %v %v", k, err)
	}
	if k, err := ParseCalendarKind("hijri"); err != nil || k != Hijri {
		t.Fatalf("hijri parse failed: %v %v", k, err)
	}
	if _, err := ParseCalendarKind("julian"); err == nil {
		t.Fatalf("expected error for unknown calendar")
	}
}
