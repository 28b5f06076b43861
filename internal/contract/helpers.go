package contract

import (
	"fmt"
	"strconv"
	"strings"
)

// HolidayOnDay returns the first holiday in hs whose calendar-relative
// day-of-month equals day, or nil. When several holidays share a day the
// first in sequence order wins; the tie-break is deliberate and stable.
func HolidayOnDay(hs []HolidayRecord, day int) *HolidayRecord {
	for i := range hs {
		if d, ok := dayOfMonth(hs[i].Date); ok && d == day {
			return &hs[i]
		}
	}
	return nil
}

// dayOfMonth extracts the trailing day component of a YYYY-MM-DD string.
// The string is calendar-relative, so this is lexical, not time.Parse.
func dayOfMonth(date string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(date), "-")
	if len(parts) != 3 {
		return 0, false
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil || d < 1 {
		return 0, false
	}
	return d, true
}

// DescribeAge renders an age the way the converter UI words it.
func DescribeAge(age int) string {
	switch {
	case age < 1:
		return "Less than 1 year old"
	case age == 1:
		return "1 year old"
	default:
		return fmt.Sprintf("%d years old", age)
	}
}
