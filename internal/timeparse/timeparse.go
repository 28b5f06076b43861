package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseMonth resolves a Gregorian month selector: YYYY-MM, YYYY-MM-DD,
// today/tomorrow/yesterday, or a +Nm/-Nm month offset. Month selectors are
// always Gregorian; they only anchor which grid to request from the service.
func ParseMonth(input string, now time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		s = "today"
	}

	switch s {
	case "today":
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	case "tomorrow":
		v, _ := ParseMonth("today", now, loc)
		return v.AddDate(0, 0, 1), nil
	case "yesterday":
		v, _ := ParseMonth("today", now, loc)
		return v.AddDate(0, 0, -1), nil
	}

	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		sign := 1
		if strings.HasPrefix(s, "-") {
			sign = -1
		}
		raw := strings.TrimPrefix(strings.TrimPrefix(s, "+"), "-")
		if strings.HasSuffix(raw, "m") {
			n, err := strconv.Atoi(strings.TrimSuffix(raw, "m"))
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid relative month: %s", input)
			}
			v, _ := ParseMonth("today", now, loc)
			return v.AddDate(0, sign*n, 0), nil
		}
	}

	layouts := []string{"2006-01", "2006-01-02"}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, strings.TrimSpace(input), loc); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported month selector: %s", input)
}

// ValidISODate reports whether s is lexically YYYY-MM-DD. The check is
// deliberately shallow: dates are calendar-relative (an Ethiopian 13th month
// or a Hijri day count is fine), so range validation belongs to the service.
func ValidISODate(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
