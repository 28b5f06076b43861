package contract

import (
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = "v1"

type ErrorCode string

const (
	ErrGeneric            ErrorCode = "GENERIC_FAILURE"
	ErrInvalidUsage       ErrorCode = "INVALID_USAGE"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

type ErrorEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Error         ErrorBody      `json:"error"`
	Meta          map[string]any `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
}

type SuccessEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Command       string         `json:"command"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Data          any            `json:"data"`
	Meta          map[string]any `json:"meta"`
	Warnings      []string       `json:"warnings"`
}

// ValidationError is a local input failure detected before any service call.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// CalendarKind selects one of the three supported calendar systems. The
// string values match the service's enum and are used verbatim as map keys
// in multi-calendar responses.
type CalendarKind string

const (
	Gregorian CalendarKind = "GREGORIAN"
	Ethiopian CalendarKind = "ETHIOPIAN"
	Hijri     CalendarKind = "HIJRI"
)

func AllCalendarKinds() []CalendarKind {
	return []CalendarKind{Gregorian, Ethiopian, Hijri}
}

func ParseCalendarKind(s string) (CalendarKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GREGORIAN", "GREG", "GC":
		return Gregorian, nil
	case "ETHIOPIAN", "ETH", "EC":
		return Ethiopian, nil
	case "HIJRI", "HIJ", "HC":
		return Hijri, nil
	default:
		return "", fmt.Errorf("unknown calendar: %s (use gregorian|ethiopian|hijri)", s)
	}
}

type HolidayType string

const (
	HolidayReligious     HolidayType = "RELIGIOUS"
	HolidayNational      HolidayType = "NATIONAL"
	HolidayCultural      HolidayType = "CULTURAL"
	HolidayInternational HolidayType = "INTERNATIONAL"
	HolidayObservance    HolidayType = "OBSERVANCE"
)

type DateConversionRequest struct {
	CalendarType   CalendarKind `json:"calendarType"`
	Date           string       `json:"date"`
	TargetCalendar CalendarKind `json:"targetCalendar"`
}

// ConversionResult is the service's answer to a single conversion. A target
// kind absent from Conversions means "not computed"; an empty string under a
// present key means "computed, no display text".
type ConversionResult struct {
	SourceDate      string                  `json:"sourceDate"`
	SourceCalendar  CalendarKind            `json:"sourceCalendar"`
	Conversions     map[CalendarKind]string `json:"conversions"`
	FormattedDates  map[CalendarKind]string `json:"formattedDates"`
	TargetCalendars []CalendarKind          `json:"targetCalendars"`
	SourceHolidays  []string                `json:"sourceHolidays"`
	TargetHolidays  []string                `json:"targetHolidays"`
	Message         string                  `json:"message"`
}

type AgeCalculationRequest struct {
	CalendarType   CalendarKind `json:"calendarType"`
	BirthDate      string       `json:"birthDate"`
	TargetCalendar CalendarKind `json:"targetCalendar,omitempty"`
}

type AgeResult struct {
	Age          int    `json:"age"`
	BirthDate    string `json:"birthDate"`
	NextBirthday string `json:"nextBirthday"`
	Message      string `json:"message"`
}

type TodayResult struct {
	TodayDates     map[CalendarKind]string `json:"todayDates"`
	FormattedDates map[CalendarKind]string `json:"formattedDates"`
}

type BulkConversionItem struct {
	Date           string       `json:"date"`
	SourceCalendar CalendarKind `json:"sourceCalendar"`
	TargetCalendar CalendarKind `json:"targetCalendar"`
}

// SingleConversionResult corresponds index-for-index to the submitted batch.
// Success == false implies TargetDate is empty and ErrorMessage is set.
type SingleConversionResult struct {
	SourceDate          string       `json:"sourceDate"`
	SourceCalendar      CalendarKind `json:"sourceCalendar"`
	TargetDate          string       `json:"targetDate"`
	TargetCalendar      CalendarKind `json:"targetCalendar"`
	FormattedTargetDate string       `json:"formattedTargetDate"`
	Success             bool         `json:"success"`
	ErrorMessage        string       `json:"errorMessage,omitempty"`
}

type BulkSummary struct {
	TotalRequests         int   `json:"totalRequests"`
	SuccessfulConversions int   `json:"successfulConversions"`
	FailedConversions     int   `json:"failedConversions"`
	ProcessingTimeMs      int64 `json:"processingTimeMs"`
}

type BulkConversionResponse struct {
	Results []SingleConversionResult `json:"results"`
	Summary BulkSummary              `json:"summary"`
	Message string                   `json:"message"`
}

// HolidayRecord belongs to exactly one calendar kind; Date is a
// calendar-relative YYYY-MM-DD string in that kind.
type HolidayRecord struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	CalendarType CalendarKind `json:"calendarType"`
	HolidayType  HolidayType  `json:"holidayType"`
	Date         string       `json:"date"`
	CountryCode  string       `json:"countryCode"`
	IsRecurring  bool         `json:"isRecurring"`
}

type MonthHolidays struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	CalendarType CalendarKind    `json:"calendarType"`
	Holidays     []HolidayRecord `json:"holidays"`
}

type HolidayCheck struct {
	Date         string       `json:"date"`
	CalendarType CalendarKind `json:"calendarType"`
	IsHoliday    bool         `json:"isHoliday"`
	HolidayName  string       `json:"holidayName,omitempty"`
	HolidayType  string       `json:"holidayType,omitempty"`
}

type CalendarDayCell struct {
	Day               int    `json:"day"`
	DisplayDay        string `json:"displayDay"`
	IsCurrentMonth    bool   `json:"isCurrentMonth"`
	IsToday           bool   `json:"isToday"`
	OtherCalendarDate string `json:"otherCalendarDate"`
}

type CalendarWeekRow struct {
	Days []CalendarDayCell `json:"days"`
}

// CalendarGrid is the raw month grid as the service returns it, Sunday-first
// weeks, leading and trailing cells from adjacent months included. Row count
// varies with the month shape (Ethiopian years have 13 months; that is the
// service's concern and only shows up here as the returned grid shape).
type CalendarGrid struct {
	CurrentDate  string            `json:"currentDate"`
	MonthYear    string            `json:"monthYear"`
	Weeks        []CalendarWeekRow `json:"weeks"`
	CalendarType CalendarKind      `json:"calendarType"`
	Year         int               `json:"year"`
	Month        int               `json:"month"`
}
