package backend

import (
	"context"

	"github.com/sadbob/mcal/internal/contract"
)

// Backend is the boundary to the remote date/calendar service. Implementations
// transport requests and responses only; no calendar math happens on this side
// of the interface.
type Backend interface {
	ConvertDate(context.Context, contract.DateConversionRequest) (*contract.ConversionResult, error)
	CalculateAge(context.Context, contract.AgeCalculationRequest) (*contract.AgeResult, error)
	Today(context.Context) (*contract.TodayResult, error)
	ConvertBulk(context.Context, []contract.BulkConversionItem) (*contract.BulkConversionResponse, error)
	MonthGrid(context.Context, contract.CalendarKind, int, int) (*contract.CalendarGrid, error)
	MonthHolidays(context.Context, contract.CalendarKind, int, int) (*contract.MonthHolidays, error)
	CheckHoliday(context.Context, contract.CalendarKind, string) (*contract.HolidayCheck, error)
	UpcomingHolidays(context.Context, contract.CalendarKind, int, int) ([]contract.HolidayRecord, error)
	ExportCalendarPDF(context.Context, contract.CalendarKind, int, int) ([]byte, error)
	ExportHolidaysICS(context.Context, contract.CalendarKind, int) ([]byte, error)
}
