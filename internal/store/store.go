// Package store holds the client-side state for the four user-facing
// concerns: single conversion, bulk conversion, calendar view, and age
// calculation. Each concern moves Idle -> Loading -> Success|Failed
// independently, holds at most one result or error at a time, and discards
// responses that a newer request has superseded.
package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sadbob/mcal/internal/backend"
	"github.com/sadbob/mcal/internal/bulk"
	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/grid"
	"github.com/sadbob/mcal/internal/timeparse"
)

type Concern string

const (
	ConcernConversion Concern = "conversion"
	ConcernBulk       Concern = "bulk"
	ConcernCalendar   Concern = "calendar"
	ConcernAge        Concern = "age"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// State is an external snapshot of one concern.
type State struct {
	Status    Status
	RequestID string
	Err       string
	Result    any
}

// CalendarData is the joined product of the two calendar-view fetches.
type CalendarData struct {
	Grid     *contract.CalendarGrid
	Holidays *contract.MonthHolidays
	View     *grid.MonthView
}

type concernState struct {
	status    Status
	seq       uint64
	requestID string
	result    any
	errMsg    string
}

type Store struct {
	mu    sync.Mutex
	be    backend.Backend
	agg   *bulk.Aggregator
	clock grid.Clock

	concerns map[Concern]*concernState
}

func New(be backend.Backend, clock grid.Clock) *Store {
	if clock == nil {
		clock = grid.RealClock{}
	}
	return &Store{
		be:    be,
		agg:   bulk.New(be),
		clock: clock,
		concerns: map[Concern]*concernState{
			ConcernConversion: {status: StatusIdle},
			ConcernBulk:       {status: StatusIdle},
			ConcernCalendar:   {status: StatusIdle},
			ConcernAge:        {status: StatusIdle},
		},
	}
}

// ConvertDate runs one conversion through the conversion concern. An empty or
// lexically malformed date fails locally and leaves the concern untouched;
// calendar-specific range validation belongs to the service.
func (s *Store) ConvertDate(ctx context.Context, req contract.DateConversionRequest) (*contract.ConversionResult, error) {
	if strings.TrimSpace(req.Date) == "" {
		return nil, contract.ValidationError{Message: "Please select a date to convert"}
	}
	if !timeparse.ValidISODate(req.Date) {
		return nil, contract.ValidationError{Message: "Date must be in YYYY-MM-DD format"}
	}

	seq := s.begin(ConcernConversion)
	res, err := s.be.ConvertDate(ctx, req)
	if err != nil {
		s.fail(ConcernConversion, seq, err)
		return nil, err
	}
	s.succeed(ConcernConversion, seq, res)
	return res, nil
}

// ConvertBulk submits a batch through the bulk concern. The aggregator's
// empty-batch validation error passes through without entering Loading.
func (s *Store) ConvertBulk(ctx context.Context, items []contract.BulkConversionItem) (*contract.BulkConversionResponse, error) {
	if len(bulk.Filter(items)) == 0 {
		return nil, contract.ValidationError{Message: "Please enter at least one date to convert"}
	}

	seq := s.begin(ConcernBulk)
	resp, err := s.agg.Convert(ctx, items)
	if err != nil {
		s.fail(ConcernBulk, seq, err)
		return nil, err
	}
	// Per-item failures stay per-item; the concern as a whole succeeded.
	s.succeed(ConcernBulk, seq, resp)
	return resp, nil
}

// CalculateAge runs the age concern. An empty birth date fails locally
// before the client is invoked.
func (s *Store) CalculateAge(ctx context.Context, req contract.AgeCalculationRequest) (*contract.AgeResult, error) {
	if strings.TrimSpace(req.BirthDate) == "" {
		return nil, contract.ValidationError{Message: "Please select your birth date"}
	}

	seq := s.begin(ConcernAge)
	res, err := s.be.CalculateAge(ctx, req)
	if err != nil {
		s.fail(ConcernAge, seq, err)
		return nil, err
	}
	s.succeed(ConcernAge, seq, res)
	return res, nil
}

// LoadCalendar fetches the month grid and the month holidays concurrently
// and joins them: the concern is loaded only when both arrive, and fails as
// a whole when either fails. The annotated view is built against the clock's
// current Gregorian date.
func (s *Store) LoadCalendar(ctx context.Context, kind contract.CalendarKind, year, month int) (*CalendarData, error) {
	seq := s.begin(ConcernCalendar)

	type gridResult struct {
		grid *contract.CalendarGrid
		err  error
	}
	type holidayResult struct {
		holidays *contract.MonthHolidays
		err      error
	}
	gridCh := make(chan gridResult, 1)
	holCh := make(chan holidayResult, 1)
	go func() {
		g, err := s.be.MonthGrid(ctx, kind, year, month)
		gridCh <- gridResult{grid: g, err: err}
	}()
	go func() {
		h, err := s.be.MonthHolidays(ctx, kind, year, month)
		holCh <- holidayResult{holidays: h, err: err}
	}()
	gr := <-gridCh
	hr := <-holCh

	if gr.err != nil {
		s.fail(ConcernCalendar, seq, gr.err)
		return nil, gr.err
	}
	if hr.err != nil {
		s.fail(ConcernCalendar, seq, hr.err)
		return nil, hr.err
	}

	var holidays []contract.HolidayRecord
	if hr.holidays != nil {
		holidays = hr.holidays.Holidays
	}
	data := &CalendarData{
		Grid:     gr.grid,
		Holidays: hr.holidays,
		View:     grid.Build(gr.grid, holidays, s.clock.Now()),
	}
	s.succeed(ConcernCalendar, seq, data)
	return data, nil
}

// Reset returns a concern to Idle with every field at its initial value.
func (s *Store) Reset(concern Concern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.concerns[concern]; ok {
		cs.status = StatusIdle
		cs.requestID = ""
		cs.result = nil
		cs.errMsg = ""
	}
}

func (s *Store) Snapshot(concern Concern) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.concerns[concern]
	if !ok {
		return State{Status: StatusIdle}
	}
	return State{
		Status:    cs.status,
		RequestID: cs.requestID,
		Err:       cs.errMsg,
		Result:    cs.result,
	}
}

// begin claims a new sequence number for the concern, clears its previous
// error, and enters Loading. The previous success value is kept so it stays
// visible until the replacement response lands.
func (s *Store) begin(concern Concern) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := s.concerns[concern]
	cs.seq++
	cs.status = StatusLoading
	cs.requestID = uuid.NewString()
	cs.errMsg = ""
	return cs.seq
}

func (s *Store) succeed(concern Concern, seq uint64, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := s.concerns[concern]
	if cs.seq != seq {
		// A newer request owns this concern; drop the stale response.
		return
	}
	cs.status = StatusSuccess
	cs.result = result
	cs.errMsg = ""
}

func (s *Store) fail(concern Concern, seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := s.concerns[concern]
	if cs.seq != seq {
		return
	}
	cs.status = StatusFailed
	cs.result = nil
	if err != nil {
		cs.errMsg = err.Error()
	} else {
		cs.errMsg = "request failed"
	}
}
