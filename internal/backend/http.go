// Package backend implements the HTTP client for the multi-calendar
// conversion service. All methods are context-aware and respect a shared
// client-side rate limiter. Calls are never retried: a rejected or failed
// call surfaces immediately so the caller can report it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sadbob/mcal/internal/contract"
)

const DefaultBaseURL = "http://localhost:8080/api/v1/"

// ServiceError carries the service's own error payload. Message is surfaced
// verbatim to the user when present.
type ServiceError struct {
	Status    int
	ErrorCode string
	Message   string
}

func (e *ServiceError) Error() string {
	if e == nil {
		return "service error"
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("service returned HTTP %d", e.Status)
}

// NotFound reports whether the service rejected the request as unknown
// resource rather than as unreachable or invalid.
func (e *ServiceError) NotFound() bool {
	return e != nil && e.Status == http.StatusNotFound
}

// Client is the HTTP implementation of Backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	debug      bool
}

var _ Backend = (*Client)(nil)

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64, debug bool) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if ratePerSec <= 0 {
		ratePerSec = 10
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		debug:   debug,
	}
}

func (c *Client) ConvertDate(ctx context.Context, req contract.DateConversionRequest) (*contract.ConversionResult, error) {
	var out contract.ConversionResult
	if err := c.post(ctx, "dates/convert", req, &out); err != nil {
		return nil, fmt.Errorf("convert %s: %w", req.Date, err)
	}
	return &out, nil
}

func (c *Client) CalculateAge(ctx context.Context, req contract.AgeCalculationRequest) (*contract.AgeResult, error) {
	var out contract.AgeResult
	if err := c.post(ctx, "dates/age", req, &out); err != nil {
		return nil, fmt.Errorf("age %s: %w", req.BirthDate, err)
	}
	return &out, nil
}

func (c *Client) Today(ctx context.Context) (*contract.TodayResult, error) {
	var out contract.TodayResult
	if err := c.get(ctx, "dates/today", nil, &out); err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}
	return &out, nil
}

func (c *Client) ConvertBulk(ctx context.Context, items []contract.BulkConversionItem) (*contract.BulkConversionResponse, error) {
	req := struct {
		Conversions []contract.BulkConversionItem `json:"conversions"`
	}{Conversions: items}
	var out contract.BulkConversionResponse
	if err := c.post(ctx, "bulk/convert", req, &out); err != nil {
		return nil, fmt.Errorf("bulk convert (%d items): %w", len(items), err)
	}
	return &out, nil
}

func (c *Client) MonthGrid(ctx context.Context, kind contract.CalendarKind, year, month int) (*contract.CalendarGrid, error) {
	params := url.Values{}
	params.Set("year", strconv.Itoa(year))
	params.Set("month", strconv.Itoa(month))
	var out contract.CalendarGrid
	if err := c.get(ctx, "calendar/"+kindPath(kind), params, &out); err != nil {
		return nil, fmt.Errorf("calendar %s %d-%02d: %w", kind, year, month, err)
	}
	return &out, nil
}

func (c *Client) MonthHolidays(ctx context.Context, kind contract.CalendarKind, year, month int) (*contract.MonthHolidays, error) {
	path := fmt.Sprintf("holidays/month/%s/%d/%d", kindPath(kind), year, month)
	var out contract.MonthHolidays
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, fmt.Errorf("holidays %s %d-%02d: %w", kind, year, month, err)
	}
	return &out, nil
}

func (c *Client) CheckHoliday(ctx context.Context, kind contract.CalendarKind, date string) (*contract.HolidayCheck, error) {
	var out contract.HolidayCheck
	if err := c.get(ctx, fmt.Sprintf("holidays/check/%s/%s", kindPath(kind), url.PathEscape(date)), nil, &out); err != nil {
		return nil, fmt.Errorf("holiday check %s: %w", date, err)
	}
	return &out, nil
}

func (c *Client) UpcomingHolidays(ctx context.Context, kind contract.CalendarKind, currentMonth, currentDay int) ([]contract.HolidayRecord, error) {
	params := url.Values{}
	if currentMonth > 0 {
		params.Set("currentMonth", strconv.Itoa(currentMonth))
	}
	if currentDay > 0 {
		params.Set("currentDay", strconv.Itoa(currentDay))
	}
	var out []contract.HolidayRecord
	if err := c.get(ctx, "holidays/upcoming/"+kindPath(kind), params, &out); err != nil {
		return nil, fmt.Errorf("upcoming holidays %s: %w", kind, err)
	}
	return out, nil
}

func (c *Client) ExportCalendarPDF(ctx context.Context, kind contract.CalendarKind, year, month int) ([]byte, error) {
	path := fmt.Sprintf("export/pdf/calendar/%s/%d/%d", kindPath(kind), year, month)
	b, err := c.getRaw(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("pdf export %s %d-%02d: %w", kind, year, month, err)
	}
	return b, nil
}

func (c *Client) ExportHolidaysICS(ctx context.Context, kind contract.CalendarKind, year int) ([]byte, error) {
	path := fmt.Sprintf("export/ics/holidays/%s/%d", kindPath(kind), year)
	b, err := c.getRaw(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("ics export %s %d: %w", kind, year, err)
	}
	return b, nil
}

// kindPath lowercases the enum for path segments, matching the service routes.
func kindPath(kind contract.CalendarKind) string {
	return strings.ToLower(string(kind))
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, endpoint, nil, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	if c.debug {
		slog.Debug("calendar service request", "method", method, "url", reqURL)
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mcal/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if c.debug {
		slog.Debug("calendar service response", "status", resp.StatusCode, "bytes", len(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		svcErr := &ServiceError{Status: resp.StatusCode}
		var apiErr struct {
			ErrorCode string `json:"errorCode"`
			Message   string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil {
			svcErr.ErrorCode = apiErr.ErrorCode
			svcErr.Message = apiErr.Message
		}
		return nil, svcErr
	}
	return body, nil
}
