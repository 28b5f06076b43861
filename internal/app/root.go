package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadbob/mcal/internal/backend"
	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/output"
)

var backendFactory = selectBackend

type globalOptions struct {
	JSON          bool
	JSONL         bool
	Plain         bool
	Fields        string
	Quiet         bool
	Verbose       bool
	NoColor       bool
	Profile       string
	Config        string
	ServiceURL    string
	Rate          float64
	TZ            string
	Timeout       time.Duration
	SchemaVersion string
	Theme         string
}

func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil {
		renderTopLevelError(cmd, err)
	}
	return ExitCode(err)
}

func NewRootCommand() *cobra.Command {
	opts := &globalOptions{
		Profile:       "default",
		ServiceURL:    backend.DefaultBaseURL,
		Rate:          10,
		Timeout:       15 * time.Second,
		SchemaVersion: contract.SchemaVersion,
	}

	root := &cobra.Command{
		Use:           "mcal",
		Short:         "Convert dates across Gregorian, Ethiopian, and Hijri calendars",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       BuildVersionString(),
	}
	root.SetVersionTemplate("mcal {{.Version}}\n")

	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output structured JSON")
	root.PersistentFlags().BoolVar(&opts.JSONL, "jsonl", false, "Output newline-delimited JSON")
	root.PersistentFlags().BoolVar(&opts.Plain, "plain", false, "Output stable plain text")
	root.PersistentFlags().StringVar(&opts.Fields, "fields", "", "Projected fields, comma-separated")
	root.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Reduce success output")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose diagnostics")
	root.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "Disable color output")
	root.PersistentFlags().StringVar(&opts.Profile, "profile", "default", "Config profile")
	root.PersistentFlags().StringVar(&opts.Config, "config", "", "Config file path")
	root.PersistentFlags().StringVar(&opts.ServiceURL, "service-url", backend.DefaultBaseURL, "Calendar service base URL")
	root.PersistentFlags().Float64Var(&opts.Rate, "rate", 10, "Max requests per second to the service")
	root.PersistentFlags().StringVar(&opts.TZ, "tz", "", "IANA timezone for today/navigation anchors")
	root.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 15*time.Second, "Service call timeout (e.g. 10s, 1m, 0 to disable)")
	root.PersistentFlags().StringVar(&opts.SchemaVersion, "schema-version", contract.SchemaVersion, "Output schema version")

	root.AddCommand(newConvertCmd(opts))
	root.AddCommand(newAgeCmd(opts))
	root.AddCommand(newTodayCmd(opts))
	root.AddCommand(newBulkCmd(opts))
	root.AddCommand(newViewCmd(opts))
	root.AddCommand(newHolidaysCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompletionCmd(root))

	return root
}

func buildContext(cmd *cobra.Command, opts *globalOptions, command string) (output.Printer, backend.Backend, *globalOptions, error) {
	resolved, err := resolveGlobalOptions(cmd, opts)
	if err != nil {
		return output.Printer{}, nil, nil, Wrap(2, err)
	}
	if conflictCount(resolved.JSON, resolved.JSONL, resolved.Plain) > 1 {
		return output.Printer{}, nil, nil, Wrap(2, errors.New("--json, --jsonl, and --plain are mutually exclusive"))
	}
	mode := output.ModeAuto
	if resolved.JSON {
		mode = output.ModeJSON
	} else if resolved.JSONL {
		mode = output.ModeJSONL
	} else if resolved.Plain {
		mode = output.ModePlain
	}

	printer := output.Printer{
		Mode:          mode,
		Command:       command,
		Fields:        splitCSV(resolved.Fields),
		Quiet:         resolved.Quiet,
		NoColor:       resolved.NoColor,
		SchemaVersion: resolved.SchemaVersion,
		Out:           cmd.OutOrStdout(),
		Err:           cmd.ErrOrStderr(),
	}

	be, err := backendFactory(resolved)
	if err != nil {
		_ = printer.Error(contract.ErrInvalidUsage, err.Error(), "Check --service-url")
		return printer, nil, nil, WrapPrinted(2, err)
	}
	if resolved.Verbose {
		// The HTTP client logs request/response lines at Debug; the default
		// handler sits at Info, so raise it or --verbose shows nothing.
		slog.SetLogLoggerLevel(slog.LevelDebug)
		_, _ = fmt.Fprintf(printer.Err, "mcal: command=%s service=%s mode=%s tz=%s profile=%s timeout=%s\n", command, resolved.ServiceURL, mode, resolved.TZ, resolved.Profile, resolved.Timeout)
	}
	return printer, be, resolved, nil
}

func commandContext(ro *globalOptions) (context.Context, context.CancelFunc) {
	timing := &timingRecorder{calls: map[string]time.Duration{}}
	base := context.WithValue(context.Background(), timingContextKey{}, timing)
	if ro == nil || ro.Timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, ro.Timeout)
}

type timeoutResult[T any] struct {
	val T
	err error
}

type timingContextKey struct{}

type timingRecorder struct {
	mu    sync.Mutex
	calls map[string]time.Duration
}

func (r *timingRecorder) add(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[name] += d
}

func serviceTimings(ctx context.Context) map[string]string {
	rec, _ := ctx.Value(timingContextKey{}).(*timingRecorder)
	if rec == nil {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rec.calls))
	for k := range rec.calls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = rec.calls[k].String()
	}
	return out
}

func withTimeout[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	ch := make(chan timeoutResult[T], 1)
	go func() {
		v, err := fn()
		ch <- timeoutResult[T]{val: v, err: err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		return res.val, res.err
	}
}

func convertDateWithTimeout(ctx context.Context, be backend.Backend, req contract.DateConversionRequest) (*contract.ConversionResult, error) {
	start := time.Now()
	v, err := withTimeout(ctx, func() (*contract.ConversionResult, error) {
		return be.ConvertDate(ctx, req)
	})
	err = annotateServiceError(ctx, "service.convert_date", err)
	recordTiming(ctx, "service.convert_date", time.Since(start))
	return v, err
}

func calculateAgeWithTimeout(ctx context.Context, be backend.Backend, req contract.AgeCalculationRequest) (*contract.AgeResult, error) {
	start := time.Now()
	v, err := withTimeout(ctx, func() (*contract.AgeResult, error) {
		return be.CalculateAge(ctx, req)
	})
	err = annotateServiceError(ctx, "service.calculate_age", err)
	recordTiming(ctx, "service.calculate_age", time.Since(start))
	return v, err
}

func todayWithTimeout(ctx context.Context, be backend.Backend) (*contract.TodayResult, error) {
	start := time.Now()
	v, err := withTimeout(ctx, func() (*contract.TodayResult, error) {
		return be.Today(ctx)
	})
	err = annotateServiceError(ctx, "service.today", err)
	recordTiming(ctx, "service.today", time.Since(start))
	return v, err
}

func checkHolidayWithTimeout(ctx context.Context, be backend.Backend, kind contract.CalendarKind, date string) (*contract.HolidayCheck, error) {
	start := time.Now()
	v, err := withTimeout(ctx, func() (*contract.HolidayCheck, error) {
		return be.CheckHoliday(ctx, kind, date)
	})
	err = annotateServiceError(ctx, "service.check_holiday", err)
	recordTiming(ctx, "service.check_holiday", time.Since(start))
	return v, err
}

func monthHolidaysWithTimeout(ctx context.Context, be backend.Backend, kind contract.CalendarKind, year, month int) (*contract.MonthHolidays, error) {
	start := time.Now()
	v, err := withTimeout(ctx, func() (*contract.MonthHolidays, error) {
		return be.MonthHolidays(ctx, kind, year, month)
	})
	err = annotateServiceError(ctx, "service.month_holidays", err)
	recordTiming(ctx, "service.month_holidays", time.Since(start))
	return v, err
}

func upcomingHolidaysWithTimeout(ctx context.Context, be backend.Backend, kind contract.CalendarKind, month, day int) ([]contract.HolidayRecord, error) {
	start := time.Now()
	v, err := withTimeout(ctx, func() ([]contract.HolidayRecord, error) {
		return be.UpcomingHolidays(ctx, kind, month, day)
	})
	err = annotateServiceError(ctx, "service.upcoming_holidays", err)
	recordTiming(ctx, "service.upcoming_holidays", time.Since(start))
	return v, err
}

func exportPDFWithTimeout(ctx context.Context, be backend.Backend, kind contract.CalendarKind, year, month int) ([]byte, error) {
	start := time.Now()
	v, err := withTimeout(ctx, func() ([]byte, error) {
		return be.ExportCalendarPDF(ctx, kind, year, month)
	})
	err = annotateServiceError(ctx, "service.export_pdf", err)
	recordTiming(ctx, "service.export_pdf", time.Since(start))
	return v, err
}

func exportICSWithTimeout(ctx context.Context, be backend.Backend, kind contract.CalendarKind, year int) ([]byte, error) {
	start := time.Now()
	v, err := withTimeout(ctx, func() ([]byte, error) {
		return be.ExportHolidaysICS(ctx, kind, year)
	})
	err = annotateServiceError(ctx, "service.export_ics", err)
	recordTiming(ctx, "service.export_ics", time.Since(start))
	return v, err
}

func recordTiming(ctx context.Context, name string, d time.Duration) {
	rec, _ := ctx.Value(timingContextKey{}).(*timingRecorder)
	if rec == nil {
		return
	}
	rec.add(name, d)
}

func successWithMeta(ctx context.Context, p output.Printer, ro *globalOptions, data any, meta map[string]any, warnings []string) error {
	if ro != nil && ro.Verbose {
		timings := serviceTimings(ctx)
		if len(timings) > 0 {
			if meta == nil {
				meta = map[string]any{}
			}
			meta["timings"] = timings
			_, _ = fmt.Fprintf(p.Err, "mcal: timings=%v\n", timings)
		}
	}
	return p.Success(data, meta, warnings)
}

func failWithHint(printer output.Printer, code contract.ErrorCode, err error, hint string, exitCode int) error {
	_ = printer.Error(code, err.Error(), hint)
	return WrapPrinted(exitCode, err)
}

// failService maps a service or transport failure onto the error taxonomy:
// local validation is invalid usage, a 404 is not found, an unreachable or
// timed-out service is unavailable. The service's own message is surfaced
// verbatim when it sent one; fallback covers bare transport failures.
func failService(printer output.Printer, err error, fallback string) error {
	var verr contract.ValidationError
	if errors.As(err, &verr) {
		return failWithHint(printer, contract.ErrInvalidUsage, err, "", 2)
	}
	var svcErr *backend.ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.NotFound() {
			return failWithHint(printer, contract.ErrNotFound, err, "", 4)
		}
		if svcErr.Status >= 500 {
			return failWithHint(printer, contract.ErrServiceUnavailable, err, "Check the calendar service and --service-url", 6)
		}
		return failWithHint(printer, contract.ErrGeneric, err, "", 1)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		_ = printer.ErrorWithMeta(contract.ErrServiceUnavailable, err.Error(), "Raise --timeout or check the calendar service", serviceErrorMeta(err))
		return WrapPrinted(6, err)
	}
	msg := err
	if fallback != "" {
		msg = fmt.Errorf("%s: %w", fallback, err)
	}
	return failWithHint(printer, contract.ErrServiceUnavailable, msg, "Check the calendar service and --service-url", 6)
}

func renderTopLevelError(cmd *cobra.Command, err error) {
	var appErr AppError
	if errors.As(err, &appErr) && appErr.Printed {
		return
	}
	if wantsStructuredErrorOutput(os.Args[1:]) {
		printer := output.Printer{
			Mode:          output.ModeJSON,
			SchemaVersion: contract.SchemaVersion,
			Err:           cmd.ErrOrStderr(),
		}
		_ = printer.Error(errorCodeForExit(ExitCode(err)), err.Error(), "")
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err.Error())
}

func wantsStructuredErrorOutput(args []string) bool {
	for _, arg := range args {
		switch {
		case arg == "--":
			return false
		case arg == "--json", arg == "--jsonl":
			return true
		case strings.HasPrefix(arg, "--json="), strings.HasPrefix(arg, "--jsonl="):
			return true
		}
	}
	return false
}

func errorCodeForExit(code int) contract.ErrorCode {
	switch code {
	case 2:
		return contract.ErrInvalidUsage
	case 4:
		return contract.ErrNotFound
	case 6:
		return contract.ErrServiceUnavailable
	default:
		return contract.ErrGeneric
	}
}

func selectBackend(ro *globalOptions) (backend.Backend, error) {
	url := strings.TrimSpace(ro.ServiceURL)
	if url == "" {
		url = backend.DefaultBaseURL
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("invalid --service-url: %s", ro.ServiceURL)
	}
	return backend.NewClient(url, ro.Timeout, ro.Rate, ro.Verbose), nil
}

func resolveLocation(tz string) *time.Location {
	if strings.TrimSpace(tz) != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}

func conflictCount(vals ...bool) int {
	total := 0
	for _, v := range vals {
		if v {
			total++
		}
	}
	return total
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
