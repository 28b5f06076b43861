package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadbob/mcal/internal/backend"
	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/output"
)

type exportResult struct {
	Path     string                `json:"path"`
	Bytes    int                   `json:"bytes"`
	Size     string                `json:"size"`
	Calendar contract.CalendarKind `json:"calendar"`
	Year     int                   `json:"year"`
	Month    int                   `json:"month,omitempty"`
	Local    bool                  `json:"local,omitempty"`
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	export := &cobra.Command{Use: "export", Short: "Export calendars and holidays"}

	var pdfCalS, pdfOutS string
	var pdfYearN, pdfMonthN int
	pdf := &cobra.Command{
		Use:   "pdf",
		Short: "Download a month calendar as PDF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "export.pdf")
			if err != nil {
				return err
			}
			kind, err := contract.ParseCalendarKind(pdfCalS)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use --calendar gregorian|ethiopian|hijri", 2)
			}
			if pdfYearN <= 0 || pdfMonthN <= 0 {
				return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("--year and --month are required"), "", 2)
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			data, err := exportPDFWithTimeout(ctx, be, kind, pdfYearN, pdfMonthN)
			if err != nil {
				return failService(p, err, "pdf export failed")
			}
			out := pdfOutS
			if out == "" {
				out = fmt.Sprintf("calendar-%s-%d-%02d.pdf", kindSlug(kind), pdfYearN, pdfMonthN)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check the output path", 1)
			}
			res := exportResult{
				Path: out, Bytes: len(data), Size: humanize.Bytes(uint64(len(data))),
				Calendar: kind, Year: pdfYearN, Month: pdfMonthN,
			}
			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", res.Path, res.Size)
				return err
			}
			return successWithMeta(ctx, p, ro, res, map[string]any{"bytes": res.Bytes}, nil)
		},
	}
	pdf.Flags().StringVar(&pdfCalS, "calendar", "gregorian", "Calendar system")
	pdf.Flags().IntVar(&pdfYearN, "year", 0, "Year in the chosen calendar")
	pdf.Flags().IntVar(&pdfMonthN, "month", 0, "Month in the chosen calendar")
	pdf.Flags().StringVar(&pdfOutS, "out", "", "Output file (default calendar-<kind>-<year>-<month>.pdf)")

	var icsCalS, icsOutS string
	var icsYearN int
	var icsLocal bool
	ics := &cobra.Command{
		Use:   "ics",
		Short: "Export a year of holidays as an iCalendar file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "export.ics")
			if err != nil {
				return err
			}
			kind, err := contract.ParseCalendarKind(icsCalS)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use --calendar gregorian|ethiopian|hijri", 2)
			}
			if icsYearN <= 0 {
				return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("--year is required"), "", 2)
			}
			ctx, cancel := commandContext(ro)
			defer cancel()

			var data []byte
			if icsLocal {
				data, err = buildLocalHolidayICS(ctx, be, kind, icsYearN)
			} else {
				data, err = exportICSWithTimeout(ctx, be, kind, icsYearN)
			}
			if err != nil {
				return failService(p, err, "ics export failed")
			}
			out := icsOutS
			if out == "" {
				out = fmt.Sprintf("holidays-%s-%d.ics", kindSlug(kind), icsYearN)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check the output path", 1)
			}
			res := exportResult{
				Path: out, Bytes: len(data), Size: humanize.Bytes(uint64(len(data))),
				Calendar: kind, Year: icsYearN, Local: icsLocal,
			}
			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", res.Path, res.Size)
				return err
			}
			return successWithMeta(ctx, p, ro, res, map[string]any{"bytes": res.Bytes, "local": icsLocal}, nil)
		},
	}
	ics.Flags().StringVar(&icsCalS, "calendar", "gregorian", "Calendar system")
	ics.Flags().IntVar(&icsYearN, "year", 0, "Year in the chosen calendar")
	ics.Flags().StringVar(&icsOutS, "out", "", "Output file (default holidays-<kind>-<year>.ics)")
	ics.Flags().BoolVar(&icsLocal, "local", false, "Build the ICS locally from fetched holidays instead of downloading it")

	export.AddCommand(pdf)
	export.AddCommand(ics)
	return export
}

func kindSlug(kind contract.CalendarKind) string {
	switch kind {
	case contract.Ethiopian:
		return "ethiopian"
	case contract.Hijri:
		return "hijri"
	default:
		return "gregorian"
	}
}

func monthsInYear(kind contract.CalendarKind) int {
	if kind == contract.Ethiopian {
		return 13
	}
	return 12
}

// buildLocalHolidayICS fetches every month of the year, resolves each
// holiday to a Gregorian occurrence date, and assembles the document with
// the local builder. Non-Gregorian dates go through the conversion endpoint
// because only the service knows that arithmetic.
func buildLocalHolidayICS(ctx context.Context, be backend.Backend, kind contract.CalendarKind, year int) ([]byte, error) {
	var resolved []icsHoliday
	for m := 1; m <= monthsInYear(kind); m++ {
		mh, err := monthHolidaysWithTimeout(ctx, be, kind, year, m)
		if err != nil {
			return nil, err
		}
		if mh == nil {
			continue
		}
		for _, rec := range mh.Holidays {
			date, err := resolveGregorianDate(ctx, be, kind, rec.Date)
			if err != nil {
				return nil, fmt.Errorf("resolving %s (%s): %w", rec.Name, rec.Date, err)
			}
			resolved = append(resolved, icsHoliday{Record: rec, Date: date})
		}
	}
	return buildHolidayICS(resolved, time.Now())
}

func resolveGregorianDate(ctx context.Context, be backend.Backend, kind contract.CalendarKind, date string) (time.Time, error) {
	gregorian := date
	if kind != contract.Gregorian {
		res, err := convertDateWithTimeout(ctx, be, contract.DateConversionRequest{
			CalendarType:   kind,
			Date:           date,
			TargetCalendar: contract.Gregorian,
		})
		if err != nil {
			return time.Time{}, err
		}
		gregorian = res.Conversions[contract.Gregorian]
	}
	return time.Parse("2006-01-02", gregorian)
}
