package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/grid"
	"github.com/sadbob/mcal/internal/output"
	"github.com/sadbob/mcal/internal/store"
	"github.com/sadbob/mcal/internal/timeparse"
)

func newViewCmd(opts *globalOptions) *cobra.Command {
	viewCmd := &cobra.Command{Use: "view", Short: "Calendar views"}

	var calS, anchorS string
	var yearN, monthN, prevN, nextN int
	month := &cobra.Command{
		Use:   "month",
		Short: "Show a month grid with holidays and today marked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "view.month")
			if err != nil {
				return err
			}
			kind, err := contract.ParseCalendarKind(calS)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use --calendar gregorian|ethiopian|hijri", 2)
			}
			year, monthNum, err := resolveViewMonth(cmd, kind, anchorS, yearN, monthN, prevN, nextN, ro.TZ)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "", 2)
			}

			ctx, cancel := commandContext(ro)
			defer cancel()
			st := store.New(be, nil)
			data, err := st.LoadCalendar(ctx, kind, year, monthNum)
			if err != nil {
				return failService(p, annotateServiceError(ctx, "service.load_calendar", err), "calendar view failed")
			}

			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				return printMonthViewPlain(cmd.OutOrStdout(), data.View)
			}
			meta := map[string]any{
				"calendar": kind,
				"year":     year,
				"month":    monthNum,
				"holidays": len(data.View.Holidays),
				"theme":    ro.Theme,
			}
			return successWithMeta(ctx, p, ro, data.View, meta, nil)
		},
	}
	month.Flags().StringVar(&calS, "calendar", "gregorian", "Calendar system to view")
	month.Flags().StringVar(&anchorS, "anchor", "today", "Gregorian anchor: today, 2026-01, +2m, ...")
	month.Flags().IntVar(&yearN, "year", 0, "Year in the viewed calendar (required for non-Gregorian)")
	month.Flags().IntVar(&monthN, "month", 0, "Month in the viewed calendar (required for non-Gregorian)")
	month.Flags().IntVar(&prevN, "prev", 0, "Navigate N months back from the anchor")
	month.Flags().IntVar(&nextN, "next", 0, "Navigate N months forward from the anchor")

	viewCmd.AddCommand(month)
	return viewCmd
}

// resolveViewMonth decides which (year, month) to request. Gregorian views
// anchor on a parsed Gregorian month and navigate with Gregorian month
// arithmetic. Other calendars have their own month structure the client does
// not reproduce, so they take explicit --year/--month and reject navigation.
func resolveViewMonth(cmd *cobra.Command, kind contract.CalendarKind, anchorS string, year, month, prevN, nextN int, tz string) (int, int, error) {
	if kind != contract.Gregorian {
		if prevN != 0 || nextN != 0 {
			return 0, 0, fmt.Errorf("--prev/--next navigate Gregorian months; use explicit --year/--month for %s", kind)
		}
		if year <= 0 || month <= 0 {
			return 0, 0, fmt.Errorf("--year and --month are required for %s views", kind)
		}
		return year, month, nil
	}
	if year > 0 && month > 0 {
		if flagValueChanged(cmd, "anchor") {
			return 0, 0, fmt.Errorf("use either --anchor or --year/--month, not both")
		}
		anchor := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		anchor = navigateMonths(anchor, prevN, nextN)
		return anchor.Year(), int(anchor.Month()), nil
	}
	loc := resolveLocation(tz)
	anchor, err := timeparse.ParseMonth(anchorS, time.Now().In(loc), loc)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --anchor: %w", err)
	}
	anchor = navigateMonths(anchor, prevN, nextN)
	return anchor.Year(), int(anchor.Month()), nil
}

func navigateMonths(anchor time.Time, prevN, nextN int) time.Time {
	for i := 0; i < prevN; i++ {
		anchor = grid.Navigate(anchor, grid.Prev)
	}
	for i := 0; i < nextN; i++ {
		anchor = grid.Navigate(anchor, grid.Next)
	}
	return anchor
}
