package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/output"
	"github.com/sadbob/mcal/internal/timeparse"
)

func newHolidaysCmd(opts *globalOptions) *cobra.Command {
	holidays := &cobra.Command{Use: "holidays", Short: "Holiday lookups"}

	var monthCalS string
	var monthYearN, monthMonthN int
	month := &cobra.Command{
		Use:   "month",
		Short: "List holidays in a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "holidays.month")
			if err != nil {
				return err
			}
			kind, err := contract.ParseCalendarKind(monthCalS)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use --calendar gregorian|ethiopian|hijri", 2)
			}
			if monthYearN <= 0 || monthMonthN <= 0 {
				return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("--year and --month are required"), "", 2)
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			res, err := monthHolidaysWithTimeout(ctx, be, kind, monthYearN, monthMonthN)
			if err != nil {
				return failService(p, err, "holiday lookup failed")
			}
			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				return printHolidaysPlain(cmd.OutOrStdout(), res.Holidays)
			}
			meta := map[string]any{"calendar": kind, "count": len(res.Holidays)}
			return successWithMeta(ctx, p, ro, res, meta, nil)
		},
	}
	month.Flags().StringVar(&monthCalS, "calendar", "gregorian", "Calendar system")
	month.Flags().IntVar(&monthYearN, "year", 0, "Year in the chosen calendar")
	month.Flags().IntVar(&monthMonthN, "month", 0, "Month in the chosen calendar")

	var checkCalS, checkDateS string
	check := &cobra.Command{
		Use:   "check",
		Short: "Check whether a date is a holiday",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "holidays.check")
			if err != nil {
				return err
			}
			kind, err := contract.ParseCalendarKind(checkCalS)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use --calendar gregorian|ethiopian|hijri", 2)
			}
			if !timeparse.ValidISODate(checkDateS) {
				return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("invalid --date: %q", checkDateS), "Dates are YYYY-MM-DD in the chosen calendar", 2)
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			res, err := checkHolidayWithTimeout(ctx, be, kind, checkDateS)
			if err != nil {
				return failService(p, err, "holiday check failed")
			}
			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				return printHolidayCheckPlain(cmd.OutOrStdout(), res)
			}
			meta := map[string]any{"calendar": kind, "is_holiday": res.IsHoliday}
			return successWithMeta(ctx, p, ro, res, meta, nil)
		},
	}
	check.Flags().StringVar(&checkCalS, "calendar", "gregorian", "Calendar system")
	check.Flags().StringVar(&checkDateS, "date", "", "Date to check (YYYY-MM-DD)")
	_ = check.MarkFlagRequired("date")

	var upCalS string
	var upMonthN, upDayN int
	upcoming := &cobra.Command{
		Use:   "upcoming",
		Short: "List holidays coming up after a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "holidays.upcoming")
			if err != nil {
				return err
			}
			kind, err := contract.ParseCalendarKind(upCalS)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use --calendar gregorian|ethiopian|hijri", 2)
			}
			monthN, dayN := upMonthN, upDayN
			if monthN <= 0 || dayN <= 0 {
				if kind != contract.Gregorian {
					return failWithHint(p, contract.ErrInvalidUsage,
						fmt.Errorf("--month and --day are required for %s", kind),
						"The client only knows today's Gregorian date", 2)
				}
				now := time.Now().In(resolveLocation(ro.TZ))
				monthN, dayN = int(now.Month()), now.Day()
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			recs, err := upcomingHolidaysWithTimeout(ctx, be, kind, monthN, dayN)
			if err != nil {
				return failService(p, err, "upcoming holiday lookup failed")
			}
			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				return printHolidaysPlain(cmd.OutOrStdout(), recs)
			}
			meta := map[string]any{"calendar": kind, "count": len(recs)}
			return successWithMeta(ctx, p, ro, recs, meta, nil)
		},
	}
	upcoming.Flags().StringVar(&upCalS, "calendar", "gregorian", "Calendar system")
	upcoming.Flags().IntVar(&upMonthN, "month", 0, "Month to search from (default: current, Gregorian only)")
	upcoming.Flags().IntVar(&upDayN, "day", 0, "Day to search from (default: current, Gregorian only)")

	holidays.AddCommand(month)
	holidays.AddCommand(check)
	holidays.AddCommand(upcoming)
	return holidays
}
