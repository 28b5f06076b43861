package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/output"
	"github.com/sadbob/mcal/internal/store"
)

func newConvertCmd(opts *globalOptions) *cobra.Command {
	var dateS, fromS, toS string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a date between calendar systems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "convert")
			if err != nil {
				return err
			}
			from, err := contract.ParseCalendarKind(fromS)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use --from gregorian|ethiopian|hijri", 2)
			}
			to, err := contract.ParseCalendarKind(toS)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use --to gregorian|ethiopian|hijri", 2)
			}
			ctx, cancel := commandContext(ro)
			defer cancel()

			st := store.New(be, nil)
			res, err := st.ConvertDate(ctx, contract.DateConversionRequest{
				CalendarType:   from,
				Date:           dateS,
				TargetCalendar: to,
			})
			if err != nil {
				return failService(p, annotateServiceError(ctx, "service.convert_date", err), "conversion failed")
			}

			var warnings []string
			if herr := recordConversion(ctx, historyRecord{
				SourceCalendar: from,
				SourceDate:     dateS,
				TargetCalendar: to,
				TargetDate:     res.Conversions[to],
				FormattedDate:  res.FormattedDates[to],
			}); herr != nil {
				warnings = append(warnings, fmt.Sprintf("history not recorded: %v", herr))
			}

			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				return printConvertPlain(cmd.OutOrStdout(), res)
			}
			meta := map[string]any{"source": from, "target": to}
			return successWithMeta(ctx, p, ro, res, meta, warnings)
		},
	}
	cmd.Flags().StringVar(&dateS, "date", "", "Date to convert (YYYY-MM-DD, in the source calendar)")
	cmd.Flags().StringVar(&fromS, "from", "gregorian", "Source calendar")
	cmd.Flags().StringVar(&toS, "to", "", "Target calendar")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newAgeCmd(opts *globalOptions) *cobra.Command {
	var birthS, calS, targetS string
	cmd := &cobra.Command{
		Use:   "age",
		Short: "Calculate age from a birth date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "age")
			if err != nil {
				return err
			}
			kind, err := contract.ParseCalendarKind(calS)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use --calendar gregorian|ethiopian|hijri", 2)
			}
			req := contract.AgeCalculationRequest{CalendarType: kind, BirthDate: birthS}
			if targetS != "" {
				target, err := contract.ParseCalendarKind(targetS)
				if err != nil {
					return failWithHint(p, contract.ErrInvalidUsage, err, "Use --target gregorian|ethiopian|hijri", 2)
				}
				req.TargetCalendar = target
			}
			ctx, cancel := commandContext(ro)
			defer cancel()

			st := store.New(be, nil)
			res, err := st.CalculateAge(ctx, req)
			if err != nil {
				return failService(p, annotateServiceError(ctx, "service.calculate_age", err), "age calculation failed")
			}
			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				return printAgePlain(cmd.OutOrStdout(), res)
			}
			meta := map[string]any{"calendar": kind, "described": contract.DescribeAge(res.Age)}
			return successWithMeta(ctx, p, ro, res, meta, nil)
		},
	}
	cmd.Flags().StringVar(&birthS, "birth-date", "", "Birth date (YYYY-MM-DD, in the chosen calendar)")
	cmd.Flags().StringVar(&calS, "calendar", "gregorian", "Calendar the birth date is expressed in")
	cmd.Flags().StringVar(&targetS, "target", "", "Calendar to express the age dates in")
	return cmd
}

func newTodayCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's date in all three calendars",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "today")
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			res, err := todayWithTimeout(ctx, be)
			if err != nil {
				return failService(p, err, "today lookup failed")
			}
			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				return printTodayPlain(cmd.OutOrStdout(), res)
			}
			return successWithMeta(ctx, p, ro, res, nil, nil)
		},
	}
}
