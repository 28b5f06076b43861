package app

import (
	"github.com/spf13/cobra"

	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/output"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var limitN int
	history := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, ro, err := buildContext(cmd, opts, "history")
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			recs, err := listConversions(ctx, limitN)
			if err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check the history database permissions", 1)
			}
			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				return printHistoryPlain(cmd.OutOrStdout(), recs)
			}
			return successWithMeta(ctx, p, ro, recs, map[string]any{"count": len(recs)}, nil)
		},
	}
	history.Flags().IntVar(&limitN, "limit", 10, "Number of entries to show")

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded conversions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, ro, err := buildContext(cmd, opts, "history.clear")
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			n, err := clearConversions(ctx)
			if err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check the history database permissions", 1)
			}
			return p.Success(map[string]any{"deleted": n}, nil, nil)
		},
	}

	history.AddCommand(clear)
	return history
}
