package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/output"
)

type statusResult struct {
	Ready         bool                             `json:"ready"`
	ServiceURL    string                           `json:"service_url"`
	Profile       string                           `json:"profile"`
	Theme         string                           `json:"theme"`
	TZ            string                           `json:"tz,omitempty"`
	OutputMode    string                           `json:"output_mode"`
	SchemaVersion string                           `json:"schema_version"`
	Today         map[contract.CalendarKind]string `json:"today,omitempty"`
	Error         string                           `json:"error,omitempty"`
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show service reachability and active runtime configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "status")
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			res := statusResult{
				ServiceURL:    ro.ServiceURL,
				Profile:       ro.Profile,
				Theme:         ro.Theme,
				TZ:            ro.TZ,
				OutputMode:    string(p.EffectiveSuccessMode()),
				SchemaVersion: ro.SchemaVersion,
			}
			// GET /dates/today doubles as the health probe; a service that
			// can answer it can answer everything else.
			today, terr := todayWithTimeout(ctx, be)
			if terr != nil {
				res.Error = terr.Error()
			} else {
				res.Ready = true
				res.Today = today.TodayDates
			}
			meta := map[string]any{"ready": res.Ready}
			if p.EffectiveSuccessMode() == output.ModePlain {
				_ = printStatusPlain(cmd.OutOrStdout(), res)
			} else {
				_ = successWithMeta(ctx, p, ro, res, meta, nil)
			}
			if !res.Ready {
				return WrapPrinted(6, terr)
			}
			return nil
		},
	}
}

func printStatusPlain(w io.Writer, res statusResult) error {
	state := "ready"
	if !res.Ready {
		state = "unreachable"
	}
	if _, err := fmt.Fprintf(w, "service: %s (%s)\n", res.ServiceURL, state); err != nil {
		return err
	}
	if res.Error != "" {
		if _, err := fmt.Fprintf(w, "error: %s\n", res.Error); err != nil {
			return err
		}
	}
	for _, kind := range contract.AllCalendarKinds() {
		if d, ok := res.Today[kind]; ok {
			if _, err := fmt.Fprintf(w, "today (%s): %s\n", kind, d); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "profile: %s theme: %s output: %s schema: %s\n", res.Profile, res.Theme, res.OutputMode, res.SchemaVersion)
	return err
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	config := &cobra.Command{Use: "config", Short: "Inspect and adjust configuration"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, ro, err := buildContext(cmd, opts, "config.show")
			if err != nil {
				return err
			}
			data := map[string]any{
				"profile":     ro.Profile,
				"config":      ro.Config,
				"service_url": ro.ServiceURL,
				"tz":          ro.TZ,
				"theme":       ro.Theme,
				"timeout":     ro.Timeout.String(),
				"rate":        ro.Rate,
				"output_mode": string(p.EffectiveSuccessMode()),
			}
			return p.Success(data, nil, nil)
		},
	}

	setTheme := &cobra.Command{
		Use:   "set-theme <light|dark>",
		Short: "Persist the preferred theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, _, err := buildContext(cmd, opts, "config.set-theme")
			if err != nil {
				return err
			}
			path, err := persistTheme(strings.ToLower(strings.TrimSpace(args[0])))
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "", 2)
			}
			return p.Success(map[string]any{"theme": strings.ToLower(args[0]), "config": path}, nil, nil)
		},
	}

	config.AddCommand(show)
	config.AddCommand(setTheme)
	return config
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mcal %s\n", BuildVersionString())
		},
	}
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := strings.ToLower(args[0])
			switch shell {
			case "bash":
				return root.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return root.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return root.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return root.GenPowerShellCompletion(cmd.OutOrStdout())
			default:
				return Wrap(2, fmt.Errorf("unsupported shell: %s", shell))
			}
		},
	}
}
