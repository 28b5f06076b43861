package app

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadbob/mcal/internal/bulk"
	"github.com/sadbob/mcal/internal/contract"
	"github.com/sadbob/mcal/internal/output"
	"github.com/sadbob/mcal/internal/store"
)

func newBulkCmd(opts *globalOptions) *cobra.Command {
	bulkCmd := &cobra.Command{Use: "bulk", Short: "Batch conversions"}

	var fileS, formatS, outS, fromS, toS string
	convert := &cobra.Command{
		Use:   "convert",
		Short: "Convert a batch of dates in one request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, be, ro, err := buildContext(cmd, opts, "bulk.convert")
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
			raw, err := readTextInput(fileS, cmd.InOrStdin())
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Check --file", 2)
			}
			items, err := parseBulkInput(raw, bulkInputFormat(fileS, formatS), from, to)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Rows are `date[,source[,target]]` in CSV, BulkConversionItem objects in JSONL", 2)
			}

			ctx, cancel := commandContext(ro)
			defer cancel()
			st := store.New(be, nil)
			resp, err := st.ConvertBulk(ctx, items)
			if err != nil {
				return failService(p, annotateServiceError(ctx, "service.convert_bulk", err), "bulk conversion failed")
			}

			var warnings []string
			if outS != "" {
				if err := writeBulkCSVFile(outS, resp.Results); err != nil {
					warnings = append(warnings, fmt.Sprintf("results file not written: %v", err))
				}
			}

			if p.EffectiveSuccessMode() == output.ModePlain && !p.Quiet {
				return printBulkPlain(cmd.OutOrStdout(), resp)
			}
			meta := map[string]any{
				"total":  resp.Summary.TotalRequests,
				"ok":     resp.Summary.SuccessfulConversions,
				"failed": resp.Summary.FailedConversions,
			}
			return successWithMeta(ctx, p, ro, resp, meta, warnings)
		},
	}
	convert.Flags().StringVar(&fileS, "file", "-", "Input file (- for stdin)")
	convert.Flags().StringVar(&formatS, "format", "", "Input format: csv|jsonl (default: by file extension)")
	convert.Flags().StringVar(&outS, "out", "", "Write per-row results to this CSV file")
	convert.Flags().StringVar(&fromS, "from", "gregorian", "Default source calendar for rows that omit one")
	convert.Flags().StringVar(&toS, "to", "ethiopian", "Default target calendar for rows that omit one")

	bulkCmd.AddCommand(convert)
	return bulkCmd
}

func bulkInputFormat(path, override string) string {
	if override != "" {
		return strings.ToLower(override)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return "jsonl"
	default:
		return "csv"
	}
}

// parseBulkInput turns raw file content into an ordered batch. Blank-date
// rows are carried through untouched; dropping them is the aggregator's job.
func parseBulkInput(raw, format string, from, to contract.CalendarKind) ([]contract.BulkConversionItem, error) {
	switch format {
	case "csv":
		return parseBulkCSV(raw, from, to)
	case "jsonl":
		return parseBulkJSONL(raw, from, to)
	default:
		return nil, fmt.Errorf("unknown input format: %s", format)
	}
}

func parseBulkCSV(raw string, from, to contract.CalendarKind) ([]contract.BulkConversionItem, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var items []contract.BulkConversionItem
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue // header row
		}
		item := contract.BulkConversionItem{
			Date:           strings.TrimSpace(rec[0]),
			SourceCalendar: from,
			TargetCalendar: to,
		}
		if len(rec) > 1 && strings.TrimSpace(rec[1]) != "" {
			kind, err := contract.ParseCalendarKind(rec[1])
			if err != nil {
				return nil, err
			}
			item.SourceCalendar = kind
		}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			kind, err := contract.ParseCalendarKind(rec[2])
			if err != nil {
				return nil, err
			}
			item.TargetCalendar = kind
		}
		items = append(items, item)
	}
	return items, nil
}

func parseBulkJSONL(raw string, from, to contract.CalendarKind) ([]contract.BulkConversionItem, error) {
	var items []contract.BulkConversionItem
	for _, line := range strings.Split(raw, "\n") {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		var item contract.BulkConversionItem
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			return nil, err
		}
		if item.SourceCalendar == "" {
			item.SourceCalendar = from
		}
		if item.TargetCalendar == "" {
			item.TargetCalendar = to
		}
		items = append(items, item)
	}
	return items, nil
}

func writeBulkCSVFile(path string, results []contract.SingleConversionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bulk.WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readTextInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
