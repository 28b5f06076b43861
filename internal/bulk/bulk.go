// Package bulk drives batch date conversions and owns the partial-failure
// accounting around them. The remote service does the converting; this
// package filters input rows, preserves their order, and keeps the summary
// tied to the returned results.
package bulk

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/sadbob/mcal/internal/backend"
	"github.com/sadbob/mcal/internal/contract"
)

// CSVHeader is the artifact header for exported bulk results.
var CSVHeader = []string{"Source Date", "Source Calendar", "Target Date", "Target Calendar", "Formatted Date", "Status"}

type Aggregator struct {
	be backend.Backend
}

func New(be backend.Backend) *Aggregator {
	return &Aggregator{be: be}
}

// Convert submits items as one batch. Rows with a blank date are dropped
// before dispatch and never count toward the summary. An all-blank batch is a
// local validation failure; the service is not contacted. The response keeps
// the filtered items' relative order, and the summary is recomputed strictly
// from the returned results so the two cannot drift.
func (a *Aggregator) Convert(ctx context.Context, items []contract.BulkConversionItem) (*contract.BulkConversionResponse, error) {
	filtered := Filter(items)
	if len(filtered) == 0 {
		return nil, contract.ValidationError{Message: "Please enter at least one date to convert"}
	}

	start := time.Now()
	resp, err := a.be.ConvertBulk(ctx, filtered)
	if err != nil {
		return nil, err
	}
	elapsed := resp.Summary.ProcessingTimeMs
	if elapsed <= 0 {
		elapsed = time.Since(start).Milliseconds()
	}
	resp.Summary = Summarize(resp.Results, elapsed)
	return resp, nil
}

// Filter drops items with a blank date, keeping the survivors' order.
func Filter(items []contract.BulkConversionItem) []contract.BulkConversionItem {
	out := make([]contract.BulkConversionItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Date) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Summarize derives the batch summary from the results sequence alone.
func Summarize(results []contract.SingleConversionResult, elapsedMs int64) contract.BulkSummary {
	s := contract.BulkSummary{
		TotalRequests:    len(results),
		ProcessingTimeMs: elapsedMs,
	}
	for _, r := range results {
		if r.Success {
			s.SuccessfulConversions++
		} else {
			s.FailedConversions++
		}
	}
	return s
}

// WriteCSV writes results in response order, one row per result plus the
// header row.
func WriteCSV(w io.Writer, results []contract.SingleConversionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range results {
		status := "Failed"
		if r.Success {
			status = "Success"
		}
		row := []string{
			r.SourceDate,
			string(r.SourceCalendar),
			r.TargetDate,
			string(r.TargetCalendar),
			r.FormattedTargetDate,
			status,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
