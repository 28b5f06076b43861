package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sadbob/mcal/internal/contract"
)

func TestBulkConvertCSVFile(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)

	f := filepath.Join(t.TempDir(), "dates.csv")
	content := "date,source,target\n2024-01-01,gregorian,ethiopian\n\n2024-02-02,,hijri\n"
	if err := os.WriteFile(f, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_, _, err := runCommand(t, "bulk", "convert", "--file", f, "--json")
	if code := ExitCode(err); code != 0 {
		t.Fatalf("expected exit 0, got %d err=%v", code, err)
	}
	if fb.bulkCalls != 1 {
		t.Fatalf("expected one bulk call, got %d", fb.bulkCalls)
	}
	if len(fb.lastBulk) != 2 {
		t.Fatalf("blank row should be dropped before dispatch, got %d items", len(fb.lastBulk))
	}
	if fb.lastBulk[0].Date != "2024-01-01" || fb.lastBulk[1].Date != "2024-02-02" {
		t.Fatalf("order not preserved: %+v", fb.lastBulk)
	}
	if fb.lastBulk[1].SourceCalendar != contract.Gregorian || fb.lastBulk[1].TargetCalendar != contract.Hijri {
		t.Fatalf("row defaults not applied: %+v", fb.lastBulk[1])
	}
}

func TestBulkConvertAllBlankFailsFast(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)

	f := filepath.Join(t.TempDir(), "dates.csv")
	if err := os.WriteFile(f, []byte("date\n\n   \n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_, errOut, err := runCommand(t, "bulk", "convert", "--file", f)
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d err=%v", code, err)
	}
	if fb.bulkCalls != 0 {
		t.Fatalf("service must not be contacted for an empty batch")
	}
	if !strings.Contains(errOut, "Please enter at least one date to convert") {
		t.Fatalf("missing validation message: %q", errOut)
	}
}

func TestBulkConvertStdinJSONL(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)

	var outBuf strings.Builder
	cmd := NewRootCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&outBuf)
	cmd.SetIn(strings.NewReader(`{"date":"2024-03-03","sourceCalendar":"HIJRI"}` + "\n"))
	cmd.SetArgs([]string{"bulk", "convert", "--file", "-", "--format", "jsonl", "--to", "gregorian", "--json"})
	err := cmd.Execute()
	if code := ExitCode(err); code != 0 {
		t.Fatalf("expected exit 0, got %d err=%v", code, err)
	}
	if len(fb.lastBulk) != 1 || fb.lastBulk[0].SourceCalendar != contract.Hijri || fb.lastBulk[0].TargetCalendar != contract.Gregorian {
		t.Fatalf("jsonl row mishandled: %+v", fb.lastBulk)
	}
}

func TestBulkConvertWritesResultsCSV(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)

	dir := t.TempDir()
	in := filepath.Join(dir, "dates.csv")
	out := filepath.Join(dir, "results.csv")
	if err := os.WriteFile(in, []byte("2024-01-01\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_, _, err := runCommand(t, "bulk", "convert", "--file", in, "--out", out, "--json")
	if code := ExitCode(err); code != 0 {
		t.Fatalf("expected exit 0, got %d err=%v", code, err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("results file missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Source Date,") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], ",Success") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestParseBulkCSVRejectsBadCalendar(t *testing.T) {
	_, err := parseBulkCSV("2024-01-01,klingon\n", contract.Gregorian, contract.Ethiopian)
	if err == nil {
		t.Fatalf("expected error for unknown calendar")
	}
}
