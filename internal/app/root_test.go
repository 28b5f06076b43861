package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/sadbob/mcal/internal/contract"
)

func TestOutputModeFlagsAreExclusive(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)

	_, _, err := runCommand(t, "today", "--json", "--plain")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2 for conflicting modes, got %d", code)
	}
	if fb.todayCalls != 0 {
		t.Fatalf("service must not be called on usage errors")
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "mcal ") {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestStructuredErrorEnvelopeOnJSON(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)

	_, errOut, err := runCommand(t, "convert", "--date", "", "--to", "ethiopian", "--json")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	var env contract.ErrorEnvelope
	if uerr := json.Unmarshal([]byte(errOut), &env); uerr != nil {
		t.Fatalf("stderr is not an error envelope: %v\n%s", uerr, errOut)
	}
	if env.Error.Code != contract.ErrInvalidUsage {
		t.Fatalf("unexpected error code: %s", env.Error.Code)
	}
	if env.Error.Message != "Please select a date to convert" {
		t.Fatalf("unexpected message: %q", env.Error.Message)
	}
}

func TestVerboseEnablesDebugLogging(t *testing.T) {
	old := slog.SetLogLoggerLevel(slog.LevelInfo)
	defer slog.SetLogLoggerLevel(old)
	fb := &fakeService{}
	withFakeService(t, fb)

	if _, _, err := runCommand(t, "today", "--verbose"); err != nil {
		t.Fatalf("today --verbose failed: %v", err)
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("--verbose must enable debug logging for the client")
	}
}

func TestTimeoutErrorEnvelopeCarriesPhaseMeta(t *testing.T) {
	fb := &fakeService{todayErr: context.DeadlineExceeded}
	withFakeService(t, fb)

	_, errOut, err := runCommand(t, "today", "--json")
	if code := ExitCode(err); code != 6 {
		t.Fatalf("expected exit 6, got %d err=%v", code, err)
	}
	var env contract.ErrorEnvelope
	if uerr := json.Unmarshal([]byte(errOut), &env); uerr != nil {
		t.Fatalf("stderr is not an error envelope: %v\n%s", uerr, errOut)
	}
	if env.Error.Code != contract.ErrServiceUnavailable {
		t.Fatalf("unexpected error code: %s", env.Error.Code)
	}
	if env.Meta["phase"] != "service.today" || env.Meta["kind"] != "timeout" {
		t.Fatalf("timeout annotation missing from meta: %+v", env.Meta)
	}
}

func TestSelectBackendRejectsBadURL(t *testing.T) {
	if _, err := selectBackend(&globalOptions{ServiceURL: "ftp://nope"}); err == nil {
		t.Fatalf("expected rejection of non-http url")
	}
	be, err := selectBackend(&globalOptions{ServiceURL: ""})
	if err != nil || be == nil {
		t.Fatalf("empty url should fall back to the default, err=%v", err)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected fields: %v", got)
	}
	if splitCSV("  ") != nil {
		t.Fatalf("blank input should produce nil")
	}
}
