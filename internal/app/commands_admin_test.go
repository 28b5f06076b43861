package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sadbob/mcal/internal/contract"
)

func TestStatusReady(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)

	out, _, err := runCommand(t, "status", "--json")
	if code := ExitCode(err); code != 0 {
		t.Fatalf("expected exit 0, got %d err=%v", code, err)
	}
	var env contract.SuccessEnvelope
	if uerr := json.Unmarshal([]byte(out), &env); uerr != nil {
		t.Fatalf("invalid envelope: %v", uerr)
	}
	data, _ := env.Data.(map[string]any)
	if data["ready"] != true {
		t.Fatalf("expected ready status, got %+v", data)
	}
}

func TestStatusUnreachable(t *testing.T) {
	fb := &fakeService{todayErr: errors.New("connection refused")}
	withFakeService(t, fb)

	out, _, err := runCommand(t, "status", "--plain")
	if code := ExitCode(err); code != 6 {
		t.Fatalf("expected exit 6, got %d", code)
	}
	if !strings.Contains(out, "unreachable") {
		t.Fatalf("status output missing state:\n%s", out)
	}
}

func TestConfigShow(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)

	out, _, err := runCommand(t, "config", "show", "--json")
	if code := ExitCode(err); code != 0 {
		t.Fatalf("expected exit 0, got %d err=%v", code, err)
	}
	var env contract.SuccessEnvelope
	if uerr := json.Unmarshal([]byte(out), &env); uerr != nil {
		t.Fatalf("invalid envelope: %v", uerr)
	}
	data, _ := env.Data.(map[string]any)
	if data["theme"] != "light" {
		t.Fatalf("expected default theme in config dump, got %+v", data)
	}
}

func TestConfigSetTheme(t *testing.T) {
	fb := &fakeService{}
	withFakeService(t, fb)
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	_, _, err := runCommand(t, "config", "set-theme", "dark", "--json")
	if code := ExitCode(err); code != 0 {
		t.Fatalf("expected exit 0, got %d err=%v", code, err)
	}
	raw, err := os.ReadFile(filepath.Join(tmp, "mcal", "config.toml"))
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(raw), "dark") {
		t.Fatalf("theme not persisted:\n%s", raw)
	}

	_, _, err = runCommand(t, "config", "set-theme", "neon")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2 for unknown theme, got %d", code)
	}
}

func TestCompletionBash(t *testing.T) {
	out, _, err := runCommand(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if !strings.Contains(out, "mcal") {
		t.Fatalf("completion script looks wrong")
	}
	_, _, err = runCommand(t, "completion", "tcsh")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit 2 for unsupported shell, got %d", code)
	}
}
