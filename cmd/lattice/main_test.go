package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/lattice/internal/config"
	"github.com/vango-dev/lattice/internal/errors"
)

// run executes the CLI with a config file in a temp dir and returns stdout.
func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(append([]string{"--config", path}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, config.New(), "version", "--short")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}

func TestRenderCommand(t *testing.T) {
	out, err := run(t, config.New(), "render", "--start=2")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	want := `<div class="counter"><button id="dec">-</button><button id="inc">+</button><p id="count">2</p><span class="badge">even</span><footer>built with lattice</footer></div>` + "\n"
	if out != want {
		t.Errorf("render = %q, want %q", out, want)
	}

	cfg := config.New()
	cfg.Render.Title = "Demo"
	cfg.Render.MountID = "root"
	out, err = run(t, cfg, "render", "--page")
	if err != nil {
		t.Fatalf("render --page error = %v", err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "<title>Demo</title>", `<div id="root"><div class="counter">`} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestVerifyCommand(t *testing.T) {
	out, err := run(t, config.New(), "verify", "--start=0,3,4")
	if err != nil {
		t.Fatalf("verify error = %v", err)
	}
	if got := strings.Count(out, "round trip"); got != 3 {
		t.Errorf("verify printed %d results, want 3:\n%s", got, out)
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, config.New(), "export", "-o", dir)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "Exported 2 pages") {
		t.Errorf("export output = %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "even", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `<span class="badge">even</span>`) {
		t.Errorf("even page = %q", data)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := config.New()
	cfg.Log.Level = "loud"
	_, err := run(t, cfg, "render")
	if !errors.HasCode(err, "E122") {
		t.Errorf("render with bad log level = %v, want E122", err)
	}

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.json"), "render"})
	cmd.SetOut(&bytes.Buffer{})
	if err := cmd.Execute(); !errors.HasCode(err, "E141") {
		t.Errorf("missing config = %v, want E141", err)
	}
}
