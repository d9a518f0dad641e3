package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repomirror/internal/location"
)

const testURL = "https://github.com/jpaidoussi/columbia-git.git"

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func TestRun_PathUsesWorkingDirFlag(t *testing.T) {
	isolateConfig(t)
	wd := t.TempDir()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	code := run([]string{"--working-dir", wd, "--log-level", "error", "path", testURL}, stdout, stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}

	var got map[string]string
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	want := filepath.Join(wd, "eb", "abd769f1c701fe1d60a58a8d8c4d76", "ebabd769f1c701fe1d60a58a8d8c4d76")
	if got["path"] != want {
		t.Errorf("path = %q, want %q", got["path"], want)
	}
}

func TestRun_ConfigFileAndFlagOverride(t *testing.T) {
	isolateConfig(t)
	fromFile := t.TempDir()
	fromFlag := t.TempDir()
	logFile := filepath.Join(t.TempDir(), "logs", "repomirror.log")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "working_directory: " + fromFile + "\nlog_level: debug\nlog_file: " + logFile + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	if code := run([]string{"--config", cfgPath, "path", testURL}, stdout, stderr); code != 0 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	loc, _ := location.Resolve(fromFile, testURL)
	if !strings.Contains(stdout.String(), loc.RootPath) {
		t.Errorf("config working_directory not used: %s", stdout.String())
	}
	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("log file was not created: %v", err)
	}

	stdout.Reset()
	if code := run([]string{"--config", cfgPath, "-w", fromFlag, "path", testURL}, stdout, stderr); code != 0 {
		t.Fatalf("run() = %d", code)
	}
	loc, _ = location.Resolve(fromFlag, testURL)
	if !strings.Contains(stdout.String(), loc.RootPath) {
		t.Errorf("--working-dir should override the config file: %s", stdout.String())
	}
}

func TestRun_InvalidLogLevel(t *testing.T) {
	isolateConfig(t)
	stderr := &bytes.Buffer{}
	if code := run([]string{"--log-level", "loud", "version"}, &bytes.Buffer{}, stderr); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "log_level") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_Help(t *testing.T) {
	isolateConfig(t)
	stderr := &bytes.Buffer{}
	if code := run([]string{"--help"}, &bytes.Buffer{}, stderr); code != 0 {
		t.Errorf("run(--help) = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "--working-dir") {
		t.Errorf("help should list global flags, got:\n%s", stderr.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	isolateConfig(t)
	stderr := &bytes.Buffer{}
	if code := run([]string{"--log-level", "error", "frobnicate"}, &bytes.Buffer{}, stderr); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
}
