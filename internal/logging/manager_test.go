// pattern: Imperative Shell

package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewManager_RequiresOutput(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Fatal("NewManager() with no outputs should fail")
	}
}

func TestManager_For(t *testing.T) {
	mgr, err := NewManager(Config{FilePath: filepath.Join(t.TempDir(), "test.log"), Level: "debug"})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer func() { _ = mgr.Close() }()

	logger := mgr.For("repository")
	if logger == nil {
		t.Fatal("For() returned nil")
	}
	if logger != mgr.For("repository") {
		t.Error("For() should return cached logger for same scope")
	}
	if logger == mgr.For("gitcmd") {
		t.Error("For() should return different logger for different scope")
	}
	if logger.Scope() != "repository" {
		t.Errorf("Scope() = %q", logger.Scope())
	}
}

func TestManager_LoggingToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "repomirror.log")

	mgr, err := NewManager(Config{FilePath: logFile, Level: "debug"})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	mgr.For("gitcmd").Info("file test message", "dir", "/srv/mirrors")
	_ = mgr.Close()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)
	for _, want := range []string{"file test message", `"logger":"gitcmd"`, `"dir":"/srv/mirrors"`} {
		if !strings.Contains(content, want) {
			t.Errorf("log file should contain %s, got: %s", want, content)
		}
	}
}

func TestManager_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	mgr, err := NewManager(Config{Console: &buf, Level: "warn"})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer func() { _ = mgr.Close() }()

	logger := mgr.For("app")
	logger.Info("hidden")
	logger.Warn("shown")
	_ = mgr.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn entry missing: %s", out)
	}
}

func TestScopedLogger_WithAndGroups(t *testing.T) {
	lm := NewTestLogManager()
	logger := lm.For("repository").With("url", "https://example.com/r.git")
	logger.Info("cloned", "err", errors.New("boom"), "args", []string{"clone", "--bare"})

	entries := lm.Find("cloned")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Scope != "repository" {
		t.Errorf("Scope = %q", e.Scope)
	}
	if e.Field("url") != "https://example.com/r.git" {
		t.Errorf("url field = %q", e.Field("url"))
	}
	if e.Field("err") != "boom" {
		t.Errorf("err field = %q", e.Field("err"))
	}
	if e.Field("args") != "clone --bare" {
		t.Errorf("args field = %q", e.Field("args"))
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test")
	if logger.With("key", "value") == nil {
		t.Fatal("With() returned nil")
	}
}

func TestParseZapLevel(t *testing.T) {
	if got := ParseZapLevel("debug").String(); got != "debug" {
		t.Errorf("ParseZapLevel(debug) = %s", got)
	}
	if got := ParseZapLevel("WARNING").String(); got != "warn" {
		t.Errorf("ParseZapLevel(WARNING) = %s, want warn", got)
	}
	if got := ParseZapLevel("nonsense").String(); got != "info" {
		t.Errorf("ParseZapLevel(nonsense) = %s, want info", got)
	}
}
