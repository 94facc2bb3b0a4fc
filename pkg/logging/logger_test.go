package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the package at a temporary log directory and resets
// the process-wide state, restoring everything on cleanup.
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origInitOnce := initOnce
	origRunID := runID
	origRunIDOnce := runIDOnce

	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	initOnce.Do(func() {}) // directory already exists
	runID = ""
	runIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = origInitOnce
		runID = origRunID
		runIDOnce = origRunIDOnce
	})
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("orchestrator")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer logger.Close()

	if logger.component != "orchestrator" {
		t.Errorf("component = %q, want %q", logger.component, "orchestrator")
	}
	if logger.RunID() == "" {
		t.Error("expected a non-empty run ID")
	}
	if !strings.HasSuffix(logger.LogPath(), "-authd.log") {
		t.Errorf("unexpected log path %q", logger.LogPath())
	}
}

func TestComponentsShareRunFile(t *testing.T) {
	setupTestDir(t)

	first, err := NewLogger("captcha")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer first.Close()

	second, err := NewLogger("otp")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer second.Close()

	if first.LogPath() != second.LogPath() {
		t.Errorf("components wrote to different files: %q vs %q", first.LogPath(), second.LogPath())
	}
}

func TestLogLevelsAreWritten(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("browser")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debugf("debug %d", 1)
	logger.Infof("info %d", 2)
	logger.Warnf("warn %d", 3)
	logger.Errorf("error %d", 4)
	logger.Close()

	data, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	content := string(data)
	for _, want := range []string{"[DEBUG] debug 1", "[INFO] info 2", "[WARN] warn 3", "[ERROR] error 4", "[browser]"} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q", want)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("server")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestFallbackLoggerOnBadDirectory(t *testing.T) {
	setupTestDir(t)

	// Force directory initialization to fail.
	badFile := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(badFile, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	logDir = filepath.Join(badFile, "logs")
	initOnce = sync.Once{}

	logger, err := NewLogger("fallback")
	if err == nil {
		t.Fatal("expected an error from NewLogger")
	}
	if logger == nil {
		t.Fatal("expected a usable fallback logger")
	}
	// Must not panic.
	logger.Infof("still works")
	if logger.LogPath() != "" {
		t.Errorf("fallback logger should have no log path, got %q", logger.LogPath())
	}
}
