package app

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/insight/internal/logging"
)

// unwritableLogConfig returns a config whose log_dir sits under a regular
// file, so the log directory can never be created.
func unwritableLogConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("log_dir = %q\n", filepath.Join(blocker, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// captureStderr points os.Stderr at a temp file for the test and returns
// a func reading what was written.
func captureStderr(t *testing.T) func() string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "stderr")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	orig := os.Stderr
	os.Stderr = f
	t.Cleanup(func() {
		os.Stderr = orig
		_ = f.Close()
	})
	return func() string {
		data, err := os.ReadFile(f.Name())
		if err != nil {
			t.Fatalf("read stderr: %v", err)
		}
		return string(data)
	}
}

func TestSetup_TUILogFallbackStaysOffStderr(t *testing.T) {
	read := captureStderr(t)

	rt, err := setup(Options{
		ConfigPath: unwritableLogConfig(t),
		ServiceURL: "http://127.0.0.1:1",
	}, discardLogger)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer rt.Close()

	if rt.logErr == nil {
		t.Fatal("expected log file error to be recorded")
	}
	rt.logger.Error("after fallback")

	if got := read(); got != "" {
		t.Fatalf("TUI fallback logger wrote to stderr: %q", got)
	}
}

func TestSetup_HeadlessLogFallbackUsesStderr(t *testing.T) {
	read := captureStderr(t)

	rt, err := setup(Options{
		ConfigPath: unwritableLogConfig(t),
		ServiceURL: "http://127.0.0.1:1",
	}, logging.Stderr)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer rt.Close()

	if rt.logErr == nil {
		t.Fatal("expected log file error to be recorded")
	}
	if got := read(); got == "" {
		t.Fatal("expected headless fallback warning on stderr")
	}
}

func TestSetup_LogFileOpenedRecordsNoError(t *testing.T) {
	rt, err := setup(Options{
		ConfigPath: writeConfig(t, ""),
		ServiceURL: "http://127.0.0.1:1",
	}, discardLogger)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer rt.Close()

	if rt.logErr != nil {
		t.Fatalf("logErr = %v, want nil", rt.logErr)
	}
	if rt.closer == nil {
		t.Fatal("expected log file closer")
	}
}
