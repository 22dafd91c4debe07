package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "insight.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("level=info msg=\"line %d\"", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "zero lines",
			maxLines: 0,
			expected: nil,
		},
		{
			name:     "negative lines",
			maxLines: -1,
			expected: nil,
		},
		{
			name:     "partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Read = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("Read = %q, want nil", got)
	}
}

func TestRead_EmptyFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "empty.log")
	if err := os.WriteFile(logPath, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Read(logPath, 5)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Read = %q, want empty", got)
	}
}

func TestRead_SpansChunks(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "big.log")

	long := strings.Repeat("x", 1000)
	var content strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&content, "%03d %s\r\n", i, long)
	}
	content.WriteString("last line without newline")
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Read(logPath, 40)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != 40 {
		t.Fatalf("Read returned %d lines, want 40", len(got))
	}
	if !strings.HasPrefix(got[0], "061 ") {
		t.Fatalf("first line = %.10q, want prefix 061", got[0])
	}
	if strings.HasSuffix(got[1], "\r") {
		t.Fatalf("carriage return not trimmed")
	}
	if got[39] != "last line without newline" {
		t.Fatalf("last line = %q, want trailing line", got[39])
	}
}

func TestLevel(t *testing.T) {
	cases := map[string]string{
		`time="2026-01-02 10:00:00" level=warn prefix=insight msg=x`: "warn",
		`level=ERROR msg="boom"`:                                     "error",
		`level="info"`:                                               "info",
		`plain text`:                                                 "",
	}
	for line, want := range cases {
		if got := Level(line); got != want {
			t.Fatalf("Level(%q) = %q, want %q", line, got, want)
		}
	}
}
