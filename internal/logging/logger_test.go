package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", nil); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level   string
		info    bool
		verbose bool
	}{
		{"debug", true, true},
		{"", true, false},
		{"INFO", true, false},
		{"warning", false, false},
		{"error", false, false},
	}
	for _, tc := range cases {
		logger, err := New(tc.level, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("New(%q): %v", tc.level, err)
		}
		if got := logger.Enabled(); got != tc.info {
			t.Fatalf("New(%q): info enabled = %t, want %t", tc.level, got, tc.info)
		}
		if got := logger.V(1).Enabled(); got != tc.verbose {
			t.Fatalf("New(%q): V(1) enabled = %t, want %t", tc.level, got, tc.verbose)
		}
	}
}

func TestNewWritesToDestination(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("resolved build directory", "service", "api")
	if !strings.Contains(buf.String(), "resolved build directory") || !strings.Contains(buf.String(), "api") {
		t.Fatalf("expected log line in output, got %q", buf.String())
	}
}
