package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := ParseLevel(c.input); got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestNewJSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", "json", &buf)

	l.Info("poll.completed")
	l.Warn("pdu.fetch_failed", "url", "http://pdu/data.xml")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected json line: %v", err)
	}
	if rec["msg"] != "pdu.fetch_failed" {
		t.Fatalf("unexpected msg %v", rec["msg"])
	}
	if rec["url"] != "http://pdu/data.xml" {
		t.Fatalf("expected url attr, got %v", rec["url"])
	}
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pdu-exporter.log")

	cleanup, err := Setup(Config{Level: "info", Format: "text", File: path})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if Path() != path {
		t.Fatalf("expected path %s, got %s", path, Path())
	}

	L().Info("poll.completed", "duration", "10ms")

	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if Path() != "" {
		t.Fatalf("expected path to be reset after cleanup, got %q", Path())
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "poll.completed") {
		t.Fatalf("expected log line, got %q", string(b))
	}
}

func TestSetupDefaultsToOutput(t *testing.T) {
	var buf bytes.Buffer
	cleanup, err := Setup(Config{Level: "debug", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer func() { _ = cleanup() }()

	if !strings.Contains(buf.String(), "logger.initialized") {
		t.Fatalf("expected init line at debug, got %q", buf.String())
	}
}
