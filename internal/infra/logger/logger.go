package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	// File, when set, receives the log instead of Output.
	File string
	// Output defaults to os.Stderr.
	Output io.Writer
}

var (
	mu      sync.RWMutex
	global  = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile *os.File
	logPath string
)

func Setup(cfg Config) (func() error, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var f *os.File
	path := strings.TrimSpace(cfg.File)
	if path != "" {
		path = filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, err
		}
		out = f
	}

	l := New(cfg.Level, cfg.Format, out)

	mu.Lock()
	global = l
	logFile = f
	logPath = path
	mu.Unlock()
	prevDefault := slog.Default()
	slog.SetDefault(l)

	l.Debug("logger.initialized", "level", cfg.Level, "format", cfg.Format, "path", path)

	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()

		var cerr error
		if logFile != nil {
			cerr = logFile.Close()
		}
		logFile = nil
		logPath = ""
		global = slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(prevDefault)
		return cerr
	}

	return cleanup, nil
}

// New builds a logger without touching the global one.
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: ParseLevel(level) == slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				t := a.Value.Time().UTC()
				a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
			}
			return a
		},
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Path is the log file in use, or "" when logging to a stream.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}
