package tui

import (
	"log/slog"
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/ports"
)

type Deps struct {
	Source   ports.SnapshotSource
	Interval time.Duration
	// Target is shown in the header (usually the document URL).
	Target string

	Logger *slog.Logger
}
