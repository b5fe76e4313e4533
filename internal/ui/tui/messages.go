package tui

import (
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

type snapshotMsg struct {
	snap domain.Snapshot
	err  error
	at   time.Time
}

// tickMsg carries the sequence number of the poll it was scheduled for so
// that ticks made stale by a manual refresh are dropped.
type tickMsg struct {
	seq int
}
