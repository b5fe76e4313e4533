package ports

import (
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

// MetricsSink receives scrape outcomes and publishes them as metrics.
type MetricsSink interface {
	// Apply publishes a successfully fetched snapshot and returns the
	// problems it skipped (unparseable fields, unknown statuses).
	Apply(s domain.Snapshot) []error
	// ObserveScrape records the outcome of one pass; stage is StageNone on success.
	ObserveScrape(stage domain.ScrapeStage, duration time.Duration, at time.Time)
}
