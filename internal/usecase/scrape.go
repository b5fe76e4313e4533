package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/ports"
)

// Scrape performs one fetch-and-publish pass against a PDU.
type Scrape struct {
	source ports.SnapshotSource
	sink   ports.MetricsSink
	log    *slog.Logger
	now    func() time.Time
}

type ScrapeOption func(*Scrape)

func WithLogger(l *slog.Logger) ScrapeOption {
	return func(uc *Scrape) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) ScrapeOption {
	return func(uc *Scrape) { uc.now = now }
}

// NewScrape wires a source to an optional sink; a nil sink only fetches.
func NewScrape(src ports.SnapshotSource, sink ports.MetricsSink, opts ...ScrapeOption) *Scrape {
	uc := &Scrape{
		source: src,
		sink:   sink,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute fetches one snapshot and publishes it. A failed fetch is logged,
// recorded on the sink and returned; it never panics the caller's loop.
func (uc *Scrape) Execute(ctx context.Context) (domain.Snapshot, error) {
	start := uc.now()
	uc.log.Debug("process.started")

	snap, err := uc.source.Fetch(ctx)
	elapsed := uc.now().Sub(start)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Snapshot{}, ctx.Err()
		}
		stage := domain.StageOf(err)
		uc.log.Warn("pdu.fetch_failed",
			"stage", string(stage),
			"reason", string(domain.ClassifyRunError(err)),
			"error", err,
		)
		if uc.sink != nil {
			uc.sink.ObserveScrape(stage, elapsed, start)
		}
		return domain.Snapshot{}, err
	}

	for _, w := range snap.Warnings {
		uc.log.Warn("pdu.outlet_skipped", "reason", w)
	}

	for _, d := range snap.Devices {
		uc.log.Debug("device.processing", "type", d.Type, "id", d.ID)
		if !d.Exported() {
			uc.log.Debug("device.skipped", "id", d.ID, "reason", "no outlets")
			continue
		}
		for _, o := range d.Outlets {
			uc.log.Debug("outlet.processing", "num", o.Num, "device", d.ID)
		}
	}

	if uc.sink != nil {
		for _, p := range uc.sink.Apply(snap) {
			uc.log.Warn("metric.skipped", "error", p)
		}
		uc.sink.ObserveScrape(domain.StageNone, uc.now().Sub(start), start)
	}

	return snap, nil
}
