package usecase

import (
	"context"
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

// Poller repeats a Scrape, waiting Interval after each pass completes.
type Poller struct {
	scrape   *Scrape
	interval time.Duration

	onSnapshot func(domain.Snapshot)
}

type PollerOption func(*Poller)

// WithOnSnapshot registers a callback for every successful pass.
func WithOnSnapshot(fn func(domain.Snapshot)) PollerOption {
	return func(p *Poller) { p.onSnapshot = fn }
}

func NewPoller(scrape *Scrape, interval time.Duration, opts ...PollerOption) *Poller {
	p := &Poller{scrape: scrape, interval: interval}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loops until ctx is cancelled and then returns nil. Scrape failures are
// reported by the Scrape itself and never stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	log := p.scrape.log
	log.Info("poller.started", "interval", p.interval)

	for {
		if ctx.Err() != nil {
			log.Info("poller.stopped")
			return nil
		}

		start := time.Now()
		snap, err := p.scrape.Execute(ctx)
		if ctx.Err() != nil {
			log.Info("poller.stopped")
			return nil
		}
		if err == nil && p.onSnapshot != nil {
			p.onSnapshot(snap)
		}
		log.Info("process.completed",
			"duration", time.Since(start).Round(time.Millisecond),
			"ok", err == nil,
			"devices", len(snap.Devices),
			"outlets", snap.OutletCount(),
		)

		t := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			log.Info("poller.stopped")
			return nil
		case <-t.C:
		}
	}
}
