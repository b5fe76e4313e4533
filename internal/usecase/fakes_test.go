package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/ports"
)

// --- fakes shared by the use case tests ---

type stubSource struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
	errs  []error
	calls int
}

func (s *stubSource) Fetch(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	var snap domain.Snapshot
	var err error
	if i < len(s.snaps) {
		snap = s.snaps[i]
	} else if len(s.snaps) > 0 {
		snap = s.snaps[len(s.snaps)-1]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return snap, err
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type observation struct {
	stage    domain.ScrapeStage
	duration time.Duration
}

type recordingSink struct {
	mu       sync.Mutex
	applied  []domain.Snapshot
	observed []observation
	problems []error
}

func (r *recordingSink) Apply(s domain.Snapshot) []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, s)
	return r.problems
}

func (r *recordingSink) ObserveScrape(stage domain.ScrapeStage, d time.Duration, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed = append(r.observed, observation{stage: stage, duration: d})
}

type fakeConfigLoader struct {
	cfg domain.Config
	err error
}

func (f fakeConfigLoader) LoadConfig() (domain.Config, error) {
	return f.cfg, f.err
}

func snapshotWithOutlets() domain.Snapshot {
	return domain.Snapshot{
		Host: "pdu",
		Devices: []domain.Device{
			{
				ID:         "d1",
				Type:       "PowerDP",
				HasOutlets: true,
				Outlets:    []domain.Outlet{{Name: "a", Num: "1", Status: domain.OutletOn}},
			},
			{ID: "s1", Type: "TempSensor"},
		},
	}
}

var (
	_ ports.SnapshotSource = (*stubSource)(nil)
	_ ports.MetricsSink    = (*recordingSink)(nil)
	_ ports.ConfigLoader   = fakeConfigLoader{}
)
