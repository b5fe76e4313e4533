package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

func TestPoller_KeepsGoingAfterFailures(t *testing.T) {
	src := &stubSource{
		snaps: []domain.Snapshot{{}, snapshotWithOutlets()},
		errs:  []error{&domain.OpError{Kind: domain.KindFetch, Err: errors.New("refused")}},
	}
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []domain.Snapshot
	p := NewPoller(NewScrape(src, sink), time.Millisecond, WithOnSnapshot(func(s domain.Snapshot) {
		got = append(got, s)
		if len(got) == 2 {
			cancel()
		}
	}))

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}

	if src.Calls() != 3 {
		t.Fatalf("expected 3 fetches (1 failed, 2 ok), got %d", src.Calls())
	}
	if sink.observed[0].stage != domain.StageFetch {
		t.Fatalf("expected first pass to fail at fetch, got %q", sink.observed[0].stage)
	}
}

func TestPoller_WaitIsInterruptible(t *testing.T) {
	src := &stubSource{snaps: []domain.Snapshot{snapshotWithOutlets()}}

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(NewScrape(src, nil), time.Hour, WithOnSnapshot(func(domain.Snapshot) { cancel() }))

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller stuck waiting for the interval")
	}
	if src.Calls() != 1 {
		t.Fatalf("expected exactly one fetch, got %d", src.Calls())
	}
}

func TestPoller_StopsBeforeFirstPassWhenCancelled(t *testing.T) {
	src := &stubSource{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewPoller(NewScrape(src, nil), time.Millisecond).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Calls() != 0 {
		t.Fatalf("expected no fetch, got %d", src.Calls())
	}
}
