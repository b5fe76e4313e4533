// Package pduclient fetches snapshots from a PDU over HTTP.
package pduclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/infra/httpclient"
	"github.com/aalvaropc/pdu-exporter/internal/infra/pduxml"
	"github.com/aalvaropc/pdu-exporter/internal/ports"
)

type Source struct {
	url  string
	exec *httpclient.Executor
	log  *slog.Logger
	now  func() time.Time
}

type Option func(*Source)

// WithExecutor replaces the HTTP executor (tests point it at httptest servers).
func WithExecutor(e *httpclient.Executor) Option {
	return func(s *Source) { s.exec = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

// New builds a source for the document URL derived from cfg.
func New(cfg domain.PDUConfig, opts ...Option) *Source {
	hc := httpclient.ForTimeout(cfg.RequestTimeout)
	hc.InsecureSkipVerify = cfg.InsecureSkipVerify

	s := &Source{
		url: cfg.DataURL(),
		exec: httpclient.NewExecutor(
			httpclient.WithClient(httpclient.New(hc)),
			httpclient.WithTimeout(cfg.RequestTimeout),
			httpclient.WithMaxBodyBytes(cfg.MaxDocumentBytes),
		),
		log: slog.Default(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.SnapshotSource = (*Source)(nil)

func (s *Source) URL() string { return s.url }

// Fetch retrieves and decodes the document. Transport failures and non-2xx
// responses are KindFetch errors; document problems are KindDecode.
func (s *Source) Fetch(ctx context.Context) (domain.Snapshot, error) {
	req, err := httpclient.BuildRequest(ctx, s.url)
	if err != nil {
		return domain.Snapshot{}, err
	}

	resp, err := s.exec.Do(ctx, req)
	if err != nil {
		return domain.Snapshot{}, &domain.OpError{
			Op:   "pduclient.fetch",
			Kind: domain.KindFetch,
			Path: s.url,
			Err:  err,
		}
	}
	if resp.Status < 200 || resp.Status > 299 {
		return domain.Snapshot{}, &domain.OpError{
			Op:   "pduclient.fetch",
			Kind: domain.KindFetch,
			Path: s.url,
			Err:  fmt.Errorf("%w: %d", domain.ErrBadStatus, resp.Status),
		}
	}
	if resp.Truncated {
		return domain.Snapshot{}, &domain.OpError{
			Op:   "pduclient.fetch",
			Kind: domain.KindDecode,
			Path: s.url,
			Err:  fmt.Errorf("response body exceeds %d bytes", len(resp.BodyBytes)),
		}
	}

	s.log.Debug("pdu.fetched", "url", s.url, "status", resp.Status, "bytes", len(resp.BodyBytes), "duration", resp.Duration)

	snap, err := pduxml.DecodeBytes(resp.BodyBytes)
	if err != nil {
		var oe *domain.OpError
		if errors.As(err, &oe) && oe.Path == "" {
			oe.Path = s.url
		}
		return domain.Snapshot{}, err
	}
	snap.FetchedAt = s.now().UTC()
	return snap, nil
}
