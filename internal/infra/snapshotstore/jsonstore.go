// Package snapshotstore persists decoded PDU snapshots as JSON files.
package snapshotstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/ports"
)

const indexFile = "index.jsonl"

type JSONStore struct {
	dir        string
	writeIndex bool
	now        func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a JSONL index next to the snapshots: <dir>/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(dir string, opts ...Option) *JSONStore {
	s := &JSONStore{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.SnapshotStore = (*JSONStore)(nil)

// SaveSnapshot writes <dir>/<UTC timestamp>_<host>.json and returns its id.
func (s *JSONStore) SaveSnapshot(snap domain.Snapshot) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "snapshotstore.mkdir",
			Kind: domain.KindExecution,
			Path: s.dir,
			Err:  err,
		}
	}

	ts := snap.FetchedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := snap
	toSave.FetchedAt = ts

	slug := slugify(snap.Host)
	if slug == "" {
		slug = "pdu"
	}

	id := s.freeID(fmt.Sprintf("%s_%s", ts.Format("20060102T150405Z"), slug))
	filename := id + ".json"
	path := filepath.Join(s.dir, filename)

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "snapshotstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "snapshotstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "snapshotstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(id, filename, toSave)
	}

	return id, nil
}

// freeID returns base, or base-N for the first N whose file does not exist
// yet, so snapshots taken within the same second are all kept.
func (s *JSONStore) freeID(base string) string {
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(s.dir, id+".json")); errors.Is(err, fs.ErrNotExist) {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *JSONStore) appendIndex(id, filename string, snap domain.Snapshot) error {
	type idx struct {
		ID        string    `json:"id"`
		File      string    `json:"file"`
		Host      string    `json:"host"`
		Devices   int       `json:"devices"`
		Outlets   int       `json:"outlets"`
		FetchedAt time.Time `json:"fetched_at"`
	}
	line, err := json.Marshal(idx{
		ID:        id,
		File:      filename,
		Host:      snap.Host,
		Devices:   len(snap.Devices),
		Outlets:   snap.OutletCount(),
		FetchedAt: snap.FetchedAt,
	})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
