package ports

import "github.com/aalvaropc/pdu-exporter/internal/domain"

// SnapshotStore persists fetched snapshots for later inspection.
type SnapshotStore interface {
	SaveSnapshot(s domain.Snapshot) (id string, err error)
}
