package ports

import (
	"context"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

// SnapshotSource fetches and decodes the current readings of a PDU.
type SnapshotSource interface {
	Fetch(ctx context.Context) (domain.Snapshot, error)
}
