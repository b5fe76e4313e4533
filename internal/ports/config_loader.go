package ports

import "github.com/aalvaropc/pdu-exporter/internal/domain"

// ConfigLoader produces the merged exporter configuration.
type ConfigLoader interface {
	LoadConfig() (domain.Config, error)
}
