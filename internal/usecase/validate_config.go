package usecase

import (
	"context"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/ports"
)

type ValidateConfig struct {
	loader ports.ConfigLoader
}

func NewValidateConfig(l ports.ConfigLoader) *ValidateConfig {
	return &ValidateConfig{loader: l}
}

// Execute loads and validates the configuration without any network I/O.
func (uc *ValidateConfig) Execute(ctx context.Context) (domain.Config, error) {
	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}

	cfg, err := uc.loader.LoadConfig()
	if err != nil {
		return domain.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
