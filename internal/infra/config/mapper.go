package config

import (
	"fmt"
	"time"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

// MapFile applies the values present in the file on top of base.
func MapFile(path string, y YAMLConfig, base domain.Config) (domain.Config, error) {
	cfg := base

	setString(&cfg.PDU.Address, y.PDU.Address)
	setInt(&cfg.PDU.Port, y.PDU.Port)
	setString(&cfg.PDU.Scheme, y.PDU.Scheme)
	setString(&cfg.PDU.Path, y.PDU.Path)
	if y.PDU.RequestTimeoutSeconds != nil {
		if *y.PDU.RequestTimeoutSeconds <= 0 {
			return base, invalidField(path, "pdu.request_timeout_seconds", "must be positive")
		}
		cfg.PDU.RequestTimeout = seconds(*y.PDU.RequestTimeoutSeconds)
	}
	if y.PDU.MaxDocumentBytes != nil {
		if *y.PDU.MaxDocumentBytes <= 0 {
			return base, invalidField(path, "pdu.max_document_bytes", "must be positive")
		}
		cfg.PDU.MaxDocumentBytes = *y.PDU.MaxDocumentBytes
	}
	setBool(&cfg.PDU.InsecureSkipVerify, y.PDU.InsecureSkipVerify)

	if y.PollingIntervalSeconds != nil {
		if *y.PollingIntervalSeconds <= 0 {
			return base, invalidField(path, "polling_interval_seconds", "must be positive")
		}
		cfg.Polling.Interval = seconds(*y.PollingIntervalSeconds)
	}

	setString(&cfg.Listen.Address, y.Listen.Address)
	setInt(&cfg.Listen.Port, y.Listen.Port)
	setBool(&cfg.Metrics.DropStale, y.Metrics.DropStale)

	setString(&cfg.Log.Level, y.Log.Level)
	setString(&cfg.Log.Format, y.Log.Format)
	setString(&cfg.Log.File, y.Log.File)

	return cfg, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
