// Package domain contains the core model for pdu-exporter: PDU snapshots,
// exporter configuration and the error taxonomy.
//
// The domain does not depend on XML decoding, the HTTP client or Prometheus.
// Infra adapters map into/from these types.
package domain
