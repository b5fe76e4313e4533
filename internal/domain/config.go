package domain

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the fully merged exporter configuration.
type Config struct {
	PDU     PDUConfig
	Polling PollingConfig
	Listen  ListenConfig
	Metrics MetricsConfig
	Log     LogConfig
}

type PDUConfig struct {
	Address        string
	Port           int
	Scheme         string
	Path           string
	RequestTimeout time.Duration
	// MaxDocumentBytes bounds the size of the fetched document.
	MaxDocumentBytes int64

	InsecureSkipVerify bool
}

type PollingConfig struct {
	Interval time.Duration
}

type ListenConfig struct {
	Address string
	Port    int
}

type MetricsConfig struct {
	DropStale bool
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// DefaultConfig mirrors the defaults the exporter has always shipped with.
func DefaultConfig() Config {
	return Config{
		PDU: PDUConfig{
			Port:             80,
			Scheme:           "http",
			Path:             "/data.xml",
			RequestTimeout:   5 * time.Second,
			MaxDocumentBytes: 4 << 20,
		},
		Polling: PollingConfig{Interval: 5 * time.Second},
		Listen:  ListenConfig{Port: 9100},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DataURL is the document URL polled on the PDU.
func (c PDUConfig) DataURL() string {
	host := net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
	return c.Scheme + "://" + host + c.Path
}

// ListenAddr is the host:port the metrics server binds to.
func (c ListenConfig) ListenAddr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// Validate checks the merged configuration without any network I/O.
func (c Config) Validate() error {
	if strings.TrimSpace(c.PDU.Address) == "" {
		return invalidConfig("pdu.address", "address is required (set PDU_ADDRESS)")
	}
	if err := validPort("pdu.port", c.PDU.Port); err != nil {
		return err
	}
	switch c.PDU.Scheme {
	case "http", "https":
	default:
		return invalidConfig("pdu.scheme", fmt.Sprintf("unsupported scheme %q (expected http|https)", c.PDU.Scheme))
	}
	if !strings.HasPrefix(c.PDU.Path, "/") {
		return invalidConfig("pdu.path", "path must start with /")
	}
	if c.PDU.RequestTimeout <= 0 {
		return invalidConfig("pdu.request_timeout_seconds", "timeout must be positive")
	}
	if c.PDU.MaxDocumentBytes <= 0 {
		return invalidConfig("pdu.max_document_bytes", "size limit must be positive")
	}
	if c.Polling.Interval <= 0 {
		return invalidConfig("polling_interval_seconds", "interval must be positive")
	}
	if err := validPort("listen.port", c.Listen.Port); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalidConfig("log.level", fmt.Sprintf("unsupported level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalidConfig("log.format", fmt.Sprintf("unsupported format %q (expected text|json)", c.Log.Format))
	}
	return nil
}

func validPort(field string, p int) error {
	if p < 1 || p > 65535 {
		return invalidConfig(field, fmt.Sprintf("port %d out of range", p))
	}
	return nil
}

func invalidConfig(field, msg string) error {
	return &OpError{
		Op:   "config.validate",
		Kind: KindInvalidConfig,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, ErrInvalidConfig),
	}
}
