package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

type Config struct {
	// Total timeout for the entire request (includes redirects, reading body, etc).
	// A context deadline can still override this.
	Timeout time.Duration

	// Transport / dial timeouts.
	DialTimeout     time.Duration
	KeepAlive       time.Duration
	TLSHandshake    time.Duration
	ResponseHeader  time.Duration
	IdleConnTimeout time.Duration

	// A PDU is a single embedded host; a couple of idle connections is plenty.
	MaxIdleConnsPerHost int

	// Embedded web servers commonly present self-signed certificates.
	InsecureSkipVerify bool
}

func DefaultConfig() Config {
	return Config{
		Timeout:             5 * time.Second,
		DialTimeout:         3 * time.Second,
		KeepAlive:           30 * time.Second,
		TLSHandshake:        5 * time.Second,
		ResponseHeader:      5 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 2,
	}
}

// ForTimeout derives a config whose dial and header timeouts never exceed
// the overall request timeout.
func ForTimeout(timeout time.Duration) Config {
	cfg := DefaultConfig()
	if timeout <= 0 {
		return cfg
	}
	cfg.Timeout = timeout
	cfg.DialTimeout = min(cfg.DialTimeout, timeout)
	cfg.TLSHandshake = min(cfg.TLSHandshake, timeout)
	cfg.ResponseHeader = min(cfg.ResponseHeader, timeout)
	return cfg
}

func New(cfg Config) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	tr := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		MaxIdleConns:        cfg.MaxIdleConnsPerHost,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,

		TLSHandshakeTimeout:   cfg.TLSHandshake,
		ResponseHeaderTimeout: cfg.ResponseHeader,
	}
	if cfg.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed PDU certificates
	}

	return &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}
}
