package domain

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
)

// RunErrorKind is a high-level classification of transport errors.
type RunErrorKind string

const (
	RunErrorUnknown RunErrorKind = "unknown"
	RunErrorTimeout RunErrorKind = "timeout"
	RunErrorDNS     RunErrorKind = "dns"
	RunErrorConn    RunErrorKind = "connection"
	RunErrorHTTP    RunErrorKind = "http"
)

// RunError is a structured, printable view of a failed fetch.
type RunError struct {
	Kind    RunErrorKind `json:"kind"`
	Message string       `json:"message"`
}

func (e *RunError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return string(e.Kind) + ": " + e.Message
}

// NewRunError classifies err. It returns nil for a nil error.
func NewRunError(err error) *RunError {
	if err == nil {
		return nil
	}
	return &RunError{Kind: ClassifyRunError(err), Message: err.Error()}
}

func ClassifyRunError(err error) RunErrorKind {
	if err == nil {
		return RunErrorUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return RunErrorTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return RunErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return RunErrorDNS
	}

	if errors.Is(err, ErrBadStatus) {
		return RunErrorHTTP
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return RunErrorConn
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && strings.Contains(strings.ToLower(urlErr.Error()), "connection") {
		return RunErrorConn
	}

	return RunErrorUnknown
}
