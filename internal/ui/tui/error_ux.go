package tui

import (
	"errors"
	"regexp"
	"strings"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

func userMessage(err error) string {
	if err == nil {
		return ""
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {
		case domain.KindFetch:
			if errors.Is(err, domain.ErrBadStatus) {
				return "PDU answered with an error status: " + lastSegment(err.Error())
			}
			switch domain.ClassifyRunError(err) {
			case domain.RunErrorTimeout:
				return "PDU did not answer in time"
			case domain.RunErrorDNS:
				return "PDU address does not resolve"
			case domain.RunErrorConn:
				return "Cannot connect to PDU"
			}
			return "Fetch failed (see logs)"

		case domain.KindDecode:
			if errors.Is(err, domain.ErrNoDevices) {
				return "Document has no devices"
			}
			if line := extractLine(err.Error()); line != "" {
				return "Malformed XML at line " + line
			}
			return "Malformed XML document"

		case domain.KindInvalidConfig:
			return "Invalid config: " + lastSegment(err.Error())

		default:
			return "Unexpected error (see logs)"
		}
	}

	if errors.Is(err, domain.ErrInvalidConfig) {
		return "Invalid config"
	}
	return "Unexpected error (see logs)"
}

func extractLine(s string) string {
	m := reLine.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}

// lastSegment keeps the part of a wrapped error message after the op prefix.
func lastSegment(s string) string {
	parts := strings.SplitN(s, ": ", 3)
	return strings.TrimSpace(parts[len(parts)-1])
}
