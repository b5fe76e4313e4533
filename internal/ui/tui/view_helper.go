package tui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

// summaryFields are the device readings shown above the outlet table.
var summaryFields = []string{"Volts-A", "Amps-A", "RealPower-A", "Pwr-Factor%-A", "KWatt-hrs-A"}

func renderDeviceSummary(d domain.Device) string {
	var b strings.Builder

	title := d.Name
	if title == "" {
		title = d.ID
	}
	fmt.Fprintf(&b, "%s (%s, id=%s)\n", title, d.Type, d.ID)

	parts := make([]string, 0, len(summaryFields))
	for _, k := range summaryFields {
		if v, ok := d.Field(k); ok {
			parts = append(parts, k+"="+strings.TrimSpace(v))
		}
	}
	if len(parts) == 0 {
		b.WriteString("no readings")
	} else {
		b.WriteString(strings.Join(parts, "  "))
	}
	return b.String()
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func clampString(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
