package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OutletStatus is the switch state reported for an outlet.
type OutletStatus string

const (
	OutletOn  OutletStatus = "On"
	OutletOff OutletStatus = "Off"
)

// OutletStatuses lists every valid state in exposition order.
var OutletStatuses = []OutletStatus{OutletOn, OutletOff}

// ParseOutletStatus accepts the exact strings sent by the PDU.
func ParseOutletStatus(s string) (OutletStatus, error) {
	switch OutletStatus(s) {
	case OutletOn, OutletOff:
		return OutletStatus(s), nil
	default:
		return "", fmt.Errorf("unknown outlet status %q", s)
	}
}

// Snapshot is one decoded data document fetched from a PDU.
type Snapshot struct {
	Host      string    `json:"host,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	Devices   []Device  `json:"devices"`

	// Warnings lists entries dropped while mapping the document (bad outlets).
	Warnings []string `json:"warnings,omitempty"`
}

// Device is a unit reported by the PDU (the PDU itself, or attached sensors).
type Device struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`

	Fields []Field `json:"fields"`

	// HasOutlets is false when the device carries no outlets element at all.
	HasOutlets bool     `json:"has_outlets"`
	Outlets    []Outlet `json:"outlets"`
}

// Field looks up a raw field value by key.
func (d Device) Field(key string) (string, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Exported reports whether the device contributes metrics: devices without
// outlets are skipped wholesale.
func (d Device) Exported() bool {
	return d.HasOutlets && len(d.Outlets) > 0
}

// Field is a raw key/value reading attached to a device.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Float parses the value as a float64.
func (f Field) Float() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", f.Key, err)
	}
	return v, nil
}

// Outlet is a single switched/metered socket.
type Outlet struct {
	Name string `json:"name"`
	Num  string `json:"num"`
	URL  string `json:"url"`

	Amps     float64      `json:"amps"`
	KWattHrs float64      `json:"kwatthrs"`
	Watts    float64      `json:"watts"`
	Status   OutletStatus `json:"status"`
}

// OutletCount returns the total number of outlets across exported devices.
func (s Snapshot) OutletCount() int {
	n := 0
	for _, d := range s.Devices {
		if d.Exported() {
			n += len(d.Outlets)
		}
	}
	return n
}
