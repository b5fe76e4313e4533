// Package pduxml decodes the data.xml document served by PDU web interfaces.
package pduxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

// Decode parses a data document read from r.
func Decode(r io.Reader) (domain.Snapshot, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var doc xmlDocument
	if err := dec.Decode(&doc); err != nil {
		return domain.Snapshot{}, &domain.OpError{
			Op:   "pduxml.decode",
			Kind: domain.KindDecode,
			Err:  err,
		}
	}
	if doc.Devices == nil {
		return domain.Snapshot{}, &domain.OpError{
			Op:   "pduxml.decode",
			Kind: domain.KindDecode,
			Err:  domain.ErrNoDevices,
		}
	}

	return mapDocument(doc), nil
}

// DecodeBytes is a convenience wrapper around Decode.
func DecodeBytes(b []byte) (domain.Snapshot, error) {
	return Decode(bytes.NewReader(b))
}

func mapDocument(doc xmlDocument) domain.Snapshot {
	snap := domain.Snapshot{
		Host:    doc.Host,
		Devices: make([]domain.Device, 0, len(doc.Devices.Devices)),
	}

	for _, xd := range doc.Devices.Devices {
		dev := domain.Device{
			ID:     xd.ID,
			Type:   xd.Type,
			Name:   xd.Name,
			Fields: make([]domain.Field, 0, len(xd.Fields)),
		}
		for _, f := range xd.Fields {
			dev.Fields = append(dev.Fields, domain.Field{Key: f.Key, Value: f.Value})
		}

		if xd.Outlets != nil {
			dev.HasOutlets = true
			dev.Outlets = make([]domain.Outlet, 0, len(xd.Outlets.Outlets))
			for i, xo := range xd.Outlets.Outlets {
				o, err := mapOutlet(xo)
				if err != nil {
					snap.Warnings = append(snap.Warnings,
						fmt.Sprintf("device %s outlet[%d]: %v", xd.ID, i, err))
					continue
				}
				dev.Outlets = append(dev.Outlets, o)
			}
		}

		snap.Devices = append(snap.Devices, dev)
	}

	return snap
}

func mapOutlet(xo xmlOutlet) (domain.Outlet, error) {
	var o domain.Outlet
	var err error

	if o.Name, err = requireAttr("name", xo.Name); err != nil {
		return o, err
	}
	if o.Num, err = requireAttr("num", xo.Num); err != nil {
		return o, err
	}
	if o.URL, err = requireAttr("url", xo.URL); err != nil {
		return o, err
	}
	if o.Amps, err = floatAttr("amps", xo.Amps); err != nil {
		return o, err
	}
	if o.KWattHrs, err = floatAttr("kwatthrs", xo.KWattHrs); err != nil {
		return o, err
	}
	if o.Watts, err = floatAttr("watts", xo.Watts); err != nil {
		return o, err
	}

	status, err := requireAttr("status", xo.Status)
	if err != nil {
		return o, err
	}
	// Validated by the metrics sink so that an unknown state only drops the status series.
	o.Status = domain.OutletStatus(status)

	return o, nil
}

func requireAttr(name string, v *string) (string, error) {
	if v == nil {
		return "", fmt.Errorf("missing attribute %s", name)
	}
	return *v, nil
}

func floatAttr(name string, v *string) (float64, error) {
	s, err := requireAttr(name, v)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	return f, nil
}
