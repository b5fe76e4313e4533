package pduxml

import "encoding/xml"

// xmlDocument matches any root element; only its devices child matters.
type xmlDocument struct {
	XMLName xml.Name
	Host    string      `xml:"host,attr"`
	Devices *xmlDevices `xml:"devices"`
}

type xmlDevices struct {
	Devices []xmlDevice `xml:"device"`
}

type xmlDevice struct {
	ID      string      `xml:"id,attr"`
	Type    string      `xml:"type,attr"`
	Name    string      `xml:"name,attr"`
	Fields  []xmlField  `xml:"field"`
	Outlets *xmlOutlets `xml:"outlets"`
}

type xmlField struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

type xmlOutlets struct {
	Outlets []xmlOutlet `xml:"outlet"`
}

type xmlOutlet struct {
	Name     *string `xml:"name,attr"`
	Num      *string `xml:"num,attr"`
	URL      *string `xml:"url,attr"`
	Amps     *string `xml:"amps,attr"`
	KWattHrs *string `xml:"kwatthrs,attr"`
	Watts    *string `xml:"watts,attr"`
	Status   *string `xml:"status,attr"`
}
