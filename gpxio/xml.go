package gpxio

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	NamespaceGPX10 = "http://www.topografix.com/GPX/1/0"
	NamespaceGPX11 = "http://www.topografix.com/GPX/1/1"
	namespaceXSI   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaGPX10    = NamespaceGPX10 + " " + NamespaceGPX10 + "/gpx.xsd"
	schemaGPX11    = NamespaceGPX11 + " " + NamespaceGPX11 + "/gpx.xsd"
)

// rawXML keeps the inner XML of an element verbatim.
type rawXML []byte

func (r rawXML) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if len(r) == 0 {
		return nil
	}
	type inner struct {
		Content string `xml:",innerxml"`
	}
	return e.EncodeElement(inner{Content: string(r)}, start)
}

func (r *rawXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type inner struct {
		Content string `xml:",innerxml"`
	}
	var data inner
	if err := d.DecodeElement(&data, &start); err != nil {
		return err
	}
	if strings.TrimSpace(data.Content) == "" {
		*r = nil
		return nil
	}
	*r = append((*r)[:0], data.Content...)
	return nil
}

// xmlGPX covers both GPX 1.0 and 1.1.
// 1.0 carries file metadata directly under <gpx>, 1.1 under <metadata>.
// Field order follows the element order both schemas require.
type xmlGPX struct {
	XMLName xml.Name   `xml:"gpx"`
	Version string     `xml:"version,attr"`
	Creator string     `xml:"creator,attr"`
	Attrs   []xml.Attr `xml:",any,attr"`

	Metadata *xmlMetadata `xml:"metadata"`

	Name     string     `xml:"name,omitempty"`
	Desc     string     `xml:"desc,omitempty"`
	Author   string     `xml:"author,omitempty"`
	URL      string     `xml:"url,omitempty"`
	URLName  string     `xml:"urlname,omitempty"`
	Time     string     `xml:"time,omitempty"`
	Keywords string     `xml:"keywords,omitempty"`
	Bounds   *xmlBounds `xml:"bounds"`

	Waypoints []xmlPoint `xml:"wpt"`
	Routes    []xmlRoute `xml:"rte"`
	Tracks    []xmlTrack `xml:"trk"`

	Extensions rawXML `xml:"extensions,omitempty"`
}

type xmlMetadata struct {
	Name       string     `xml:"name,omitempty"`
	Desc       string     `xml:"desc,omitempty"`
	Author     *xmlPerson `xml:"author"`
	Links      []xmlLink  `xml:"link"`
	Time       string     `xml:"time,omitempty"`
	Keywords   string     `xml:"keywords,omitempty"`
	Bounds     *xmlBounds `xml:"bounds"`
	Extensions rawXML     `xml:"extensions,omitempty"`
}

type xmlPerson struct {
	Name string `xml:"name,omitempty"`
}

type xmlLink struct {
	Href string `xml:"href,attr"`
	Text string `xml:"text,omitempty"`
}

type xmlBounds struct {
	MinLat string `xml:"minlat,attr"`
	MinLon string `xml:"minlon,attr"`
	MaxLat string `xml:"maxlat,attr"`
	MaxLon string `xml:"maxlon,attr"`
}

// xmlPoint is a wpt, rtept, or trkpt.
// Coordinates are strings so they are written in plain decimal notation.
type xmlPoint struct {
	Lat        string  `xml:"lat,attr"`
	Lon        string  `xml:"lon,attr"`
	Ele        *string `xml:"ele"`
	Time       string  `xml:"time,omitempty"`
	Name       string  `xml:"name,omitempty"`
	Extensions rawXML  `xml:"extensions,omitempty"`
}

type xmlRoute struct {
	Name       string     `xml:"name,omitempty"`
	Desc       string     `xml:"desc,omitempty"`
	Extensions rawXML     `xml:"extensions,omitempty"`
	Points     []xmlPoint `xml:"rtept"`
}

type xmlTrack struct {
	Name       string       `xml:"name,omitempty"`
	Desc       string       `xml:"desc,omitempty"`
	Extensions rawXML       `xml:"extensions,omitempty"`
	Segments   []xmlSegment `xml:"trkseg"`
}

type xmlSegment struct {
	Points []xmlPoint `xml:"trkpt"`
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return f, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timeLayouts are tried in order. Times without a zone are taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parse time %q: %w", s, firstErr)
}
