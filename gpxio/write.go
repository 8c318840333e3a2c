package gpxio

import (
	"encoding/xml"
	"fmt"
	"github.com/paulmach/orb"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"io"
)

const (
	Version10 = "1.0"
	Version11 = "1.1"
)

type EncodeOptions struct {
	// Version is "1.0" or "1.1". Empty means 1.1.
	Version string

	// Creator defaults to params.GPXCreator.
	Creator string

	// Indent pretty prints the document.
	Indent bool
}

func (o EncodeOptions) withDefaults() (EncodeOptions, error) {
	if o.Version == "" {
		o.Version = Version11
	}
	if o.Version != Version10 && o.Version != Version11 {
		return o, fmt.Errorf("%w: unsupported GPX version %q", params.ErrInvalidConfig, o.Version)
	}
	if o.Creator == "" {
		o.Creator = params.GPXCreator
	}
	return o, nil
}

func (o EncodeOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// Encode writes d as GPX. Each track is written with a single segment.
// GPX 1.0 has no extensions element, so extensions are only written for 1.1.
// Bounds are computed from the track points and written along with metadata.
func Encode(w io.Writer, d *Document, opts EncodeOptions) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}
	x := d.xml(opts.Version)
	x.Creator = opts.Creator

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	if opts.Indent {
		enc.Indent("", "  ")
	}
	if err := enc.Encode(x); err != nil {
		return fmt.Errorf("encode gpx: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// WriteFile encodes d to path atomically and returns the number of bytes written.
func WriteFile(path string, d *Document, opts EncodeOptions) (int64, error) {
	fw, err := NewFileWriter(path, nil)
	if err != nil {
		return 0, err
	}
	if err := Encode(fw, d, opts); err != nil {
		fw.Abort()
		return 0, err
	}
	if err := fw.Close(); err != nil {
		return 0, err
	}
	return fw.Written(), nil
}

func (d *Document) bound() (orb.Bound, bool) {
	mp := orb.MultiPoint{}
	for _, t := range d.Tracks {
		mp = append(mp, t.Points.LineString()...)
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}
	return mp.Bound(), true
}

func (d *Document) xml(version string) *xmlGPX {
	v11 := version == Version11
	ns, schema := NamespaceGPX11, schemaGPX11
	if !v11 {
		ns, schema = NamespaceGPX10, schemaGPX10
	}
	x := &xmlGPX{
		Version: version,
		Attrs: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: ns},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: namespaceXSI},
			{Name: xml.Name{Local: "xsi:schemaLocation"}, Value: schema},
		},
	}
	for _, prefix := range d.namespacePrefixes() {
		x.Attrs = append(x.Attrs, xml.Attr{Name: xml.Name{Local: "xmlns:" + prefix}, Value: d.Namespaces[prefix]})
	}

	if md := d.Metadata; md != nil {
		var bounds *xmlBounds
		if b, ok := d.bound(); ok {
			bounds = &xmlBounds{
				MinLat: formatFloat(b.Min.Lat()),
				MinLon: formatFloat(b.Min.Lon()),
				MaxLat: formatFloat(b.Max.Lat()),
				MaxLon: formatFloat(b.Max.Lon()),
			}
		}
		if v11 {
			m := &xmlMetadata{
				Name:       md.Name,
				Desc:       md.Description,
				Time:       formatTime(md.Time),
				Keywords:   md.Keywords,
				Bounds:     bounds,
				Extensions: rawXML(md.Extensions),
			}
			if md.Author != "" {
				m.Author = &xmlPerson{Name: md.Author}
			}
			for _, l := range md.Links {
				m.Links = append(m.Links, xmlLink{Href: l.Href, Text: l.Text})
			}
			x.Metadata = m
		} else {
			x.Name = md.Name
			x.Desc = md.Description
			x.Author = md.Author
			x.Time = formatTime(md.Time)
			x.Keywords = md.Keywords
			x.Bounds = bounds
			if len(md.Links) > 0 {
				x.URL, x.URLName = md.Links[0].Href, md.Links[0].Text
			}
		}
	}

	x.Waypoints = xmlPoints(d.Waypoints, v11)
	for _, r := range d.Routes {
		xr := xmlRoute{Name: r.Name, Desc: r.Description, Points: xmlPoints(r.Points, v11)}
		if v11 {
			xr.Extensions = rawXML(r.Extensions)
		}
		x.Routes = append(x.Routes, xr)
	}
	for _, t := range d.Tracks {
		xt := xmlTrack{
			Name:     t.Name,
			Desc:     t.Description,
			Segments: []xmlSegment{{Points: xmlPoints(t.Points, v11)}},
		}
		if v11 {
			xt.Extensions = rawXML(t.Extensions)
		}
		x.Tracks = append(x.Tracks, xt)
	}
	if v11 {
		x.Extensions = rawXML(d.Extensions)
	}
	return x
}

func xmlPoints(tps trackpoint.TrackPoints, extensions bool) []xmlPoint {
	if len(tps) == 0 {
		return nil
	}
	out := make([]xmlPoint, len(tps))
	for i, tp := range tps {
		out[i] = xmlPoint{
			Lat:  formatFloat(tp.Lat),
			Lon:  formatFloat(tp.Lon),
			Time: formatTime(tp.Time),
		}
		if tp.Elevation != nil {
			ele := formatFloat(*tp.Elevation)
			out[i].Ele = &ele
		}
		if extensions {
			out[i].Extensions = rawXML(tp.Extensions)
		}
	}
	return out
}
