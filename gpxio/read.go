package gpxio

import (
	"encoding/xml"
	"errors"
	"fmt"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"io"
	"strings"
)

var ErrNotGPX = errors.New("not a GPX document")

// Decode reads a GPX 1.0 or 1.1 document.
func Decode(r io.Reader) (*Document, error) {
	var x xmlGPX
	dec := xml.NewDecoder(r)
	// Non UTF-8 declarations are read as is; GPX in the wild is almost always ASCII compatible.
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := dec.Decode(&x); err != nil {
		var se xml.UnmarshalError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %v", ErrNotGPX, err)
		}
		return nil, fmt.Errorf("decode gpx: %w", err)
	}
	return x.document()
}

// ReadFile reads a GPX file, gunzipping it if its name ends in .gz.
func ReadFile(path string) (*Document, error) {
	r, err := NewFileReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	doc, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (x *xmlGPX) document() (*Document, error) {
	d := &Document{
		Version:    x.Version,
		Creator:    x.Creator,
		Extensions: trackpoint.Extensions(x.Extensions),
	}

	for _, a := range x.Attrs {
		if a.Name.Space == "xmlns" && a.Name.Local != "xsi" {
			if d.Namespaces == nil {
				d.Namespaces = map[string]string{}
			}
			d.Namespaces[a.Name.Local] = a.Value
		}
	}

	md, err := x.metadata()
	if err != nil {
		return nil, err
	}
	d.Metadata = md

	if d.Waypoints, err = points(x.Waypoints); err != nil {
		return nil, fmt.Errorf("wpt: %w", err)
	}
	for i, rte := range x.Routes {
		pts, err := points(rte.Points)
		if err != nil {
			return nil, fmt.Errorf("rte %d: %w", i, err)
		}
		d.Routes = append(d.Routes, &trackpoint.Track{
			Name:        rte.Name,
			Description: rte.Desc,
			Extensions:  trackpoint.Extensions(rte.Extensions),
			Points:      pts,
		})
	}
	for i, trk := range x.Tracks {
		t := &trackpoint.Track{
			Name:        trk.Name,
			Description: trk.Desc,
			Extensions:  trackpoint.Extensions(trk.Extensions),
		}
		for j, seg := range trk.Segments {
			pts, err := points(seg.Points)
			if err != nil {
				return nil, fmt.Errorf("trk %d seg %d: %w", i, j, err)
			}
			t.Points = append(t.Points, pts...)
		}
		d.Tracks = append(d.Tracks, t)
	}
	return d, nil
}

func (x *xmlGPX) metadata() (*trackpoint.Metadata, error) {
	if m := x.Metadata; m != nil {
		md := &trackpoint.Metadata{
			Name:        m.Name,
			Description: m.Desc,
			Keywords:    m.Keywords,
			Extensions:  trackpoint.Extensions(m.Extensions),
		}
		if m.Author != nil {
			md.Author = m.Author.Name
		}
		for _, l := range m.Links {
			md.Links = append(md.Links, trackpoint.Link{Href: l.Href, Text: l.Text})
		}
		t, err := parseTime(m.Time)
		if err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
		md.Time = t
		return md, nil
	}

	// GPX 1.0
	if x.Name == "" && x.Desc == "" && x.Author == "" && x.URL == "" && x.Time == "" && x.Keywords == "" {
		return nil, nil
	}
	md := &trackpoint.Metadata{
		Name:        x.Name,
		Description: x.Desc,
		Author:      x.Author,
		Keywords:    x.Keywords,
	}
	if x.URL != "" {
		md.Links = []trackpoint.Link{{Href: x.URL, Text: x.URLName}}
	}
	t, err := parseTime(x.Time)
	if err != nil {
		return nil, err
	}
	md.Time = t
	return md, nil
}

func points(xps []xmlPoint) (trackpoint.TrackPoints, error) {
	out := make(trackpoint.TrackPoints, 0, len(xps))
	for i, xp := range xps {
		tp, err := xp.trackPoint()
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out = append(out, tp)
	}
	return out, nil
}

func (xp xmlPoint) trackPoint() (trackpoint.TrackPoint, error) {
	var tp trackpoint.TrackPoint
	var err error
	if tp.Lat, err = parseFloat("lat", xp.Lat); err != nil {
		return tp, err
	}
	if tp.Lon, err = parseFloat("lon", xp.Lon); err != nil {
		return tp, err
	}
	if !(tp.Lat >= -90 && tp.Lat <= 90) {
		return tp, fmt.Errorf("lat %v out of range", tp.Lat)
	}
	if !(tp.Lon >= -180 && tp.Lon <= 180) {
		return tp, fmt.Errorf("lon %v out of range", tp.Lon)
	}
	if xp.Ele != nil && strings.TrimSpace(*xp.Ele) != "" {
		ele, err := parseFloat("ele", *xp.Ele)
		if err != nil {
			return tp, err
		}
		tp.Elevation = &ele
	}
	if tp.Time, err = parseTime(xp.Time); err != nil {
		return tp, err
	}
	tp.Extensions = trackpoint.Extensions(xp.Extensions)
	return tp, nil
}
