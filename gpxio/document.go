// Package gpxio reads and writes GPX 1.0 and 1.1 documents,
// and packages, combines, and previews the results.
package gpxio

import (
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"sort"
)

// Document is the content of one GPX file.
type Document struct {
	Version string
	Creator string

	// Namespaces maps extra XML namespace prefixes to their URIs,
	// e.g. "gpxtpx" for Garmin extensions.
	Namespaces map[string]string

	Metadata   *trackpoint.Metadata
	Waypoints  trackpoint.TrackPoints
	Routes     []*trackpoint.Track
	Tracks     []*trackpoint.Track
	Extensions trackpoint.Extensions
}

// Source names where Document.Track found its points.
type Source string

const (
	SourceTracks    Source = "tracks"
	SourceRoutes    Source = "routes"
	SourceWaypoints Source = "waypoints"
	SourceNone      Source = "none"
)

// Track flattens the document into one point sequence.
// All track segments are concatenated in file order. A document without
// track points falls back to its route points, then to its waypoints.
// The result carries the document metadata and the first track's name.
func (d *Document) Track() (*trackpoint.Track, Source) {
	out := &trackpoint.Track{Metadata: d.Metadata}
	source := SourceNone

	collect := func(tracks []*trackpoint.Track, src Source) {
		for _, t := range tracks {
			if out.Name == "" {
				out.Name = t.Name
				out.Description = t.Description
				out.Extensions = t.Extensions
			}
			out.Points = append(out.Points, t.Points...)
		}
		if len(out.Points) > 0 {
			source = src
		}
	}

	collect(d.Tracks, SourceTracks)
	if len(out.Points) == 0 {
		collect(d.Routes, SourceRoutes)
	}
	if len(out.Points) == 0 && len(d.Waypoints) > 0 {
		out.Points = d.Waypoints.Clone()
		source = SourceWaypoints
	}
	return out, source
}

// NewDocument returns a document holding tracks.
// File metadata is taken from the first track that has any.
func NewDocument(tracks ...*trackpoint.Track) *Document {
	d := &Document{Tracks: tracks}
	for _, t := range tracks {
		if t.Metadata != nil {
			d.Metadata = t.Metadata
			break
		}
	}
	return d
}

// PointCount counts track points across all tracks.
func (d *Document) PointCount() int {
	n := 0
	for _, t := range d.Tracks {
		n += len(t.Points)
	}
	return n
}

func (d *Document) namespacePrefixes() []string {
	prefixes := make([]string, 0, len(d.Namespaces))
	for prefix := range d.Namespaces {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}
