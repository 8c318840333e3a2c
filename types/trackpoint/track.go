package trackpoint

import "time"

type Link struct {
	Href string
	Text string
}

// Metadata is file-level descriptive data carried alongside a track.
// The pipeline never computes it, only keeps or drops it.
type Metadata struct {
	Name        string
	Description string
	Author      string
	Keywords    string
	Time        time.Time
	Links       []Link
	Extensions  Extensions
}

// Track is one continuous trace.
type Track struct {
	Name        string
	Description string
	Metadata    *Metadata
	Extensions  Extensions
	Points      TrackPoints
}

// Clone returns a copy of t that shares no point slice with it.
func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	out := *t
	out.Points = t.Points.Clone()
	if t.Metadata != nil {
		md := *t.Metadata
		out.Metadata = &md
	}
	return &out
}

// WithPoints returns a shallow copy of t carrying points.
func (t *Track) WithPoints(points TrackPoints) *Track {
	out := *t
	out.Points = points
	return &out
}
