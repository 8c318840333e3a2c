package gpxio

import (
	"fmt"
	"github.com/tkrajina/gpxgo/gpx"
	"io"
	"os"
	"time"
)

// Info summarizes a GPX file without running it through the pipeline.
type Info struct {
	Path      string
	Size      int64
	Version   string
	Creator   string
	Tracks    int
	Segments  int
	Routes    int
	Waypoints int

	// Points counts track and route points.
	Points int

	// Length2D is the horizontal length of all tracks in meters.
	Length2D float64

	// Duration spans the earliest to the latest timestamp, zero if there are none.
	Duration time.Duration

	Timestamped int
	Start, End  time.Time
}

func (i Info) HasTimestamps() bool {
	return i.Timestamped > 0
}

// Inspect parses the file at path with an independent GPX reader and summarizes it.
func Inspect(path string) (*Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	r, err := NewFileReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	info := &Info{
		Path:      path,
		Size:      st.Size(),
		Version:   g.Version,
		Creator:   g.Creator,
		Tracks:    len(g.Tracks),
		Routes:    len(g.Routes),
		Waypoints: len(g.Waypoints),
		Length2D:  g.Length2D(),
	}
	observe := func(p gpx.GPXPoint) {
		if p.Timestamp.IsZero() {
			return
		}
		info.Timestamped++
		if info.Start.IsZero() || p.Timestamp.Before(info.Start) {
			info.Start = p.Timestamp
		}
		if p.Timestamp.After(info.End) {
			info.End = p.Timestamp
		}
	}
	for _, trk := range g.Tracks {
		info.Segments += len(trk.Segments)
		for _, seg := range trk.Segments {
			info.Points += len(seg.Points)
			for _, p := range seg.Points {
				observe(p)
			}
		}
	}
	for _, rte := range g.Routes {
		info.Points += len(rte.Points)
		for _, p := range rte.Points {
			observe(p)
		}
	}
	for _, p := range g.Waypoints {
		observe(p)
	}
	if info.Timestamped > 0 {
		info.Duration = info.End.Sub(info.Start)
	}
	return info, nil
}
