// Package shape prepares a cleaned track for output:
// coordinate rounding and removal of optional fields.
package shape

import (
	"github.com/rotblauer/gpxreplay/common"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
)

type Options struct {
	Precision      int
	KeepElevation  bool
	KeepExtensions bool
	KeepMetadata   bool
}

// RoundPoints rounds lat/lon to precision decimal places, half away from zero.
// Elevation is left alone.
func RoundPoints(tps trackpoint.TrackPoints, precision int) trackpoint.TrackPoints {
	out := tps.Clone()
	for i := range out {
		out[i].Lat = common.DecimalToFixed(out[i].Lat, precision)
		out[i].Lon = common.DecimalToFixed(out[i].Lon, precision)
	}
	return out
}

// Shape returns a copy of t rounded and stripped according to opts.
// t is not modified.
func Shape(t *trackpoint.Track, opts Options) *trackpoint.Track {
	out := t.Clone()
	out.Points = RoundPoints(out.Points, opts.Precision)
	for i := range out.Points {
		if !opts.KeepElevation {
			out.Points[i].Elevation = nil
		}
		if !opts.KeepExtensions {
			out.Points[i].Extensions = nil
		}
	}
	if !opts.KeepExtensions {
		out.Extensions = nil
		if out.Metadata != nil {
			out.Metadata.Extensions = nil
		}
	}
	if !opts.KeepMetadata {
		out.Metadata = nil
	}
	return out
}
