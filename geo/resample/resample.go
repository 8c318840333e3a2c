package resample

import (
	"github.com/rotblauer/gpxreplay/common"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"time"
)

// Count returns how many points Resample produces for a span of d at step.
func Count(d, step time.Duration) int {
	if step <= 0 || d < 0 {
		return 0
	}
	return int(d/step) + 1
}

// Resample returns points at t0, t0+step, t0+2*step, ... up to but never past
// the last timestamp of tps, linearly interpolated between the bracketing points.
// tps must be sorted with strictly increasing timestamps.
//
// It returns tps unchanged and false when there are fewer than two points
// or step is not positive.
func Resample(tps trackpoint.TrackPoints, step time.Duration) (trackpoint.TrackPoints, bool) {
	if len(tps) < 2 || step <= 0 {
		return tps, false
	}

	first, last := tps[0].Time, tps[len(tps)-1].Time
	n := Count(last.Sub(first), step)
	out := make(trackpoint.TrackPoints, 0, n)

	i := 0
	for k := 0; k < n; k++ {
		t := first.Add(time.Duration(k) * step)
		for i < len(tps)-2 && !tps[i+1].Time.After(t) {
			i++
		}
		out = append(out, Interpolate(tps[i], tps[i+1], t))
	}
	return out, true
}

// Interpolate returns the point at time t on the segment a-b.
// Times outside [a, b] clamp to the nearer end, and a time equal to either end
// returns that point as is. Longitude follows the shorter way around the globe.
// Elevation is interpolated only when both ends have one.
func Interpolate(a, b trackpoint.TrackPoint, t time.Time) trackpoint.TrackPoint {
	if !t.After(a.Time) {
		return a
	}
	if !t.Before(b.Time) {
		return b
	}
	frac := float64(t.Sub(a.Time)) / float64(b.Time.Sub(a.Time))

	tp := trackpoint.TrackPoint{
		Lat:  a.Lat + frac*(b.Lat-a.Lat),
		Lon:  common.NormalizeLon(a.Lon + frac*common.WrapLonDelta(a.Lon, b.Lon)),
		Time: t,
	}
	if a.HasElevation() && b.HasElevation() {
		tp.Elevation = trackpoint.Float(*a.Elevation + frac*(*b.Elevation-*a.Elevation))
	}
	return tp
}
