package simplify

import (
	"github.com/rotblauer/gpxreplay/common"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"math"
)

// metersPerDegree is the length of one degree of arc at EarthRadius.
const metersPerDegree = common.EarthRadius * math.Pi / 180

// DistanceToLine returns the distance in meters from p to the infinite line through a and b,
// in an equirectangular projection centered on the mean latitude of a and b.
// Longitude differences wrap, so segments crossing the antimeridian measure correctly.
// If a and b coincide it is the great-circle distance from p to a.
func DistanceToLine(p, a, b trackpoint.TrackPoint) float64 {
	kx := metersPerDegree * math.Cos((a.Lat+b.Lat)/2*math.Pi/180)
	ky := metersPerDegree

	bx, by := common.WrapLonDelta(a.Lon, b.Lon)*kx, (b.Lat-a.Lat)*ky
	px, py := common.WrapLonDelta(a.Lon, p.Lon)*kx, (p.Lat-a.Lat)*ky

	length := math.Hypot(bx, by)
	if length == 0 {
		return a.DistanceTo(p)
	}
	return math.Abs(bx*py-by*px) / length
}

// Indexes returns the indexes of the points Douglas-Peucker keeps at tolerance meters.
// The first and last indexes are always kept.
// A non-positive tolerance or fewer than three points keeps everything.
func Indexes(tps trackpoint.TrackPoints, tolerance float64) []int {
	keep := make([]bool, len(tps))
	if tolerance <= 0 || len(tps) < 3 {
		for i := range keep {
			keep[i] = true
		}
	} else {
		keep[0], keep[len(tps)-1] = true, true
		douglasPeucker(tps, 0, len(tps)-1, tolerance, keep)
	}

	out := make([]int, 0, len(tps))
	for i, k := range keep {
		if k {
			out = append(out, i)
		}
	}
	return out
}

// douglasPeucker marks the points to keep strictly between first and last.
func douglasPeucker(tps trackpoint.TrackPoints, first, last int, tolerance float64, keep []bool) {
	if last-first < 2 {
		return
	}
	dmax, index := 0.0, -1
	for i := first + 1; i < last; i++ {
		// Strictly greater: ties go to the earliest point.
		if d := DistanceToLine(tps[i], tps[first], tps[last]); d > dmax {
			dmax, index = d, i
		}
	}
	if index < 0 || dmax <= tolerance {
		return
	}
	keep[index] = true
	douglasPeucker(tps, first, index, tolerance, keep)
	douglasPeucker(tps, index, last, tolerance, keep)
}

// Simplify returns the points kept by Douglas-Peucker at tolerance meters.
// Kept points are returned unchanged.
func Simplify(tps trackpoint.TrackPoints, tolerance float64) trackpoint.TrackPoints {
	idx := Indexes(tps, tolerance)
	out := make(trackpoint.TrackPoints, len(idx))
	for i, j := range idx {
		out[i] = tps[j]
	}
	return out
}
