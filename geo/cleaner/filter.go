package cleaner

import (
	"github.com/rotblauer/gpxreplay/types/trackpoint"
)

// KeepFunc decides whether next survives, given the last point kept before it.
type KeepFunc func(last, next trackpoint.TrackPoint) bool

// FilterForward keeps the first point, then every point for which keep
// returns true measured against the last kept point.
// It is a single pass: a dropped point is never revisited.
func FilterForward(tps trackpoint.TrackPoints, keep KeepFunc) (out trackpoint.TrackPoints, dropped int) {
	if len(tps) == 0 {
		return trackpoint.TrackPoints{}, 0
	}
	out = make(trackpoint.TrackPoints, 0, len(tps))
	out = append(out, tps[0])
	last := tps[0]
	for _, tp := range tps[1:] {
		if !keep(last, tp) {
			dropped++
			continue
		}
		out = append(out, tp)
		last = tp
	}
	return out, dropped
}

// MinDistance keeps points at least minDistance meters from the last kept point.
func MinDistance(minDistance float64) KeepFunc {
	return func(last, next trackpoint.TrackPoint) bool {
		return last.DistanceTo(next) >= minDistance
	}
}

// MaxSpeed keeps points reachable from the last kept point at or below maxSpeed m/s.
// A zero-duration move with nonzero distance is a spike.
func MaxSpeed(maxSpeed float64) KeepFunc {
	return func(last, next trackpoint.TrackPoint) bool {
		speed, err := last.SpeedTo(next)
		if err != nil {
			return false
		}
		return speed <= maxSpeed
	}
}

// DistinctTime keeps points whose timestamp differs from the last kept point.
func DistinctTime(last, next trackpoint.TrackPoint) bool {
	return !next.Time.Equal(last.Time)
}
