package common

import (
	"errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"math"
	"time"
)

// EarthRadius is the mean Earth radius in meters.
// All distances in this module use it, so that speed filtering,
// timestamp synthesis, and resampling agree with each other.
// Note that orb.EarthRadius is the equatorial radius (6378137), which is why
// distance is not delegated to orb/geo.
const EarthRadius = 6371000.0

// ErrDegenerateInterval is returned by Speed when two points are
// some distance apart but no time elapsed between them.
var ErrDegenerateInterval = errors.New("degenerate interval: zero duration with nonzero distance")

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance in meters between two lat/lon pairs (degrees).
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a a hair past 1 for antipodal points.
	a = math.Min(1, a)
	return 2 * EarthRadius * math.Asin(math.Sqrt(a))
}

// Distance returns the haversine distance in meters between two orb points.
// Elevation is never considered.
func Distance(a, b orb.Point) float64 {
	return Haversine(a.Lat(), a.Lon(), b.Lat(), b.Lon())
}

// Bearing returns the initial bearing from a to b in degrees, [-180, 180].
func Bearing(a, b orb.Point) float64 {
	return geo.Bearing(a, b)
}

// Speed returns the implied speed in m/s for a move of distance meters over elapsed.
// A zero (or negative) elapsed with a nonzero distance yields +Inf and ErrDegenerateInterval;
// callers treat that as a spike.
func Speed(distance float64, elapsed time.Duration) (float64, error) {
	if elapsed <= 0 {
		if distance == 0 {
			return 0, nil
		}
		return math.Inf(1), ErrDegenerateInterval
	}
	return distance / elapsed.Seconds(), nil
}

// WrapLonDelta returns the shortest signed angular difference to - from, in degrees, [-180, 180].
func WrapLonDelta(from, to float64) float64 {
	d := to - from
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// NormalizeLon maps a longitude into [-180, 180].
func NormalizeLon(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	return math.Remainder(lon, 360)
}
