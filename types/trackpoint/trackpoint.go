package trackpoint

import (
	"errors"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/paulmach/orb"
	"github.com/rotblauer/gpxreplay/common"
	"time"
)

var ErrEmptyTrack = errors.New("no valid timestamped points")
var ErrNoTimestampedPoints = errors.New("no timestamps, skipped")

// Extensions holds opaque extension content exactly as read,
// e.g. the inner XML of a GPX <extensions> element. Nil means none.
type Extensions []byte

// TrackPoint is a single position fix.
// Equality and deduplication consider Lat, Lon, and Time only.
type TrackPoint struct {
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Elevation  *float64   `json:"ele,omitempty"` // in meters
	Time       time.Time  `json:"time"`          // zero if absent
	Extensions Extensions `json:"-"`
}

func (tp TrackPoint) Point() orb.Point {
	return orb.Point{tp.Lon, tp.Lat}
}

// Valid reports whether the coordinates are finite and in range.
func (tp TrackPoint) Valid() bool {
	return tp.Lat >= -90 && tp.Lat <= 90 && tp.Lon >= -180 && tp.Lon <= 180
}

func (tp TrackPoint) HasTime() bool {
	return !tp.Time.IsZero()
}

func (tp TrackPoint) HasElevation() bool {
	return tp.Elevation != nil
}

func (tp TrackPoint) Equal(other TrackPoint) bool {
	return tp.Lat == other.Lat && tp.Lon == other.Lon && tp.Time.Equal(other.Time)
}

// DistanceTo returns the haversine distance in meters.
func (tp TrackPoint) DistanceTo(other TrackPoint) float64 {
	return common.Distance(tp.Point(), other.Point())
}

// SpeedTo returns the implied speed in m/s from tp to other.
// See common.Speed for the zero-interval case.
func (tp TrackPoint) SpeedTo(other TrackPoint) (float64, error) {
	return common.Speed(tp.DistanceTo(other), other.Time.Sub(tp.Time))
}

// Float returns a pointer to a copy of f, for optional fields like Elevation.
func Float(f float64) *float64 {
	return &f
}

type TrackPoints []TrackPoint

func (tps TrackPoints) Clone() TrackPoints {
	if tps == nil {
		return nil
	}
	out := make(TrackPoints, len(tps))
	copy(out, tps)
	return out
}

func (tps TrackPoints) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(tps))
	for _, tp := range tps {
		ls = append(ls, tp.Point())
	}
	return ls
}

func (tps TrackPoints) Bound() orb.Bound {
	mp := make(orb.MultiPoint, 0, len(tps))
	for _, tp := range tps {
		mp = append(mp, tp.Point())
	}
	return mp.Bound()
}

// Distance is the summed haversine length in meters.
func (tps TrackPoints) Distance() float64 {
	d := 0.0
	for i := 1; i < len(tps); i++ {
		d += tps[i-1].DistanceTo(tps[i])
	}
	return d
}

// Duration is the time between the first and last points.
// It is zero unless both carry timestamps.
func (tps TrackPoints) Duration() time.Duration {
	if len(tps) < 2 || !tps[0].HasTime() || !tps[len(tps)-1].HasTime() {
		return 0
	}
	return tps[len(tps)-1].Time.Sub(tps[0].Time)
}

func (tps TrackPoints) CountTimestamped() int {
	n := 0
	for _, tp := range tps {
		if tp.HasTime() {
			n++
		}
	}
	return n
}

type pointKey struct {
	Lat, Lon float64
	UnixNano int64
}

// Hash identifies a point sequence by lat, lon, and time.
// Elevation and extensions do not contribute.
func (tps TrackPoints) Hash() (uint64, error) {
	keys := make([]pointKey, len(tps))
	for i, tp := range tps {
		keys[i] = pointKey{Lat: tp.Lat, Lon: tp.Lon}
		if tp.HasTime() {
			keys[i].UnixNano = tp.Time.UnixNano()
		}
	}
	return hashstructure.Hash(keys, hashstructure.FormatV2, nil)
}
