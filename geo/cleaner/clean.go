package cleaner

import (
	"github.com/rotblauer/gpxreplay/params"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"sort"
)

// Stats counts what each cleaning step removed.
type Stats struct {
	InvalidCoordinates int
	Untimestamped      int
	DuplicateTimes     int
	TooClose           int
	Spikes             int
}

func (s Stats) Removed() int {
	return s.InvalidCoordinates + s.Untimestamped + s.DuplicateTimes + s.TooClose + s.Spikes
}

// DropInvalid returns the points whose coordinates are finite and in range,
// and how many were dropped.
func DropInvalid(tps trackpoint.TrackPoints) (trackpoint.TrackPoints, int) {
	out := make(trackpoint.TrackPoints, 0, len(tps))
	for _, tp := range tps {
		if tp.Valid() {
			out = append(out, tp)
		}
	}
	return out, len(tps) - len(out)
}

// SortByTime returns the points ordered by time, ties in original order.
func SortByTime(tps trackpoint.TrackPoints) trackpoint.TrackPoints {
	out := tps.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// Clean sorts, dedupes, and filters the points of a track.
// Points with invalid coordinates or without a timestamp are discarded. The result has strictly
// increasing timestamps and at least one point, otherwise
// trackpoint.ErrEmptyTrack is returned.
//
// The min-distance and max-speed filters run as two separate forward passes,
// in that order.
func Clean(tps trackpoint.TrackPoints, profile params.Profile) (trackpoint.TrackPoints, Stats, error) {
	stats := Stats{}

	tps, stats.InvalidCoordinates = DropInvalid(tps)
	timed := make(trackpoint.TrackPoints, 0, len(tps))
	for _, tp := range tps {
		if !tp.HasTime() {
			stats.Untimestamped++
			continue
		}
		timed = append(timed, tp)
	}
	if len(timed) == 0 {
		return nil, stats, trackpoint.ErrEmptyTrack
	}

	out := SortByTime(timed)
	out, stats.DuplicateTimes = FilterForward(out, DistinctTime)
	out, stats.TooClose = FilterForward(out, MinDistance(profile.MinDistance))
	out, stats.Spikes = FilterForward(out, MaxSpeed(profile.MaxSpeed))
	return out, stats, nil
}
