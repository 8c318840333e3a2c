package pipeline

import (
	"fmt"
	"github.com/montanaflynn/stats"
	"github.com/rotblauer/gpxreplay/common"
	"github.com/rotblauer/gpxreplay/geo/cleaner"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"strconv"
	"time"
)

// Report summarizes what the pipeline did to one track.
type Report struct {
	Stage Stage

	InputPoints  int
	OutputPoints int

	// SizeEstimate is the approximate encoded GPX size of the output in bytes.
	SizeEstimate int

	TimestampsSynthesized bool
	Retimed               bool

	Cleaning cleaner.Stats
	Stats    TrackStats

	Warnings []string
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// TrackStats describes the output track. Speeds in m/s, distances in meters.
type TrackStats struct {
	Distance    float64
	Duration    time.Duration
	SpeedMean   float64
	SpeedMedian float64
	SpeedMax    float64
	StepMean    float64
}

func statsMustFloat(fn func() (float64, error), def float64) float64 {
	out, err := fn()
	if err != nil {
		return def
	}
	return out
}

// ComputeStats measures speeds and step lengths between consecutive points.
func ComputeStats(tps trackpoint.TrackPoints) TrackStats {
	ts := TrackStats{Duration: tps.Duration()}
	if len(tps) < 2 {
		return ts
	}
	speeds := make([]float64, 0, len(tps)-1)
	steps := make([]float64, 0, len(tps)-1)
	for i := 1; i < len(tps); i++ {
		d := tps[i-1].DistanceTo(tps[i])
		ts.Distance += d
		steps = append(steps, d)
		if s, err := common.Speed(d, tps[i].Time.Sub(tps[i-1].Time)); err == nil {
			speeds = append(speeds, s)
		}
	}
	speedData := stats.Float64Data(speeds)
	ts.SpeedMean = common.DecimalToFixed(statsMustFloat(speedData.Mean, 0), 2)
	ts.SpeedMedian = common.DecimalToFixed(statsMustFloat(speedData.Median, 0), 2)
	ts.SpeedMax = common.DecimalToFixed(statsMustFloat(speedData.Max, 0), 2)
	ts.StepMean = common.DecimalToFixed(statsMustFloat(stats.Float64Data(steps).Mean, 0), 2)
	return ts
}

// Fixed overhead of a GPX 1.1 document with one track and one segment.
const gpxEnvelopeBytes = 340

// EstimateSize approximates the size of tps encoded as a GPX document.
func EstimateSize(tps trackpoint.TrackPoints) int {
	n := gpxEnvelopeBytes
	for _, tp := range tps {
		n += len(`<trkpt lat="" lon=""></trkpt>`) + 7 // indentation and newlines
		n += len(strconv.FormatFloat(tp.Lat, 'f', -1, 64))
		n += len(strconv.FormatFloat(tp.Lon, 'f', -1, 64))
		if tp.HasElevation() {
			n += len("<ele></ele>") + len(strconv.FormatFloat(*tp.Elevation, 'f', -1, 64))
		}
		if tp.HasTime() {
			n += len("<time></time>") + len(tp.Time.UTC().Format(time.RFC3339Nano))
		}
		if tp.Extensions != nil {
			n += len("<extensions></extensions>") + len(tp.Extensions)
		}
	}
	return n
}
