// Package timestamps assigns synthetic timestamps to point sequences
// at a constant travel speed.
package timestamps

import (
	"fmt"
	"github.com/rotblauer/gpxreplay/common"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"math"
	"time"
)

// Synthesize returns a copy of tps timed as if traveled at speed m/s from start.
// Any existing timestamps are replaced. A zero start means the current UTC time.
//
// Consecutive identical positions get identical timestamps; the cleaner's
// duplicate-time pass absorbs them.
func Synthesize(tps trackpoint.TrackPoints, speed float64, start time.Time) (trackpoint.TrackPoints, error) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("%w: synthesis speed must be positive, got %v", params.ErrInvalidConfig, speed)
	}
	if start.IsZero() {
		start = time.Now()
	}
	start = start.UTC()

	out := tps.Clone()
	for i := range out {
		if i == 0 {
			out[i].Time = start
			continue
		}
		// Round each step up so the implied speed never exceeds speed.
		elapsed := math.Ceil(tps[i-1].DistanceTo(tps[i]) / speed * float64(time.Second))
		out[i].Time = out[i-1].Time.Add(time.Duration(elapsed))
	}
	return out, nil
}

// Plan describes how a track is retimed to fit a target duration.
type Plan struct {
	Distance float64
	Target   time.Duration

	// Speed is the speed that will be used, in m/s.
	Speed float64

	// Capped is set when the target would need a speed above the profile max.
	Capped bool

	// Floored is set when the target would need a speed below common.SpeedOfRetimingMin.
	Floored bool
}

// Duration is how long the retimed track actually takes.
func (p Plan) Duration() time.Duration {
	if p.Speed <= 0 {
		return 0
	}
	return time.Duration(p.Distance / p.Speed * float64(time.Second))
}

// PlanRetime picks a constant speed covering distance meters in about target,
// within [common.SpeedOfRetimingMin, maxSpeed].
func PlanRetime(distance float64, target time.Duration, maxSpeed float64) (Plan, error) {
	if target <= 0 {
		return Plan{}, fmt.Errorf("%w: target duration must be positive, got %v", params.ErrInvalidConfig, target)
	}
	p := Plan{Distance: distance, Target: target}
	p.Speed = distance / target.Seconds()
	if p.Speed < common.SpeedOfRetimingMin {
		p.Speed = common.SpeedOfRetimingMin
		p.Floored = true
	}
	if maxSpeed > 0 && p.Speed > maxSpeed {
		p.Speed = maxSpeed
		p.Capped = true
	}
	return p, nil
}

// Retime discards the timestamps of tps and synthesizes new ones so the
// sequence takes about target to travel, subject to PlanRetime's limits.
func Retime(tps trackpoint.TrackPoints, target time.Duration, maxSpeed float64, start time.Time) (trackpoint.TrackPoints, Plan, error) {
	plan, err := PlanRetime(tps.Distance(), target, maxSpeed)
	if err != nil {
		return nil, plan, err
	}
	out, err := Synthesize(tps, plan.Speed, start)
	return out, plan, err
}
