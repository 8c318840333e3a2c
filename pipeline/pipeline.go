// Package pipeline runs one track through timestamp resolution, cleaning,
// resampling, simplification, and output shaping.
package pipeline

import (
	"errors"
	"fmt"
	"github.com/rotblauer/gpxreplay/common"
	"github.com/rotblauer/gpxreplay/geo/cleaner"
	"github.com/rotblauer/gpxreplay/geo/resample"
	"github.com/rotblauer/gpxreplay/geo/shape"
	"github.com/rotblauer/gpxreplay/geo/simplify"
	"github.com/rotblauer/gpxreplay/geo/timestamps"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"log/slog"
	"time"
)

type Result struct {
	Track  *trackpoint.Track
	Report *Report
}

type Pipeline struct {
	config params.PipelineConfig
	logger *slog.Logger
}

// New validates config and returns a Pipeline for it.
func New(config params.PipelineConfig, logger *slog.Logger) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{config: config, logger: logger}, nil
}

// Run processes track with the default logger.
func Run(track *trackpoint.Track, config params.PipelineConfig) (*Result, error) {
	p, err := New(config, nil)
	if err != nil {
		return nil, err
	}
	return p.Run(track)
}

func (p *Pipeline) Config() params.PipelineConfig {
	return p.config
}

type run struct {
	stage  Stage
	report *Report
	logger *slog.Logger
}

func (r *run) advance(to Stage, points int) error {
	if !r.stage.CanTransition(to) {
		return fmt.Errorf("illegal stage transition %s -> %s", r.stage, to)
	}
	r.logger.Debug("Stage", "from", r.stage, "to", to, "points", points)
	r.stage = to
	r.report.Stage = to
	return nil
}

// skip moves to an abort state and returns cause.
func (r *run) skip(to Stage, cause error) error {
	if err := r.advance(to, 0); err != nil {
		return errors.Join(cause, err)
	}
	r.report.warnf("%v", cause)
	return cause
}

// Run processes one track. The input track is never modified.
//
// A track that cannot be processed returns trackpoint.ErrEmptyTrack or
// trackpoint.ErrNoTimestampedPoints, along with a Result whose Report
// explains the skip and whose Track is nil.
func (p *Pipeline) Run(track *trackpoint.Track) (*Result, error) {
	cfg := p.config
	report := &Report{Stage: StageLoaded}
	res := &Result{Report: report}
	r := &run{stage: StageLoaded, report: report, logger: p.logger}
	if track == nil {
		return res, r.skip(StageSkippedEmpty, trackpoint.ErrEmptyTrack)
	}
	r.logger = p.logger.With("track", track.Name)

	points := track.Points
	report.InputPoints = len(points)
	points, invalid := cleaner.DropInvalid(points)
	if invalid > 0 {
		report.warnf("dropped %d points with invalid coordinates", invalid)
	}
	if len(points) == 0 {
		report.Cleaning.InvalidCoordinates = invalid
		return res, r.skip(StageSkippedEmpty, trackpoint.ErrEmptyTrack)
	}

	timed := points.CountTimestamped()
	switch {
	case cfg.TargetDuration > 0:
		retimed, plan, err := timestamps.Retime(points, cfg.TargetDuration, cfg.Profile.MaxSpeed, cfg.SynthesisStart)
		if err != nil {
			return nil, err
		}
		if plan.Capped {
			report.warnf("target duration %v needs %.1f km/h, capped at %.1f km/h; takes %v",
				cfg.TargetDuration, common.KMH(plan.Distance/cfg.TargetDuration.Seconds()),
				common.KMH(plan.Speed), plan.Duration().Round(time.Second))
		}
		if plan.Floored {
			report.warnf("target duration %v is slower than %.0f km/h, raised to %.0f km/h; takes %v",
				cfg.TargetDuration, common.KMH(common.SpeedOfRetimingMin),
				common.KMH(plan.Speed), plan.Duration().Round(time.Second))
		}
		points = retimed
		report.TimestampsSynthesized = true
		report.Retimed = true
	case timed == 0:
		if !cfg.SynthesizeTimestamps {
			return res, r.skip(StageSkippedNoTimestamps, trackpoint.ErrNoTimestampedPoints)
		}
		synthesized, err := timestamps.Synthesize(points, cfg.Profile.AverageSpeed, cfg.SynthesisStart)
		if err != nil {
			return nil, err
		}
		points = synthesized
		report.TimestampsSynthesized = true
	case timed < len(points):
		report.warnf("dropped %d points without timestamps", len(points)-timed)
	}
	if err := r.advance(StageTimestampsResolved, len(points)); err != nil {
		return nil, err
	}

	cleaned, cleanStats, err := cleaner.Clean(points, cfg.Profile)
	cleanStats.InvalidCoordinates += invalid
	report.Cleaning = cleanStats
	if errors.Is(err, trackpoint.ErrEmptyTrack) {
		return res, r.skip(StageSkippedEmpty, err)
	} else if err != nil {
		return nil, err
	}
	points = cleaned
	if err := r.advance(StageFiltered, len(points)); err != nil {
		return nil, err
	}

	if cfg.Resample {
		resampled, ok := resample.Resample(points, cfg.IntervalDuration())
		if !ok {
			report.warnf("%d point(s), not resampled", len(points))
		}
		points = resampled
	}
	if err := r.advance(StageResampled, len(points)); err != nil {
		return nil, err
	}

	points = simplify.Simplify(points, cfg.SimplifyTolerance)
	if err := r.advance(StageSimplified, len(points)); err != nil {
		return nil, err
	}

	out := shape.Shape(track.WithPoints(points), shape.Options{
		Precision:      cfg.Precision,
		KeepElevation:  cfg.KeepElevation,
		KeepExtensions: cfg.KeepExtensions,
		KeepMetadata:   cfg.KeepMetadata,
	})
	if err := r.advance(StageShaped, len(out.Points)); err != nil {
		return nil, err
	}

	report.OutputPoints = len(out.Points)
	report.SizeEstimate = EstimateSize(out.Points)
	report.Stats = ComputeStats(out.Points)
	res.Track = out
	if err := r.advance(StageEmitted, len(out.Points)); err != nil {
		return nil, err
	}
	return res, nil
}
