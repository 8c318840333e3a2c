package pipeline

import (
	"github.com/rotblauer/gpxreplay/common"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"math"
	"os"
	"testing"
	"time"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	reset := common.SlogResetLevel(slog.LevelWarn + 1)
	code := m.Run()
	reset()
	os.Exit(code)
}

func at(sec float64) time.Time {
	return t0.Add(time.Duration(sec * float64(time.Second)))
}

// drive is a 10 m/s eastward drive along the equator with a spike and a duplicate.
func drive() *trackpoint.Track {
	perSecond := 10 / (common.EarthRadius * math.Pi / 180)
	tps := trackpoint.TrackPoints{}
	for i := 0; i < 60; i++ {
		tps = append(tps, trackpoint.TrackPoint{
			Lat:        0,
			Lon:        float64(i) * perSecond,
			Elevation:  trackpoint.Float(10),
			Time:       at(float64(i)),
			Extensions: trackpoint.Extensions("<speed>10</speed>"),
		})
	}
	tps = append(tps,
		trackpoint.TrackPoint{Lat: 1, Lon: 1, Time: at(30.5)},            // spike
		trackpoint.TrackPoint{Lat: 0, Lon: 20 * perSecond, Time: at(20)}, // duplicate time
	)
	return &trackpoint.Track{
		Name:     "drive",
		Metadata: &trackpoint.Metadata{Name: "drive", Author: "someone"},
		Points:   tps,
	}
}

func TestRun_Defaults(t *testing.T) {
	in := drive()
	inLen := len(in.Points)
	cfg := params.DefaultPipelineConfig(params.ProfileCar)
	res, err := Run(in, cfg)
	require.NoError(t, err)
	rep := res.Report

	assert.Equal(t, StageEmitted, rep.Stage)
	assert.Equal(t, inLen, rep.InputPoints)
	assert.Equal(t, 1, rep.Cleaning.Spikes)
	assert.Equal(t, 1, rep.Cleaning.DuplicateTimes)
	assert.False(t, rep.TimestampsSynthesized)
	assert.Empty(t, rep.Warnings)

	// A straight line simplifies to its endpoints.
	out := res.Track.Points
	require.Len(t, out, 2)
	assert.Equal(t, rep.OutputPoints, len(out))
	assert.Equal(t, at(0), out[0].Time)
	// floor(59 / 1.5) * 1.5
	assert.Equal(t, at(58.5), out[1].Time)

	for _, tp := range out {
		assert.Nil(t, tp.Elevation)
		assert.Nil(t, tp.Extensions)
		assert.Equal(t, tp.Lon, common.DecimalToFixed(tp.Lon, 7))
	}
	assert.Nil(t, res.Track.Metadata)
	assert.Equal(t, "drive", res.Track.Name)
	assert.Greater(t, rep.SizeEstimate, 0)
	assert.InDelta(t, 10, rep.Stats.SpeedMean, 0.05)

	// The input is untouched.
	assert.Len(t, in.Points, inLen)
	assert.NotNil(t, in.Metadata)
}

func TestRun_NoResampleNoSimplify(t *testing.T) {
	cfg := params.DefaultPipelineConfig(params.ProfileCar)
	cfg.Resample = false
	cfg.SimplifyTolerance = 0
	cfg.KeepElevation = true
	cfg.KeepExtensions = true
	cfg.KeepMetadata = true
	res, err := Run(drive(), cfg)
	require.NoError(t, err)

	out := res.Track.Points
	require.Len(t, out, 60)
	for i := 1; i < len(out); i++ {
		require.True(t, out[i-1].Time.Before(out[i].Time))
	}
	require.NotNil(t, out[0].Elevation)
	assert.Equal(t, trackpoint.Extensions("<speed>10</speed>"), out[0].Extensions)
	require.NotNil(t, res.Track.Metadata)
	assert.Equal(t, "someone", res.Track.Metadata.Author)
}

func TestRun_ResampledTimestampsIncrease(t *testing.T) {
	cfg := params.DefaultPipelineConfig(params.ProfileCar)
	cfg.SimplifyTolerance = 0
	res, err := Run(drive(), cfg)
	require.NoError(t, err)
	out := res.Track.Points
	// 59 s at 1.5 s
	require.Len(t, out, 40)
	for i := 1; i < len(out); i++ {
		require.True(t, out[i-1].Time.Before(out[i].Time), "at %d", i)
	}
}

func TestRun_SynthesizesTimestamps(t *testing.T) {
	step := 14 / (common.EarthRadius * math.Pi / 180)
	tr := &trackpoint.Track{Points: trackpoint.TrackPoints{
		{Lat: 0, Lon: 0},
		{Lat: step, Lon: 0},
		{Lat: 2 * step, Lon: 0},
	}}
	cfg := params.DefaultPipelineConfig(params.ProfileWalk)
	cfg.Resample = false
	cfg.SimplifyTolerance = 0
	cfg.SynthesisStart = t0
	res, err := Run(tr, cfg)
	require.NoError(t, err)
	assert.True(t, res.Report.TimestampsSynthesized)

	out := res.Track.Points
	require.Len(t, out, 3)
	for i, want := range []time.Duration{0, 10 * time.Second, 20 * time.Second} {
		assert.InDelta(t, want.Seconds(), out[i].Time.Sub(t0).Seconds(), 1e-6)
	}
}

func TestRun_NoTimestampsWithoutSynthesis(t *testing.T) {
	tr := &trackpoint.Track{Points: trackpoint.TrackPoints{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}}
	cfg := params.DefaultPipelineConfig(params.ProfileWalk)
	cfg.SynthesizeTimestamps = false
	res, err := Run(tr, cfg)
	assert.ErrorIs(t, err, trackpoint.ErrNoTimestampedPoints)
	require.NotNil(t, res)
	assert.Nil(t, res.Track)
	assert.Equal(t, StageSkippedNoTimestamps, res.Report.Stage)
	assert.Contains(t, res.Report.Warnings, "no timestamps, skipped")
}

func TestRun_Empty(t *testing.T) {
	res, err := Run(&trackpoint.Track{}, params.DefaultPipelineConfig(params.ProfileBike))
	assert.ErrorIs(t, err, trackpoint.ErrEmptyTrack)
	assert.Equal(t, StageSkippedEmpty, res.Report.Stage)
}

func TestRun_NilTrack(t *testing.T) {
	res, err := Run(nil, params.DefaultPipelineConfig(params.ProfileCar))
	assert.ErrorIs(t, err, trackpoint.ErrEmptyTrack)
	require.NotNil(t, res)
	assert.Equal(t, StageSkippedEmpty, res.Report.Stage)
	assert.Nil(t, res.Track)
}

func TestRun_InvalidFirstPoint(t *testing.T) {
	tr := &trackpoint.Track{Points: trackpoint.TrackPoints{
		{Lat: math.NaN(), Lon: 10, Time: at(0)},
		{Lat: 0, Lon: 0, Time: at(1)},
		{Lat: 0, Lon: 0.001, Time: at(11)},
		{Lat: 0, Lon: 0.002, Time: at(21)},
	}}
	cfg := params.DefaultPipelineConfig(params.ProfileCar)
	cfg.Resample = false
	cfg.SimplifyTolerance = 0
	res, err := Run(tr, cfg)
	require.NoError(t, err)
	require.Len(t, res.Track.Points, 3)
	assert.Equal(t, 1, res.Report.Cleaning.InvalidCoordinates)
	assert.Len(t, res.Report.Warnings, 1)
	for _, tp := range res.Track.Points {
		assert.True(t, tp.Valid(), "%+v", tp)
	}

	// Invalid points never reach timestamp synthesis.
	for i := range tr.Points {
		tr.Points[i].Time = time.Time{}
	}
	cfg.SynthesisStart = t0
	res, err = Run(tr, cfg)
	require.NoError(t, err)
	require.Len(t, res.Track.Points, 3)
	assert.Equal(t, t0, res.Track.Points[0].Time)

	tr.Points = trackpoint.TrackPoints{{Lat: math.NaN(), Lon: math.NaN(), Time: at(0)}}
	res, err = Run(tr, cfg)
	assert.ErrorIs(t, err, trackpoint.ErrEmptyTrack)
	assert.Equal(t, StageSkippedEmpty, res.Report.Stage)
	assert.Equal(t, 1, res.Report.Cleaning.InvalidCoordinates)
}

func TestRun_MixedTimestamps(t *testing.T) {
	tr := &trackpoint.Track{Points: trackpoint.TrackPoints{
		{Lat: 0, Lon: 0, Time: at(0)},
		{Lat: 0, Lon: 0.0001},
		{Lat: 0, Lon: 0.0002, Time: at(10)},
	}}
	cfg := params.DefaultPipelineConfig(params.ProfileBike)
	cfg.Resample = false
	res, err := Run(tr, cfg)
	require.NoError(t, err)
	assert.False(t, res.Report.TimestampsSynthesized)
	assert.Equal(t, 1, res.Report.Cleaning.Untimestamped)
	assert.Len(t, res.Report.Warnings, 1)
	assert.Len(t, res.Track.Points, 2)
}

func TestRun_SinglePointWarns(t *testing.T) {
	tr := &trackpoint.Track{Points: trackpoint.TrackPoints{{Lat: 1, Lon: 1, Time: at(0)}}}
	res, err := Run(tr, params.DefaultPipelineConfig(params.ProfileCar))
	require.NoError(t, err)
	assert.Len(t, res.Track.Points, 1)
	assert.Len(t, res.Report.Warnings, 1)
	assert.Equal(t, StageEmitted, res.Report.Stage)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := params.DefaultPipelineConfig(params.ProfileCar)
	cfg.Interval = -1
	res, err := Run(drive(), cfg)
	assert.ErrorIs(t, err, params.ErrInvalidConfig)
	assert.Nil(t, res)
}

func TestRun_Retime(t *testing.T) {
	cfg := params.DefaultPipelineConfig(params.ProfileCar)
	cfg.Resample = false
	cfg.SimplifyTolerance = 0
	cfg.SynthesisStart = t0.Add(time.Hour)
	tr := drive()
	tr.Points = tr.Points[:60]
	// The drive covers 590 m; one minute needs about 9.8 m/s.
	cfg.TargetDuration = time.Minute
	res, err := Run(tr, cfg)
	require.NoError(t, err)
	assert.True(t, res.Report.Retimed)
	out := res.Track.Points
	assert.Equal(t, cfg.SynthesisStart, out[0].Time)
	assert.InDelta(t, 60, out[len(out)-1].Time.Sub(out[0].Time).Seconds(), 0.5)

	// Two seconds would need far more than the car maximum.
	cfg.TargetDuration = 2 * time.Second
	res, err = Run(tr, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.Report.Warnings)
	assert.Contains(t, res.Report.Warnings[0], "capped")
	assert.Zero(t, res.Report.Cleaning.Spikes)
	assert.Len(t, res.Track.Points, 60)
}

func TestStage_Transitions(t *testing.T) {
	assert.True(t, StageLoaded.CanTransition(StageTimestampsResolved))
	assert.True(t, StageLoaded.CanTransition(StageSkippedEmpty))
	assert.True(t, StageTimestampsResolved.CanTransition(StageSkippedNoTimestamps))
	assert.False(t, StageFiltered.CanTransition(StageSkippedEmpty))
	assert.False(t, StageLoaded.CanTransition(StageFiltered))
	assert.False(t, StageEmitted.CanTransition(StageLoaded))
	assert.True(t, StageEmitted.Terminal())
	assert.True(t, StageSkippedEmpty.Terminal())
	assert.True(t, StageSkippedNoTimestamps.Skipped())
	assert.Equal(t, "TimestampsResolved", StageTimestampsResolved.String())
	assert.Equal(t, "Stage(99)", Stage(99).String())
}
