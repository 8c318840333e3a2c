package params

import (
	"errors"
	"fmt"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/rotblauer/gpxreplay/common"
	"math"
	"sort"
	"strings"
	"time"
)

var ErrInvalidConfig = errors.New("invalid config")

// Profile is a named bundle of speed and distance limits.
// All speeds are in m/s, distances in meters.
type Profile struct {
	Name string

	// MaxSpeed is the implied speed between consecutive kept points
	// above which a point is treated as a spike.
	MaxSpeed float64

	// MinDistance is the distance to the last kept point
	// below which a point is dropped as redundant.
	MinDistance float64

	// AverageSpeed is only used to synthesize timestamps.
	AverageSpeed float64
}

var ProfileCar = Profile{Name: "car", MaxSpeed: common.SpeedOfDrivingMax, MinDistance: 2, AverageSpeed: common.SpeedOfDrivingMean}
var ProfileBike = Profile{Name: "bike", MaxSpeed: common.SpeedOfCyclingMax, MinDistance: 1, AverageSpeed: common.SpeedOfCyclingMean}
var ProfileWalk = Profile{Name: "walk", MaxSpeed: common.SpeedOfWalkingMax, MinDistance: 0.5, AverageSpeed: common.SpeedOfWalking}

var Profiles = map[string]Profile{
	ProfileCar.Name:  ProfileCar,
	ProfileBike.Name: ProfileBike,
	ProfileWalk.Name: ProfileWalk,
}

const DefaultProfileName = "car"

// ProfileNames returns the known profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ProfileByName(name string) (Profile, error) {
	p, ok := Profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown profile %q (want one of %s)",
			ErrInvalidConfig, name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// PipelineConfig fully determines what the pipeline does to a track.
type PipelineConfig struct {
	Profile Profile

	// Resample enables uniform time resampling at Interval seconds.
	Resample bool
	Interval float64

	// SimplifyTolerance is the Douglas-Peucker tolerance in meters.
	// Zero or negative disables simplification.
	SimplifyTolerance float64

	// Precision is the number of decimal digits lat/lon are rounded to.
	Precision int

	// SynthesizeTimestamps enables generating timestamps for tracks
	// without any, at Profile.AverageSpeed.
	SynthesizeTimestamps bool

	// SynthesisStart is the first synthesized timestamp.
	// The zero value means the wall clock at synthesis time.
	SynthesisStart time.Time

	// TargetDuration, when positive, discards any existing timestamps and
	// re-synthesizes them so the whole track takes about this long.
	TargetDuration time.Duration

	KeepElevation  bool
	KeepExtensions bool
	KeepMetadata   bool
}

const (
	DefaultInterval          = 1.5
	DefaultSimplifyTolerance = 0.2
	DefaultPrecision         = 7
	MaxPrecision             = 15
)

// DefaultPipelineConfig returns the global defaults for the given profile.
func DefaultPipelineConfig(profile Profile) PipelineConfig {
	return PipelineConfig{
		Profile:              profile,
		Resample:             true,
		Interval:             DefaultInterval,
		SimplifyTolerance:    DefaultSimplifyTolerance,
		Precision:            DefaultPrecision,
		SynthesizeTimestamps: true,
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate rejects configurations the pipeline cannot run with.
// Every returned error wraps ErrInvalidConfig.
func (c PipelineConfig) Validate() error {
	if !finite(c.Profile.MaxSpeed) || c.Profile.MaxSpeed <= 0 {
		return fmt.Errorf("%w: max speed must be positive, got %v", ErrInvalidConfig, c.Profile.MaxSpeed)
	}
	if !finite(c.Profile.MinDistance) || c.Profile.MinDistance < 0 {
		return fmt.Errorf("%w: min distance must not be negative, got %v", ErrInvalidConfig, c.Profile.MinDistance)
	}
	if c.SynthesizeTimestamps || c.TargetDuration > 0 {
		if !finite(c.Profile.AverageSpeed) || c.Profile.AverageSpeed <= 0 {
			return fmt.Errorf("%w: average speed must be positive, got %v", ErrInvalidConfig, c.Profile.AverageSpeed)
		}
	}
	if c.Resample {
		if !finite(c.Interval) || c.Interval <= 0 {
			return fmt.Errorf("%w: resample interval must be positive, got %v", ErrInvalidConfig, c.Interval)
		}
		if c.IntervalDuration() <= 0 {
			return fmt.Errorf("%w: resample interval %v is below clock resolution", ErrInvalidConfig, c.Interval)
		}
	}
	if math.IsNaN(c.SimplifyTolerance) {
		return fmt.Errorf("%w: simplify tolerance is NaN", ErrInvalidConfig)
	}
	if c.Precision < 0 || c.Precision > MaxPrecision {
		return fmt.Errorf("%w: precision must be within [0, %d], got %d", ErrInvalidConfig, MaxPrecision, c.Precision)
	}
	if c.TargetDuration < 0 {
		return fmt.Errorf("%w: target duration must not be negative, got %v", ErrInvalidConfig, c.TargetDuration)
	}
	return nil
}

// IntervalDuration returns the resample interval as a time.Duration.
func (c PipelineConfig) IntervalDuration() time.Duration {
	return time.Duration(c.Interval * float64(time.Second))
}

// Fingerprint is a stable hash of everything that affects pipeline output.
// The wall-clock synthesis start is not part of it.
func (c PipelineConfig) Fingerprint() (uint64, error) {
	key := struct {
		Profile              Profile
		Resample             bool
		Interval             float64
		SimplifyTolerance    float64
		Precision            int
		SynthesizeTimestamps bool
		SynthesisStart       int64
		TargetDuration       int64
		KeepElevation        bool
		KeepExtensions       bool
		KeepMetadata         bool
	}{
		Profile:              c.Profile,
		Resample:             c.Resample,
		Interval:             c.Interval,
		SimplifyTolerance:    c.SimplifyTolerance,
		Precision:            c.Precision,
		SynthesizeTimestamps: c.SynthesizeTimestamps,
		TargetDuration:       int64(c.TargetDuration),
		KeepElevation:        c.KeepElevation,
		KeepExtensions:       c.KeepExtensions,
		KeepMetadata:         c.KeepMetadata,
	}
	if !c.SynthesisStart.IsZero() {
		key.SynthesisStart = c.SynthesisStart.UnixNano()
	}
	return hashstructure.Hash(key, hashstructure.FormatV2, nil)
}
