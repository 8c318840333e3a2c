/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/rotblauer/gpxreplay/gpxio"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/spf13/pflag"
	"path/filepath"
	"strings"
	"time"
)

// pipelineFlags are the processing options shared by fix and retime.
// Profile values apply first; explicitly set flags override them.
type pipelineFlags struct {
	profile      string
	maxSpeed     float64
	minDistance  float64
	averageSpeed float64

	noResample     bool
	interval       float64
	simplify       float64
	precision      int
	noTimestamps   bool
	start          string
	keepElevation  bool
	keepExtensions bool
	keepMetadata   bool

	gpxVersion string
	indent     bool
}

func (pf *pipelineFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&pf.profile, "profile", params.DefaultProfileName,
		fmt.Sprintf("Tuning preset: %s", strings.Join(params.ProfileNames(), ", ")))
	fs.Float64Var(&pf.maxSpeed, "max-speed", 0, "Max speed in m/s to keep, the spike filter (default from profile)")
	fs.Float64Var(&pf.minDistance, "min-distance", 0, "Min spacing in meters between kept points (default from profile)")
	fs.Float64Var(&pf.averageSpeed, "avg-speed", 0, "Speed in m/s for generated timestamps (default from profile)")

	fs.BoolVar(&pf.noResample, "no-resample", false, "Only clean and simplify; keep the original cadence")
	fs.Float64Var(&pf.interval, "interval", params.DefaultInterval, "Resample interval in seconds")
	fs.Float64Var(&pf.simplify, "simplify", params.DefaultSimplifyTolerance, "Douglas-Peucker tolerance in meters, 0 disables")
	fs.IntVar(&pf.precision, "precision", params.DefaultPrecision, "Round lat/lon to N decimals")
	fs.BoolVar(&pf.noTimestamps, "no-add-timestamps", false, "Skip files without timestamps instead of generating them")
	fs.StringVar(&pf.start, "start", "", "RFC3339 start time for generated timestamps (default now)")
	fs.BoolVar(&pf.keepElevation, "keep-ele", false, "Keep elevation")
	fs.BoolVar(&pf.keepExtensions, "keep-extensions", false, "Keep <extensions>")
	fs.BoolVar(&pf.keepMetadata, "keep-metadata", false, "Keep GPX metadata")

	fs.StringVar(&pf.gpxVersion, "gpx-version", params.DefaultGPXVersion, "Output GPX version: 1.0 or 1.1")
	fs.BoolVar(&pf.indent, "indent", false, "Pretty print the output GPX")
}

// config builds the pipeline configuration and validates it.
func (pf *pipelineFlags) config(fs *pflag.FlagSet) (params.PipelineConfig, error) {
	profile, err := params.ProfileByName(pf.profile)
	if err != nil {
		return params.PipelineConfig{}, err
	}
	if fs.Changed("max-speed") {
		profile.MaxSpeed = pf.maxSpeed
	}
	if fs.Changed("min-distance") {
		profile.MinDistance = pf.minDistance
	}
	if fs.Changed("avg-speed") {
		profile.AverageSpeed = pf.averageSpeed
	}

	cfg := params.DefaultPipelineConfig(profile)
	cfg.Resample = !pf.noResample
	cfg.Interval = pf.interval
	cfg.SimplifyTolerance = pf.simplify
	cfg.Precision = pf.precision
	cfg.SynthesizeTimestamps = !pf.noTimestamps
	cfg.KeepElevation = pf.keepElevation
	cfg.KeepExtensions = pf.keepExtensions
	cfg.KeepMetadata = pf.keepMetadata
	if pf.start != "" {
		start, err := time.Parse(time.RFC3339, pf.start)
		if err != nil {
			return cfg, fmt.Errorf("%w: start: %v", params.ErrInvalidConfig, err)
		}
		cfg.SynthesisStart = start
	}
	return cfg, cfg.Validate()
}

func (pf *pipelineFlags) encodeOptions() gpxio.EncodeOptions {
	return gpxio.EncodeOptions{Version: pf.gpxVersion, Indent: pf.indent}
}

// suffixed inserts suffix between the file stem and its GPX extension,
// e.g. ride.gpx -> ride_fix.gpx.
func suffixed(path, suffix string) string {
	stem := gpxio.Stem(path)
	base := filepath.Base(path)
	ext := base[len(stem):]
	if ext == "" {
		ext = ".gpx"
	}
	return filepath.Join(filepath.Dir(path), stem+suffix+ext)
}
