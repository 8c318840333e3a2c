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
	"context"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/rotblauer/gpxreplay/batch"
	"github.com/rotblauer/gpxreplay/common"
	"github.com/rotblauer/gpxreplay/gpxio"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/rotblauer/gpxreplay/state"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var fixFlags pipelineFlags
var optFixIn string
var optFixOut string
var optFixZip bool
var optFixProgress bool
var optFixGeoJSON bool
var optFixGeoJSONTolerance float64
var optFixIncremental bool
var optWorkersN int

var fixCmd = &cobra.Command{
	Use:   "fix [FILE...]",
	Short: "Clean GPX files for GPS replay",
	Long: `
With FILE arguments, each file is fixed into <name>_fix.gpx next to it.
Without arguments, every *.gpx in --in (default ./broken) is fixed into
--out (default ./fixed) under the same name, and the results are zipped
into fixed.zip next to the output directory.

Per file: points without timestamps get them at the profile's average speed,
duplicate timestamps, jitter closer than --min-distance, and jumps faster than
--max-speed are dropped, the track is resampled every --interval seconds and
simplified, coordinates are rounded, and elevation, extensions, and metadata
are dropped unless kept.

Examples:

  gpxreplay fix ride.gpx --profile bike
  gpxreplay fix --in broken --out fixed --workers 4 --progress
  GPXREPLAY_MAX_SPEED=30 gpxreplay fix --gpx-version 1.0 --zip=false
`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)

		cfg, err := fixFlags.config(cmd.Flags())
		if err != nil {
			return err
		}
		opts := batch.Options{
			InputDir:  optFixIn,
			OutputDir: optFixOut,
			Pipeline:  cfg,
			Encode:    fixFlags.encodeOptions(),
			Workers:   optWorkersN,
			GeoJSON:   optFixGeoJSON,

			GeoJSONTolerance: optFixGeoJSONTolerance,
		}
		if len(args) > 0 {
			return fixFiles(cmd.OutOrStdout(), opts, args)
		}

		if optFixIncremental {
			ledger, err := state.OpenDefaultLedger()
			if err != nil {
				return err
			}
			defer ledger.Close()
			opts.Ledger = ledger
		}
		if optFixProgress {
			opts.Progress = cmd.ErrOrStderr()
		}
		return fixDir(cmd.Context(), cmd.OutOrStdout(), opts, optFixZip)
	},
}

func fixFiles(w io.Writer, opts batch.Options, files []string) error {
	r, err := batch.NewRunner(opts)
	if err != nil {
		return err
	}
	failed := 0
	for _, input := range files {
		res := r.Fix(input, suffixed(input, params.FixSuffix))
		fmt.Fprintln(w, res.String())
		if res.Outcome == batch.Failed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func fixDir(ctx context.Context, w io.Writer, opts batch.Options, zip bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if st, err := os.Stat(opts.InputDir); err != nil || !st.IsDir() {
		return fmt.Errorf("input folder not found: %s", opts.InputDir)
	}
	r, err := batch.NewRunner(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case sig := <-common.Interrupted():
			slog.Warn("Received signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, err := r.Run(ctx)
	if summary != nil {
		for _, res := range summary.Results {
			fmt.Fprintln(w, res.String())
		}
		fmt.Fprintln(w, summary.String())
		if summary.InputBytes > 0 {
			fmt.Fprintf(w, "Total: %s -> %s\n",
				humanize.Bytes(uint64(summary.InputBytes)), humanize.Bytes(uint64(summary.OutputBytes)))
		}
	}
	if err != nil {
		return err
	}

	if zip && summary.Processed > 0 {
		dest := filepath.Join(filepath.Dir(filepath.Clean(opts.OutputDir)), params.DefaultZipName)
		count, size, err := gpxio.Zip(opts.OutputDir, dest)
		if err != nil {
			return fmt.Errorf("zip: %w", err)
		}
		fmt.Fprintf(w, "Zipped %d files into %s (%s)\n", count, dest, humanize.Bytes(uint64(size)))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixFlags.register(fixCmd.Flags())
	fixCmd.Flags().StringVar(&optFixIn, "in", params.DefaultInputDir, "Input folder for batch mode")
	fixCmd.Flags().StringVar(&optFixOut, "out", params.DefaultOutputDir, "Output folder for batch mode")
	fixCmd.Flags().BoolVar(&optFixZip, "zip", true, "Zip the output folder after a batch")
	fixCmd.Flags().BoolVar(&optFixProgress, "progress", false, "Show a progress bar")
	fixCmd.Flags().BoolVar(&optFixGeoJSON, "geojson", false, "Also write a GeoJSON preview of each output")
	fixCmd.Flags().Float64Var(&optFixGeoJSONTolerance, "geojson-tolerance", 0, "Simplify the GeoJSON preview line, in degrees (0 keeps every point and its time)")
	fixCmd.Flags().BoolVar(&optFixIncremental, "incremental", false, "Skip inputs unchanged since the last run")
	fixCmd.Flags().IntVar(&optWorkersN, "workers", params.DefaultWorkers, "Number of workers to run in parallel")
}
