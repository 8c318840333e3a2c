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
	"github.com/rotblauer/gpxreplay/batch"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/spf13/cobra"
	"io"
	"time"
)

var retimeFlags pipelineFlags
var optRetimeMinutes []int

var retimeCmd = &cobra.Command{
	Use:   "retime FILE",
	Short: "Write copies of a route timed to take the given durations",
	Long: `
Existing timestamps are discarded. The route is re-timed at a constant speed
so that it takes each of the --minutes durations, then fixed as usual.
Each duration is written to <name>_<N>min.gpx next to the input.

The speed is raised to at least 6 km/h, and held to the profile's max speed;
when it is, the output takes longer than asked and a warning says so.

Examples:

  gpxreplay retime commute.gpx --minutes 30,45,60
  gpxreplay retime hike.gpx --profile walk --minutes 120
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)

		cfg, err := retimeFlags.config(cmd.Flags())
		if err != nil {
			return err
		}
		return retime(cmd.OutOrStdout(), batch.Options{
			Pipeline: cfg,
			Encode:   retimeFlags.encodeOptions(),
		}, args[0], optRetimeMinutes)
	},
}

func retime(w io.Writer, opts batch.Options, input string, minutes []int) error {
	if len(minutes) == 0 {
		return fmt.Errorf("%w: no durations given", params.ErrInvalidConfig)
	}
	for _, m := range minutes {
		if m <= 0 {
			return fmt.Errorf("%w: duration must be positive, got %d minutes", params.ErrInvalidConfig, m)
		}
	}
	failed := 0
	for _, m := range minutes {
		opts.Pipeline.TargetDuration = time.Duration(m) * time.Minute
		r, err := batch.NewRunner(opts)
		if err != nil {
			return err
		}
		res := r.Fix(input, suffixed(input, fmt.Sprintf("_%dmin", m)))
		fmt.Fprintln(w, res.String())
		if res.Report != nil {
			for _, warning := range res.Report.Warnings {
				fmt.Fprintf(w, "  warning: %s\n", warning)
			}
		}
		if res.Outcome != batch.Processed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d durations failed", failed, len(minutes))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(retimeCmd)

	retimeFlags.register(retimeCmd.Flags())
	retimeCmd.Flags().IntSliceVar(&optRetimeMinutes, "minutes", []int{30, 60}, "Target durations in minutes")
}
