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
	"github.com/dustin/go-humanize"
	"github.com/rotblauer/gpxreplay/gpxio"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"path/filepath"
)

var optCombineOut string
var optCombineVersion string

var combineCmd = &cobra.Command{
	Use:   "combine [DIR]",
	Short: "Combine every GPX file in a folder into one file, one track per file",
	Long: `
Each GPX file in DIR (default ./fixed) becomes one track, named after the file,
in a single output file (default DIR/combined_routes.gpx).
Tracks are kept separate; nothing is merged or reordered.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		dir := params.DefaultOutputDir
		if len(args) > 0 {
			dir = args[0]
		}
		out := optCombineOut
		if out == "" {
			out = filepath.Join(dir, params.DefaultCombined)
		}
		return combine(cmd.OutOrStdout(), dir, out, gpxio.EncodeOptions{Version: optCombineVersion, Indent: true})
	},
}

func combine(w io.Writer, dir, out string, opts gpxio.EncodeOptions) error {
	doc, err := gpxio.Combine(dir, out, slog.Default())
	if err != nil {
		return err
	}
	n, err := gpxio.WriteFile(out, doc, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Combined %d routes (%s points) into %s (%s)\n",
		len(doc.Tracks), humanize.Comma(int64(doc.PointCount())), out, humanize.Bytes(uint64(n)))
	return nil
}

func init() {
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringVarP(&optCombineOut, "out", "o", "", "Output file (default DIR/"+params.DefaultCombined+")")
	combineCmd.Flags().StringVar(&optCombineVersion, "gpx-version", params.DefaultGPXVersion, "Output GPX version: 1.0 or 1.1")
}
