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
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"time"
)

var infoCmd = &cobra.Command{
	Use:   "info FILE...",
	Short: "Summarize GPX files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		failed := 0
		for _, path := range args {
			info, err := gpxio.Inspect(path)
			if err != nil {
				slog.Error("Failed to inspect", "path", path, "error", err)
				failed++
				continue
			}
			printInfo(cmd.OutOrStdout(), info)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files could not be read", failed, len(args))
		}
		return nil
	},
}

func printInfo(w io.Writer, info *gpxio.Info) {
	fmt.Fprintf(w, "%s\n", info.Path)
	fmt.Fprintf(w, "  Size:      %s\n", humanize.Bytes(uint64(info.Size)))
	fmt.Fprintf(w, "  Version:   %s (%s)\n", info.Version, info.Creator)
	fmt.Fprintf(w, "  Tracks:    %d (%d segments)\n", info.Tracks, info.Segments)
	fmt.Fprintf(w, "  Routes:    %d\n", info.Routes)
	fmt.Fprintf(w, "  Waypoints: %d\n", info.Waypoints)
	fmt.Fprintf(w, "  Points:    %s\n", humanize.Comma(int64(info.Points)))
	fmt.Fprintf(w, "  Length:    %.2f km\n", info.Length2D/1000)
	if info.HasTimestamps() {
		fmt.Fprintf(w, "  Duration:  %v (%s to %s)\n", info.Duration,
			info.Start.UTC().Format(time.RFC3339), info.End.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintf(w, "  Duration:  No timestamps\n")
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
