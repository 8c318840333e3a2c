package batch

import (
	"errors"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/rotblauer/gpxreplay/gpxio"
	"github.com/rotblauer/gpxreplay/pipeline"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"path/filepath"
	"strings"
)

var (
	ErrDuplicate = errors.New("duplicate of an earlier input")
	ErrUnchanged = errors.New("unchanged since last run")
)

type Outcome int

const (
	Processed Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Processed:
		return "processed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Classify maps the error from processing one file to its outcome.
// Track-level skip conditions are not failures.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Processed
	case errors.Is(err, trackpoint.ErrEmptyTrack),
		errors.Is(err, trackpoint.ErrNoTimestampedPoints),
		errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrUnchanged):
		return Skipped
	}
	return Failed
}

// FileResult is the outcome of processing one input file.
type FileResult struct {
	Input  string
	Output string

	Outcome Outcome
	Err     error

	// Source is where the points came from: tracks, routes, or waypoints.
	Source gpxio.Source

	InputSize  int64
	OutputSize int64

	Report *pipeline.Report
}

// Reduction is the size saved by the output in percent of the input size.
func (r FileResult) Reduction() float64 {
	if r.InputSize <= 0 || r.Outcome != Processed {
		return 0
	}
	return (1 - float64(r.OutputSize)/float64(r.InputSize)) * 100
}

func (r FileResult) TimestampsAdded() bool {
	return r.Outcome == Processed && r.Report != nil && r.Report.TimestampsSynthesized
}

// String renders the per-file outcome line.
func (r FileResult) String() string {
	name := filepath.Base(r.Input)
	switch r.Outcome {
	case Skipped:
		return fmt.Sprintf("%s: skipped (%v)", name, r.Err)
	case Failed:
		return fmt.Sprintf("%s: error: %v", name, r.Err)
	}
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%s: %s -> %s points, %s -> %s (%.1f%% smaller)",
		name,
		humanize.Comma(int64(r.Report.InputPoints)),
		humanize.Comma(int64(r.Report.OutputPoints)),
		humanize.Bytes(uint64(r.InputSize)),
		humanize.Bytes(uint64(r.OutputSize)),
		r.Reduction())
	if r.TimestampsAdded() {
		sb.WriteString(" [timestamps added]")
	}
	if r.Source == gpxio.SourceRoutes || r.Source == gpxio.SourceWaypoints {
		fmt.Fprintf(&sb, " [from %s]", r.Source)
	}
	return sb.String()
}

// Summary aggregates the results of a batch.
type Summary struct {
	Processed       int
	Skipped         int
	Failed          int
	TimestampsAdded int

	InputBytes  int64
	OutputBytes int64

	Results []FileResult
}

func (s *Summary) add(r FileResult) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case Processed:
		s.Processed++
		s.InputBytes += r.InputSize
		s.OutputBytes += r.OutputSize
		if r.TimestampsAdded() {
			s.TimestampsAdded++
		}
	case Skipped:
		s.Skipped++
	case Failed:
		s.Failed++
	}
}

func (s *Summary) Total() int {
	return len(s.Results)
}

func (s *Summary) String() string {
	return fmt.Sprintf("Processed: %d | Skipped: %d | Errors: %d | Timestamps added: %d",
		s.Processed, s.Skipped, s.Failed, s.TimestampsAdded)
}
