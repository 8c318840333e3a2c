// Package batch fixes every GPX file in a directory with a pool of workers,
// and reports per-file outcomes and a summary.
package batch

import (
	"context"
	"errors"
	"fmt"
	"github.com/rotblauer/gpxreplay/gpxio"
	"github.com/rotblauer/gpxreplay/params"
	"github.com/rotblauer/gpxreplay/pipeline"
	"github.com/rotblauer/gpxreplay/state"
	"github.com/rotblauer/gpxreplay/stream"
	"github.com/rotblauer/gpxreplay/types/trackpoint"
	"github.com/schollz/progressbar/v3"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

type Options struct {
	InputDir  string
	OutputDir string

	Pipeline params.PipelineConfig
	Encode   gpxio.EncodeOptions

	// Workers defaults to params.DefaultWorkers.
	Workers int

	// GeoJSON writes a preview next to each output.
	GeoJSON bool

	// GeoJSONTolerance simplifies the preview line, in degrees. Zero keeps every point.
	GeoJSONTolerance float64

	// Ledger, if set, skips inputs unchanged since they were last processed
	// with the same configuration, and records new results.
	Ledger *state.Ledger

	// Progress, if set, receives a progress bar.
	Progress io.Writer

	Logger *slog.Logger
}

type Runner struct {
	opts        Options
	pipe        *pipeline.Pipeline
	fingerprint uint64
	logger      *slog.Logger
}

// NewRunner validates the options. An invalid configuration is rejected
// before any file is touched.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Workers < 1 {
		opts.Workers = params.DefaultWorkers
	}
	if err := opts.Encode.Validate(); err != nil {
		return nil, err
	}
	if !(opts.GeoJSONTolerance >= 0) {
		return nil, fmt.Errorf("%w: geojson tolerance %v", params.ErrInvalidConfig, opts.GeoJSONTolerance)
	}
	pipe, err := pipeline.New(opts.Pipeline, opts.Logger)
	if err != nil {
		return nil, err
	}
	fp, err := opts.Pipeline.Fingerprint()
	if err != nil {
		return nil, err
	}
	return &Runner{opts: opts, pipe: pipe, fingerprint: fp, logger: opts.Logger}, nil
}

// loaded is an input file decoded and ready for the pipeline.
type loaded struct {
	input     string
	size      int64
	inputHash uint64
	doc       *gpxio.Document
	track     *trackpoint.Track
	source    gpxio.Source
	err       error
}

func (r *Runner) load(input string) *loaded {
	l := &loaded{input: input}
	st, err := os.Stat(input)
	if err != nil {
		l.err = err
		return l
	}
	l.size = st.Size()

	if r.opts.Ledger != nil {
		if l.inputHash, l.err = state.FileHash(input); l.err != nil {
			return l
		}
		unchanged, err := r.opts.Ledger.Unchanged(input, l.inputHash, r.fingerprint)
		if err != nil {
			l.err = err
			return l
		}
		if unchanged {
			l.err = ErrUnchanged
			return l
		}
	}

	l.doc, l.err = gpxio.ReadFile(input)
	if l.err != nil {
		return l
	}
	l.track, l.source = l.doc.Track()
	return l
}

func (r *Runner) fix(l *loaded, output string) FileResult {
	res := FileResult{Input: l.input, Output: output, Source: l.source, InputSize: l.size}
	finish := func(err error) FileResult {
		res.Err = err
		res.Outcome = Classify(err)
		if res.Outcome != Processed {
			res.Output = ""
		}
		return res
	}
	if l.err != nil {
		return finish(l.err)
	}

	out, err := r.pipe.Run(l.track)
	if out != nil {
		res.Report = out.Report
	}
	if err != nil {
		return finish(err)
	}

	doc := gpxio.NewDocument(out.Track)
	if r.opts.Pipeline.KeepExtensions {
		doc.Namespaces = l.doc.Namespaces
	}
	if _, err := gpxio.WriteFile(output, doc, r.opts.Encode); err != nil {
		return finish(fmt.Errorf("write %s: %w", output, err))
	}
	st, err := os.Stat(output)
	if err != nil {
		return finish(err)
	}
	res.OutputSize = st.Size()

	if r.opts.GeoJSON {
		if _, err := gpxio.WriteGeoJSON(GeoJSONPath(output), out.Track, gpxio.GeoJSONOptions{
			DisplayTolerance: r.opts.GeoJSONTolerance,
			Properties:       reportProperties(out.Report),
		}); err != nil {
			return finish(fmt.Errorf("write geojson: %w", err))
		}
	}

	if r.opts.Ledger != nil {
		if err := r.opts.Ledger.Record(state.Entry{
			Input:     l.input,
			InputHash: l.inputHash,
			Config:    r.fingerprint,
			Output:    output,
			Points:    out.Report.OutputPoints,
		}); err != nil {
			r.logger.Warn("Failed to record ledger entry", "input", l.input, "error", err)
		}
	}
	return finish(nil)
}

// Fix processes a single file into output.
func (r *Runner) Fix(input, output string) FileResult {
	res := r.fix(r.load(input), output)
	r.log(res)
	return res
}

// Run processes every GPX file in the input directory into the output directory
// under the same name. It never stops at the first failure; per-file errors
// are reported in the summary. The returned error is for the batch as a whole.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	files, err := gpxio.ListGPX(r.opts.InputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.opts.OutputDir, 0755); err != nil {
		return nil, err
	}
	r.logger.Info("Batch", "input", r.opts.InputDir, "output", r.opts.OutputDir,
		"files", len(files), "workers", r.opts.Workers)

	var bar *progressbar.ProgressBar
	if r.opts.Progress != nil && len(files) > 0 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(r.opts.Progress),
			progressbar.OptionSetDescription("Fixing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	loads := stream.Collect(ctx, stream.Parallel(ctx, r.opts.Workers, r.load, stream.Slice(ctx, files)))
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].input < loads[j].input
	})

	// Duplicates are decided in file name order, so the first name wins.
	dd := newDedupe()
	for _, l := range loads {
		if l.err != nil || l.track == nil {
			continue
		}
		if first, dup := dd.seen(l.input, l.track.Points); dup {
			l.err = fmt.Errorf("%w %s", ErrDuplicate, filepath.Base(first))
		}
	}

	tick := func(res FileResult) FileResult {
		if bar != nil {
			_ = bar.Add(1)
		}
		return res
	}
	settled := func(l *loaded) bool { return l.err != nil }
	pending := func(l *loaded) bool { return l.err == nil }

	// Failed, unchanged, and duplicate loads never reach the pipeline.
	results := stream.Collect(ctx, stream.Transform(ctx, func(l *loaded) FileResult {
		return tick(r.fix(l, ""))
	}, stream.Filter(ctx, settled, stream.Slice(ctx, loads))))
	results = append(results, stream.Collect(ctx, stream.Parallel(ctx, r.opts.Workers, func(l *loaded) FileResult {
		return tick(r.fix(l, filepath.Join(r.opts.OutputDir, filepath.Base(l.input))))
	}, stream.Filter(ctx, pending, stream.Slice(ctx, loads))))...)
	if bar != nil {
		_ = bar.Finish()
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Input < results[j].Input
	})
	// Results finished before a cancellation are still reported.
	done := context.WithoutCancel(ctx)
	summary := &Summary{}
	stream.Sink(done, func(res FileResult) {
		r.log(res)
		summary.add(res)
	}, stream.Slice(done, results))
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if len(summary.Results) != len(files) {
		return summary, errors.New("batch incomplete")
	}
	return summary, nil
}

func (r *Runner) log(res FileResult) {
	args := []any{"input", res.Input, "outcome", res.Outcome}
	if res.Report != nil {
		args = append(args, "points.in", res.Report.InputPoints, "points.out", res.Report.OutputPoints)
		for _, w := range res.Report.Warnings {
			r.logger.Warn("Track warning", "input", res.Input, "warning", w)
		}
	}
	switch res.Outcome {
	case Processed:
		r.logger.Info("Fixed", append(args, "output", res.Output, "size", res.OutputSize)...)
	case Skipped:
		r.logger.Warn("Skipped", append(args, "reason", res.Err)...)
	case Failed:
		r.logger.Error("Failed", append(args, "error", res.Err)...)
	}
}

// GeoJSONPath is the preview path for a GPX output.
func GeoJSONPath(output string) string {
	return filepath.Join(filepath.Dir(output), gpxio.Stem(output)+".geojson")
}

func reportProperties(rep *pipeline.Report) map[string]interface{} {
	return map[string]interface{}{
		"input_points":           rep.InputPoints,
		"output_points":          rep.OutputPoints,
		"timestamps_synthesized": rep.TimestampsSynthesized,
		"retimed":                rep.Retimed,
		"removed_points":         rep.Cleaning.Removed(),
		"speed_mean_mps":         rep.Stats.SpeedMean,
		"speed_max_mps":          rep.Stats.SpeedMax,
		"warnings":               rep.Warnings,
	}
}
