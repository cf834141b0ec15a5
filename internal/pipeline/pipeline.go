// Package pipeline runs the analysis stages in order: ingest,
// preprocess, summarize, cluster, narrate, report. Stages run strictly
// sequentially; a failure before the report is fatal, a failure while
// writing the report is logged and the run still succeeds.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/cluster"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
	"github.com/KaramelBytes/dataloom-cli/internal/ingest"
	"github.com/KaramelBytes/dataloom-cli/internal/prep"
	"github.com/KaramelBytes/dataloom-cli/internal/report"
)

// Narrator produces the prose summary for the report.
type Narrator interface {
	Narrate(ctx context.Context, sum *analysis.Summary, res *cluster.Result) (string, error)
}

// ChartRenderer produces the image files the report references. The
// default renderer draws nothing and logs where external tooling is
// expected to place them.
type ChartRenderer interface {
	Render(dir string, tbl *dataset.Table, res *cluster.Result) error
}

type logCharts struct{}

func (logCharts) Render(dir string, _ *dataset.Table, _ *cluster.Result) error {
	slog.Info("chart rendering left to external tooling",
		"cluster_chart", filepath.Join(dir, report.ClusterChartFile),
		"heatmap", filepath.Join(dir, report.HeatmapFile))
	return nil
}

// Options carries the per-run knobs.
type Options struct {
	Clusters  int
	Seed      int64
	MaxIter   int
	Delimiter rune
}

// Runner wires the stages together.
type Runner struct {
	Narrator Narrator
	Reporter *report.Writer
	Opts     Options

	// Charts renders the report images. Nil means the logging no-op.
	Charts ChartRenderer

	// Out receives user-facing progress lines. Defaults to stdout.
	Out io.Writer
}

// Outcome collects everything a run produced.
type Outcome struct {
	RunID     string
	Table     *dataset.Table
	Summary   analysis.Summary
	Clusters  *cluster.Result
	Narrative string
	ReportDir string
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

func (r *Runner) charts() ChartRenderer {
	if r.Charts != nil {
		return r.Charts
	}
	return logCharts{}
}

// Run analyzes one dataset end to end.
func (r *Runner) Run(ctx context.Context, datasetPath string) (*Outcome, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID, "dataset", datasetPath)

	tbl, err := ingest.Load(datasetPath, ingest.Options{Delimiter: r.Opts.Delimiter})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(r.out(), "Dataset loaded successfully with %d rows and %d columns.\n", tbl.Rows(), len(tbl.Columns))
	log.Info("dataset loaded",
		"rows", tbl.Rows(),
		"columns", len(tbl.Columns),
		"encoding", tbl.Encoding,
		"skipped_rows", tbl.SkippedRows)

	prep.Clean(tbl)
	log.Debug("preprocessing complete")

	sum := analysis.Summarize(tbl)

	res, err := cluster.Run(tbl, r.Opts.Clusters, r.Opts.MaxIter, r.Opts.Seed)
	if err != nil {
		return nil, err
	}
	log.Info("clustering complete",
		"clusters", len(res.Centers),
		"inertia", res.Inertia,
		"iterations", res.Iterations,
		"features", res.FeatureNames)

	narrative, err := r.Narrator.Narrate(ctx, &sum, res)
	if err != nil {
		fmt.Fprintf(r.out(), "Error generating narrative: %v\n", err)
		log.Warn("narrative generation failed", "error", err)
	}

	out := &Outcome{
		RunID:     runID,
		Table:     tbl,
		Summary:   sum,
		Clusters:  res,
		Narrative: narrative,
	}
	dir, err := r.Reporter.Write(datasetPath, &sum, res, narrative)
	if err != nil {
		fmt.Fprintf(r.out(), "Error saving results: %v\n", err)
		log.Error("report write failed", "error", err)
		return out, nil
	}
	out.ReportDir = dir
	fmt.Fprintln(r.out(), "Analysis results saved successfully.")
	log.Info("report written", "dir", dir)

	if err := r.charts().Render(dir, tbl, res); err != nil {
		log.Warn("chart rendering failed", "error", err)
	}
	return out, nil
}
