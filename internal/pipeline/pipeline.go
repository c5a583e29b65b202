// Package pipeline drives a conversion run: pages are pulled from a source in
// batches, parsed in document order and written to a sink at every batch
// boundary.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
	"github.com/insightdelivered/cashier-report-converter/internal/parser"
	"github.com/insightdelivered/cashier-report-converter/internal/writer"
)

// PageSource yields the pages of one document.
type PageSource interface {
	NumPages() int
	Page(i int) (models.Page, error)
}

// Options tune a single run.
type Options struct {
	// BatchPages overrides the profile's batch size when positive.
	BatchPages int
	// Progress, when set, is called after every page.
	Progress func(models.Progress)
	// Debug records a per-line trace in the result.
	Debug bool
}

// Result summarises a finished run.
type Result struct {
	Pages         int
	PageFailures  int
	Lines         int
	Blocks        int
	Records       int
	DroppedBlocks int

	// OverflowBlocks counts records whose block had unassigned values.
	OverflowBlocks int

	// Diagnostics holds the first raw lines of the document when the run
	// produced no records.
	Diagnostics []string
	DebugLines  []models.DebugLine
	Duration    time.Duration
}

// Pipeline converts documents with one report profile. Runs are independent;
// a Pipeline may be shared by concurrent callers.
type Pipeline struct {
	profile *config.Profile
	logger  *slog.Logger
	metrics *Metrics
}

// New returns a pipeline for profile. A nil logger means slog.Default().
func New(profile *config.Profile, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{profile: profile, logger: logger}
}

// WithMetrics records run outcomes in m.
func (p *Pipeline) WithMetrics(m *Metrics) *Pipeline {
	p.metrics = m
	return p
}

// Profile returns the profile the pipeline was built with.
func (p *Pipeline) Profile() *config.Profile {
	return p.profile
}

// Run converts every page of src into records written to sink. The sink is
// not closed; committing or discarding it is the caller's decision. Page
// extraction failures count as empty pages. A cancelled context stops the run
// at the next page boundary and returns ctx.Err(); the open block is dropped.
func (p *Pipeline) Run(ctx context.Context, src PageSource, sink writer.RecordSink, opts Options) (*Result, error) {
	started := time.Now()
	res := &Result{}

	batchPages := opts.BatchPages
	if batchPages <= 0 {
		batchPages = p.profile.BatchPages
	}

	rp := parser.New(p.profile)
	if opts.Debug {
		rp.EnableDebug()
	}
	diag := newDiagnostics(p.profile.DiagnosticLines)

	fail := func(err error) (*Result, error) {
		rp.Abort()
		p.finish(res, rp, started)
		p.metrics.observe(res, "failed")
		return res, err
	}

	if err := sink.WriteHeader(); err != nil {
		return fail(fmt.Errorf("failed to write header: %w", err))
	}

	total := src.NumPages()
	var batch []models.TransactionRecord
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			p.logger.Info("run cancelled", slog.Int("page", i), slog.Int("pages", total))
			rp.Abort()
			p.finish(res, rp, started)
			p.metrics.observe(res, "cancelled")
			return res, err
		}

		page, err := src.Page(i)
		if err != nil {
			p.logger.Warn("page extraction failed",
				slog.Int("page", i+1),
				slog.Any("error", err),
			)
			res.PageFailures++
			page = models.Page{Index: i}
		}
		page.Index = i
		diag.add(page)

		batch = append(batch, rp.Feed(page)...)
		res.Pages++
		if opts.Progress != nil {
			opts.Progress(models.NewProgress(i+1, total))
		}

		if res.Pages%batchPages == 0 {
			if err := p.flush(sink, batch, res); err != nil {
				return fail(err)
			}
			batch = nil
		}
	}

	batch = append(batch, rp.Finish()...)
	if err := p.flush(sink, batch, res); err != nil {
		return fail(err)
	}

	p.finish(res, rp, started)
	if res.Records == 0 {
		res.Diagnostics = diag.lines
	}
	p.metrics.observe(res, "ok")
	if res.OverflowBlocks > 0 {
		p.logger.Warn("blocks with unassigned values",
			slog.Int("blocks", res.OverflowBlocks),
			slog.Int("records", res.Records),
		)
	}
	p.logger.Info("run completed",
		slog.Int("pages", res.Pages),
		slog.Int("records", res.Records),
		slog.Int("dropped_blocks", res.DroppedBlocks),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

func (p *Pipeline) flush(sink writer.RecordSink, batch []models.TransactionRecord, res *Result) error {
	if len(batch) == 0 {
		return nil
	}
	if err := sink.WriteRecords(batch); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	res.Records += len(batch)
	p.logger.Debug("batch flushed",
		slog.Int("records", len(batch)),
		slog.Int("pages", res.Pages),
	)
	return nil
}

func (p *Pipeline) finish(res *Result, rp *parser.ReportParser, started time.Time) {
	report := rp.Report()
	res.Lines = report.Lines
	res.Blocks = report.Blocks
	res.DroppedBlocks = report.DroppedBlocks
	res.OverflowBlocks = report.OverflowBlocks
	res.DebugLines = report.DebugLines
	res.Duration = time.Since(started)
}

// diagnostics keeps the first raw lines seen, before any filtering.
type diagnostics struct {
	limit int
	lines []string
}

func newDiagnostics(limit int) *diagnostics {
	return &diagnostics{limit: limit}
}

func (d *diagnostics) add(page models.Page) {
	for _, line := range page.Lines() {
		if len(d.lines) >= d.limit {
			return
		}
		d.lines = append(d.lines, line)
	}
}
