package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/extractor"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
	"github.com/insightdelivered/cashier-report-converter/internal/parser"
	"github.com/insightdelivered/cashier-report-converter/internal/pipeline"
	"github.com/insightdelivered/cashier-report-converter/internal/writer"
)

type convertOptions struct {
	output     string
	format     string
	profile    string
	backend    string
	batchPages int
	quiet      bool
}

var convertOpts convertOptions

var convertCmd = &cobra.Command{
	Use:   "convert <input.pdf> [input2.pdf ...]",
	Short: "Convert cashier report PDFs to CSV or XLSX",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := convertOpts
		opts.format = writer.NormalizeFormat(opts.format)
		if opts.format != writer.FormatCSV && opts.format != writer.FormatXLSX {
			return fmt.Errorf("unknown format %q, supported: csv, xlsx", opts.format)
		}
		opts.backend = backendOrDefault(opts.backend)

		profile, err := loadProfile(opts.profile)
		if err != nil {
			return err
		}
		p := pipeline.New(profile, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		for _, inputPath := range args {
			outPath, err := outputPath(inputPath, opts.output, opts.format, len(args))
			if err != nil {
				return err
			}
			if err := processFile(ctx, p, inputPath, outPath, opts); err != nil {
				return fmt.Errorf("processing %s: %w", inputPath, err)
			}
		}
		return nil
	},
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertOpts.output, "output", "o", "", "Output file (one input) or directory (defaults to <input>_extraido.<ext> next to the input)")
	f.StringVar(&convertOpts.format, "format", writer.FormatCSV, "Output format: csv or xlsx")
	f.StringVar(&convertOpts.profile, "profile", "", "Report profile YAML (defaults to REPORT_PROFILE or the built-in profile)")
	f.StringVar(&convertOpts.backend, "backend", "", "PDF text backend: ledongthuc, fitz or pdftotext (defaults to PDF_BACKEND)")
	f.IntVar(&convertOpts.batchPages, "batch-pages", 0, "Pages processed between output flushes (defaults to the profile)")
	f.BoolVarP(&convertOpts.quiet, "quiet", "q", false, "Suppress the progress bar")
	rootCmd.AddCommand(convertCmd)
}

// outputPath resolves where the output of inputPath goes.
func outputPath(inputPath, output, format string, inputs int) (string, error) {
	name := extractor.OutputName(inputPath, writer.Extension(format))
	if output == "" {
		return filepath.Join(filepath.Dir(inputPath), name), nil
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name), nil
	}
	if inputs > 1 {
		return "", fmt.Errorf("--output must be a directory when converting %d files", inputs)
	}
	return output, nil
}

func processFile(ctx context.Context, p *pipeline.Pipeline, inputPath, outPath string, opts convertOptions) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	doc, err := extractor.Open(inputPath, opts.backend)
	if err != nil {
		return fmt.Errorf("PDF extraction failed: %w", err)
	}
	defer doc.Close()

	fmt.Printf("  Document has %d page(s)\n", doc.NumPages())
	warnIfNotReport(p.Profile(), doc)

	sink, err := writer.CreateFile(outPath, opts.format, p.Profile())
	if err != nil {
		return err
	}

	runOpts := pipeline.Options{BatchPages: opts.batchPages}
	var bar *progressbar.ProgressBar
	if !opts.quiet {
		bar = newProgressBar(doc.NumPages())
		runOpts.Progress = func(pr models.Progress) { _ = bar.Set(pr.Page) }
	}

	res, err := p.Run(ctx, doc, sink, runOpts)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		sink.Abort()
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted after %d page(s), no output written", res.Pages)
		}
		return err
	}
	if err := sink.Commit(); err != nil {
		return err
	}

	fmt.Printf("  Found %d transaction(s)\n", res.Records)
	if res.PageFailures > 0 {
		fmt.Printf("  Warning: %d page(s) could not be read and were skipped\n", res.PageFailures)
	}
	if res.OverflowBlocks > 0 {
		fmt.Printf("  Warning: %d transaction(s) had extra values that were not assigned to any column\n", res.OverflowBlocks)
	}
	if res.Records == 0 {
		printDiagnostics(res.Diagnostics)
	}
	fmt.Printf("  Output: %s\n", sink.Path())
	fmt.Println("  Done.")
	return nil
}

func warnIfNotReport(profile *config.Profile, doc extractor.Document) {
	var pages []string
	for i := 0; i < doc.NumPages() && i < 2; i++ {
		if page, err := doc.Page(i); err == nil {
			pages = append(pages, page.Content())
		}
	}
	if !parser.Detect(profile, pages) {
		fmt.Println("  Warning: this does not look like a cashier transaction report.")
	}
}

func printDiagnostics(lines []string) {
	fmt.Println("  Warning: No transactions found. The PDF format may not match the report profile.")
	if len(lines) == 0 {
		fmt.Println("  The document produced no text at all; it may be a scanned image.")
		return
	}
	fmt.Println("  First lines of the extracted text:")
	for _, line := range lines {
		fmt.Printf("    | %s\n", line)
	}
}

func newProgressBar(pages int) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		pages,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("  pages"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}
