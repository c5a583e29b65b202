// Package parser rebuilds cashier transaction records from the text layer of
// a transaction report: boilerplate is filtered, lines are classified, grouped
// into per-transaction blocks and assembled into fixed-schema rows.
package parser

import (
	"strings"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// Parser defines the interface for report parsers.
type Parser interface {
	// Parse takes raw text from PDF pages and returns the reconstructed report.
	Parse(pages []string) (*models.Report, error)
}

// maxDebugLines bounds the trace kept when debugging is enabled.
const maxDebugLines = 5000

// ReportParser runs the filter → classify → segment → assemble chain. It is
// fed page by page; an open block and a trailing date line are carried over
// page boundaries. A ReportParser is not safe for concurrent use.
type ReportParser struct {
	filter     *NoiseFilter
	classifier *Classifier
	assembler  Assembler
	segmenter  Segmenter

	// pending holds a trailing date line whose time may start the next page.
	pending []models.RawLine

	lines    int
	blocks   int
	dropped  int
	overflow int

	debug      bool
	debugLines []models.DebugLine
}

// New returns a parser configured by profile.
func New(profile *config.Profile) *ReportParser {
	classifier := NewClassifier(profile)
	return &ReportParser{
		filter:     NewNoiseFilter(profile),
		classifier: classifier,
		assembler: Assembler{
			ZeroAmount: profile.ZeroAmount,
			IsRebate:   classifier.IsRebateType,
		},
	}
}

// EnableDebug makes the parser record what happened to every line.
func (p *ReportParser) EnableDebug() {
	p.debug = true
}

// Parse reconstructs every record of the given pages in one pass.
func (p *ReportParser) Parse(pages []string) (*models.Report, error) {
	p.Reset()
	var records []models.TransactionRecord
	for i, text := range pages {
		records = append(records, p.Feed(models.Page{Index: i, Text: text})...)
	}
	records = append(records, p.Finish()...)

	report := p.Report()
	report.Records = records
	return report, nil
}

// Feed processes one page and returns the records completed by it. The block
// still open at the end of the page is kept for the next call.
func (p *ReportParser) Feed(page models.Page) []models.TransactionRecord {
	kept, removed := p.filter.Split(page.Content())
	for _, text := range removed {
		p.trace(page.Index, text, "", "filtered")
	}

	raw := p.pending
	p.pending = nil
	for _, text := range kept {
		raw = append(raw, models.RawLine{Page: page.Index, Text: text})
	}
	if n := len(raw); n > 0 && p.classifier.Classify(raw[n-1].Text) == models.CategoryDateOnly {
		p.pending = raw[n-1:]
		raw = raw[:n-1]
	}

	return p.push(p.classifier.ClassifyLines(raw))
}

// Finish closes the stream and returns the records of the last open block.
func (p *ReportParser) Finish() []models.TransactionRecord {
	var records []models.TransactionRecord
	if len(p.pending) > 0 {
		records = p.push(p.classifier.ClassifyLines(p.pending))
		p.pending = nil
	}
	if block, ok := p.segmenter.Flush(); ok {
		if rec, ok := p.assemble(block); ok {
			records = append(records, rec)
		}
	}
	return records
}

// Abort drops the open block and any carried line; nothing partial is emitted.
func (p *ReportParser) Abort() {
	p.segmenter.Discard()
	p.pending = nil
}

// Reset prepares the parser for a new document.
func (p *ReportParser) Reset() {
	p.Abort()
	p.lines, p.blocks, p.dropped, p.overflow = 0, 0, 0, 0
	p.debugLines = nil
}

// Report returns the run counters and debug trace collected so far.
func (p *ReportParser) Report() *models.Report {
	return &models.Report{
		Lines:          p.lines,
		Blocks:         p.blocks,
		DroppedBlocks:  p.dropped,
		OverflowBlocks: p.overflow,
		DebugLines:     p.debugLines,
	}
}

func (p *ReportParser) push(tokens []models.ClassifiedToken) []models.TransactionRecord {
	for _, tok := range tokens {
		p.lines += len(tok.Lines)
	}
	closed, leading := p.segmenter.Push(tokens)
	for _, tok := range leading {
		for _, line := range tok.Lines {
			p.trace(line.Page, line.Text, string(tok.Category), "leading")
		}
	}

	var records []models.TransactionRecord
	for _, block := range closed {
		if rec, ok := p.assemble(block); ok {
			records = append(records, rec)
		}
	}
	return records
}

func (p *ReportParser) assemble(block models.TransactionBlock) (models.TransactionRecord, bool) {
	p.blocks++
	rec, ok, overflow := p.assembler.Build(block)
	result := "block"
	switch {
	case !ok:
		p.dropped++
		result = "dropped"
	case overflow > 0:
		p.overflow++
		result = "overflow"
	}
	for _, tok := range block.Tokens {
		for _, line := range tok.Lines {
			p.trace(line.Page, line.Text, string(tok.Category), result)
		}
	}
	return rec, ok
}

func (p *ReportParser) trace(page int, text, category, result string) {
	if !p.debug || len(p.debugLines) >= maxDebugLines {
		return
	}
	p.debugLines = append(p.debugLines, models.DebugLine{
		Page:     page,
		Text:     text,
		Category: category,
		Result:   result,
	})
}

// Detect reports whether the pages look like a cashier transaction report,
// i.e. carry at least one of the profile's detection markers.
func Detect(profile *config.Profile, pages []string) bool {
	markers := foldAll(profile.DetectMarkers)
	if len(markers) == 0 {
		return true
	}
	return containsAny(fold(strings.Join(pages, "\n")), markers)
}
