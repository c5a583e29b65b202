package models

import (
	"fmt"
	"strings"
)

// Page is the extracted content of one PDF page. Extractors fill either Text
// (linearised page text) or Blocks (text blocks, each already split into lines).
type Page struct {
	Index  int
	Text   string
	Blocks [][]string
}

// Content returns the page as a single newline-separated text.
func (p Page) Content() string {
	if len(p.Blocks) == 0 {
		return p.Text
	}
	var lines []string
	for _, block := range p.Blocks {
		lines = append(lines, block...)
	}
	return strings.Join(lines, "\n")
}

// Lines returns the trimmed, non-empty lines of the page regardless of the
// extraction mode that produced it.
func (p Page) Lines() []string {
	return SplitLines(p.Content())
}

// SplitLines splits text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Progress is the advisory completion signal emitted after each page.
type Progress struct {
	Page     int     `json:"page"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
	Status   string  `json:"status"`
}

// NewProgress builds the progress value for page (1-based) of total.
func NewProgress(page, total int) Progress {
	p := Progress{Page: page, Total: total}
	if total > 0 {
		p.Fraction = float64(page) / float64(total)
		if p.Fraction > 1 {
			p.Fraction = 1
		}
	}
	p.Status = fmt.Sprintf("page %d of %d", page, total)
	return p
}
