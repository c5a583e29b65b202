// Package extractor reads the per-page text of a cashier report.
package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// Extraction backends.
const (
	BackendLedongthuc = "ledongthuc"
	BackendFitz       = "fitz"
	BackendPdftotext  = "pdftotext"
)

// ErrUnreadable is returned when a document cannot be opened or has no pages.
var ErrUnreadable = errors.New("document could not be read")

// Document is an opened source of pages.
type Document interface {
	NumPages() int
	Page(i int) (models.Page, error)
	Close() error
}

// Open opens the PDF at path with the named backend. An empty backend means
// ledongthuc.
func Open(path, backend string) (Document, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendLedongthuc:
		return openLedongthuc(path)
	case BackendFitz:
		return openFitz(path)
	case BackendPdftotext:
		return openPdftotext(path)
	default:
		return nil, fmt.Errorf("unknown extraction backend %q", backend)
	}
}

// TextPages wraps already extracted page texts as a Document.
func TextPages(texts []string) Document {
	return textDocument(texts)
}

type textDocument []string

func (d textDocument) NumPages() int { return len(d) }

func (d textDocument) Page(i int) (models.Page, error) {
	if i < 0 || i >= len(d) {
		return models.Page{}, fmt.Errorf("page %d out of range", i+1)
	}
	return models.Page{Index: i, Text: d[i]}, nil
}

func (d textDocument) Close() error { return nil }

// SplitPages splits pasted text on the page separator used by the web client.
func SplitPages(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, PageBreak)
}

// PageBreak separates pages in pasted text.
const PageBreak = "\n---PAGE_BREAK---\n"
