package extractor

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// fitzDocument extracts page text with MuPDF.
type fitzDocument struct {
	doc *fitz.Document
}

func openFitz(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, fmt.Errorf("%w: PDF has no pages", ErrUnreadable)
	}
	return &fitzDocument{doc: doc}, nil
}

func (d *fitzDocument) NumPages() int { return d.doc.NumPage() }

func (d *fitzDocument) Page(i int) (models.Page, error) {
	text, err := d.doc.Text(i)
	if err != nil {
		return models.Page{}, fmt.Errorf("page %d: %w", i+1, err)
	}
	return models.Page{Index: i, Text: text}, nil
}

func (d *fitzDocument) Close() error { return d.doc.Close() }
