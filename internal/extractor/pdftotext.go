package extractor

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// pdftotextDocument shells out to poppler-utils, one call per page.
type pdftotextDocument struct {
	path string
	n    int
}

func openPdftotext(path string) (Document, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}
	out, err := exec.Command("pdfinfo", path).Output()
	if err != nil {
		return nil, fmt.Errorf("%w: pdfinfo: %v", ErrUnreadable, err)
	}
	n := parsePageCount(string(out))
	if n == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", ErrUnreadable)
	}
	return &pdftotextDocument{path: path, n: n}, nil
}

// parsePageCount reads the "Pages:" line of pdfinfo output.
func parsePageCount(info string) int {
	for _, line := range strings.Split(info, "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func (d *pdftotextDocument) NumPages() int { return d.n }

func (d *pdftotextDocument) Page(i int) (models.Page, error) {
	pageStr := strconv.Itoa(i + 1)
	out, err := exec.Command("pdftotext", "-f", pageStr, "-l", pageStr, d.path, "-").Output()
	if err != nil {
		return models.Page{}, fmt.Errorf("pdftotext page %d: %w", i+1, err)
	}
	return models.Page{Index: i, Text: string(out)}, nil
}

func (d *pdftotextDocument) Close() error { return nil }
