package extractor

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// ledongthucDocument extracts pages with the pure-Go PDF reader. Each page is
// read as plain text first; when that text is unreadable the page is rebuilt
// from its positioned text runs, one block per visual row.
type ledongthucDocument struct {
	file *os.File
	r    *pdf.Reader
	n    int
}

func openLedongthuc(path string) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: PDF library crashed: %v", ErrUnreadable, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	n := r.NumPage()
	if n == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: PDF has no pages", ErrUnreadable)
	}
	return &ledongthucDocument{file: f, r: r, n: n}, nil
}

func (d *ledongthucDocument) NumPages() int { return d.n }

func (d *ledongthucDocument) Close() error { return d.file.Close() }

// Page returns page i (0-based). Library panics on malformed pages are turned
// into errors.
func (d *ledongthucDocument) Page(i int) (page models.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed on page %d: %v", i+1, r)
		}
	}()

	p := d.r.Page(i + 1)
	if p.V.IsNull() {
		return models.Page{}, fmt.Errorf("page %d not found", i+1)
	}

	text, textErr := plainText(p)
	if textErr == nil && isReadableText(text) {
		return models.Page{Index: i, Text: text}, nil
	}

	blocks := contentRows(p)
	if len(blocks) > 0 {
		return models.Page{Index: i, Blocks: blocks}, nil
	}
	if textErr != nil {
		return models.Page{}, fmt.Errorf("page %d: %w", i+1, textErr)
	}
	// Empty or unreadable either way; an empty page is not an error.
	return models.Page{Index: i, Text: text}, nil
}

func plainText(p pdf.Page) (string, error) {
	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		fonts[name] = &f
	}
	text, err := p.GetPlainText(fonts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

type textItem struct {
	x float64
	s string
}

// contentRows groups the page's text runs by Y coordinate into rows, top to
// bottom. Each row becomes a block whose lines are its cells, left to right.
func contentRows(p pdf.Page) [][]string {
	rowMap := make(map[int][]textItem)
	for _, t := range p.Content().Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
	}

	// PDF Y grows upwards.
	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var blocks [][]string
	for _, y := range yKeys {
		items := rowMap[y]
		sort.Slice(items, func(a, b int) bool {
			return items[a].x < items[b].x
		})
		if cells := joinRuns(items); len(cells) > 0 {
			blocks = append(blocks, cells)
		}
	}
	return blocks
}

// columnGap is the horizontal distance that separates two cells of a row.
const columnGap = 15

// joinRuns merges runs that sit close together into cells; a gap wider than
// columnGap starts a new cell.
func joinRuns(items []textItem) []string {
	var cells []string
	var cur strings.Builder
	var prevX float64
	for i, item := range items {
		if i > 0 && item.x-prevX > columnGap {
			if c := strings.TrimSpace(cur.String()); c != "" {
				cells = append(cells, c)
			}
			cur.Reset()
		}
		cur.WriteString(item.s)
		prevX = item.x
	}
	if c := strings.TrimSpace(cur.String()); c != "" {
		cells = append(cells, c)
	}
	return cells
}

// textQuality returns the share of characters that are plausible in a
// Portuguese report: ASCII letters and digits, accented Latin letters,
// whitespace and common punctuation.
func textQuality(text string) float64 {
	total := 0
	readable := 0
	for _, r := range text {
		total++
		if isReportRune(r) {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func isReportRune(r rune) bool {
	switch {
	case r < unicode.MaxASCII:
		return unicode.IsPrint(r) || unicode.IsSpace(r)
	case unicode.Is(unicode.Latin, r) && r <= 0x017F:
		return true
	case r == 'º' || r == 'ª' || r == '°':
		return true
	}
	return false
}

// isReadableText reports whether page text looks like real text rather than
// glyph ids from an identity-encoded font.
func isReadableText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return textQuality(text) > 0.6
}
