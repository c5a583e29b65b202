package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// NoiseFilter removes the report boilerplate that repeats on every page:
// the emission header block, title banners, page footers and the column
// legend. Matching is done on folded lines, so accents and case never matter.
type NoiseFilter struct {
	headerStart []string
	headerEnd   []string
	patterns    []*regexp.Regexp

	legendTerms []string
	legend      *ahocorasick.Matcher
}

// NewNoiseFilter builds a filter from the profile's boilerplate section.
// Patterns are assumed valid; profiles are validated on load.
func NewNoiseFilter(p *config.Profile) *NoiseFilter {
	f := &NoiseFilter{
		headerStart: foldAll(p.Boilerplate.HeaderStart),
		headerEnd:   foldAll(p.Boilerplate.HeaderEnd),
	}
	for _, expr := range append(append([]string{}, p.Boilerplate.Banners...), p.Boilerplate.Footers...) {
		f.patterns = append(f.patterns, regexp.MustCompile(expr))
	}

	f.legendTerms = foldAll(p.Boilerplate.LegendTerms)
	// Longest first so "v. abonado" is consumed before "abono" could split it.
	sort.SliceStable(f.legendTerms, func(i, j int) bool {
		return len(f.legendTerms[i]) > len(f.legendTerms[j])
	})
	if len(f.legendTerms) > 0 {
		f.legend = ahocorasick.NewStringMatcher(f.legendTerms)
	}
	return f
}

// Filter returns the page text with boilerplate lines and blank lines removed.
func (f *NoiseFilter) Filter(pageText string) string {
	return strings.Join(f.Lines(pageText), "\n")
}

// Lines returns the trimmed lines of pageText that survive the filter.
func (f *NoiseFilter) Lines(pageText string) []string {
	kept, _ := f.Split(pageText)
	return kept
}

// Split partitions the page's non-blank lines into kept and removed lines.
func (f *NoiseFilter) Split(pageText string) (kept, removed []string) {
	lines := models.SplitLines(pageText)
	folded := make([]string, len(lines))
	for i, line := range lines {
		folded[i] = fold(line)
	}

	for i := 0; i < len(lines); i++ {
		if containsAny(folded[i], f.headerStart) {
			end := f.findHeaderEnd(folded, i)
			if end < 0 {
				// Unterminated header: only the marker line itself goes.
				end = i
			}
			removed = append(removed, lines[i:end+1]...)
			i = end
			continue
		}
		if f.isBoilerplate(folded[i]) {
			removed = append(removed, lines[i])
			continue
		}
		kept = append(kept, lines[i])
	}
	return kept, removed
}

// findHeaderEnd returns the index of the first line at or after start carrying an
// end-of-header marker, or -1.
func (f *NoiseFilter) findHeaderEnd(folded []string, start int) int {
	for j := start; j < len(folded); j++ {
		if containsAny(folded[j], f.headerEnd) {
			return j
		}
	}
	return -1
}

func (f *NoiseFilter) isBoilerplate(folded string) bool {
	if containsAny(folded, f.headerEnd) {
		return true
	}
	for _, re := range f.patterns {
		if re.MatchString(folded) {
			return true
		}
	}
	return f.isLegend(folded)
}

// isLegend reports whether the line consists only of column legend terms,
// e.g. "Caixa Transação T. Fiscais Sessão Data".
func (f *NoiseFilter) isLegend(folded string) bool {
	if f.legend == nil {
		return false
	}
	hits := f.legend.MatchThreadSafe([]byte(folded))
	if len(hits) == 0 {
		return false
	}
	sort.Ints(hits)
	residual := folded
	for _, idx := range hits {
		residual = strings.ReplaceAll(residual, f.legendTerms[idx], " ")
	}
	for _, r := range residual {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
