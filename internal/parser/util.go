package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Line shapes produced by the cashier report's text layer.
var (
	// DD/MM/YY HH:MM:SS
	dateTimePattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{2})\s+(\d{2}:\d{2}:\d{2})$`)
	// DD/MM/YY
	dateOnlyPattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{2}$`)
	// HH:MM:SS
	timeOnlyPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	// Ticket and transaction numbers are at least nine digits long.
	longIDPattern = regexp.MustCompile(`^\d{9,}$`)
	// Session and fiscal counters never exceed four digits.
	shortCounterPattern = regexp.MustCompile(`^\d{1,4}$`)
)

// currencyPattern matches a currency symbol followed by an amount, e.g.
// "R$ 30.00", "R$1.234,56" or "R$ -5".
func currencyPattern(symbol string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(symbol) + `\s*(-?\d[\d.,]*)$`)
}

// parseAmount converts "30.00", "1.234,56", "1,234.56" or "1.500" to a decimal.
// A lone separator followed by exactly three digits is read as a thousands
// separator, otherwise as the decimal point.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = normalizeSingleSeparator(s, ",")
	case lastDot >= 0:
		s = normalizeSingleSeparator(s, ".")
	}

	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func normalizeSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.Index(s, sep)
	if len(s)-idx-1 == 3 {
		return strings.Replace(s, sep, "", 1)
	}
	return strings.Replace(s, sep, ".", 1)
}

// formatAmount renders an amount as symbol + fixed two decimals with no
// thousands separator: "R$1234.50".
func formatAmount(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}

// fold lower-cases s and strips diacritics so that "Emissão", "EMISSAO" and
// "emissao" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func foldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if f := strings.TrimSpace(fold(v)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// hasKeywordPrefix reports whether the folded line starts with one of the
// folded keywords as a whole word ("porto" matches "porto seguro" but not
// "portobello").
func hasKeywordPrefix(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.HasPrefix(folded, kw) {
			continue
		}
		rest := folded[len(kw):]
		if rest == "" {
			return true
		}
		r := []rune(rest)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func containsAny(folded string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(folded, n) {
			return true
		}
	}
	return false
}
