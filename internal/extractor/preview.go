package extractor

import (
	"fmt"
	"strings"
)

// Preview returns the raw text of up to maxPages pages (all when maxPages is
// not positive), each introduced by a "--- Início da Página N ---" marker.
// Pages without text are skipped; pages that fail to extract are noted inline.
func Preview(doc Document, maxPages int) string {
	n := doc.NumPages()
	if maxPages > 0 && maxPages < n {
		n = maxPages
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		page, err := doc.Page(i)
		if err != nil {
			fmt.Fprintf(&b, "--- Início da Página %d ---\n[erro de extração: %v]\n\n", i+1, err)
			continue
		}
		text := strings.TrimSpace(page.Content())
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "--- Início da Página %d ---\n%s\n\n", i+1, text)
	}
	return b.String()
}
