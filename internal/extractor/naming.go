package extractor

import (
	"path/filepath"
	"strings"
)

// OutputName derives the output file name from the input name:
// "movimento.pdf" becomes "movimento_extraido.csv" for ext ".csv".
func OutputName(input, ext string) string {
	base := filepath.Base(input)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "relatorio"
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return stem + "_extraido" + ext
}
