package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// DelimitedWriter writes records as delimited text, one row per record,
// behind the profile's header labels. Rows are flushed on every call so
// output reaches the underlying writer batch by batch.
type DelimitedWriter struct {
	out    *gocsv.SafeCSVWriter
	header []string
}

// NewDelimitedWriter returns a writer using the profile's delimiter and labels.
func NewDelimitedWriter(w io.Writer, profile *config.Profile) *DelimitedWriter {
	cw := csv.NewWriter(w)
	cw.Comma = profile.DelimiterRune()
	return &DelimitedWriter{
		out:    gocsv.NewSafeCSVWriter(cw),
		header: append([]string(nil), profile.Columns...),
	}
}

// WriteHeader writes the column labels.
func (w *DelimitedWriter) WriteHeader() error {
	if err := w.out.Write(w.header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	w.out.Flush()
	return w.out.Error()
}

// WriteRecords appends records and flushes them.
func (w *DelimitedWriter) WriteRecords(records []models.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := gocsv.MarshalCSVWithoutHeaders(records, w.out); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	w.out.Flush()
	return w.out.Error()
}

// Close flushes pending output. The underlying writer is left open.
func (w *DelimitedWriter) Close() error {
	w.out.Flush()
	return w.out.Error()
}
