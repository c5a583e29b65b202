// Package writer serialises transaction records to the output document.
package writer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrUnsupportedFormat is returned for an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// RecordSink receives the header once and then records in document order.
type RecordSink interface {
	WriteHeader() error
	WriteRecords(records []models.TransactionRecord) error
	Close() error
}

// New returns the sink for format writing to w.
func New(format string, w io.Writer, profile *config.Profile) (RecordSink, error) {
	switch NormalizeFormat(format) {
	case FormatCSV:
		return NewDelimitedWriter(w, profile), nil
	case FormatXLSX:
		return NewXLSXWriter(w, profile), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// NormalizeFormat lower-cases format; empty means csv.
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	format = strings.TrimPrefix(format, ".")
	if format == "" || format == "txt" {
		return FormatCSV
	}
	return format
}

// Extension returns the file extension, including the dot, for format.
func Extension(format string) string {
	if NormalizeFormat(format) == FormatXLSX {
		return ".xlsx"
	}
	return ".csv"
}

// ContentType returns the MIME type served for format.
func ContentType(format string) string {
	if NormalizeFormat(format) == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Collector keeps the first Limit records it sees and counts the rest.
type Collector struct {
	Limit   int
	Records []models.TransactionRecord
	Count   int
}

func (c *Collector) WriteHeader() error { return nil }

func (c *Collector) WriteRecords(records []models.TransactionRecord) error {
	for _, rec := range records {
		if len(c.Records) < c.Limit {
			c.Records = append(c.Records, rec)
		}
	}
	c.Count += len(records)
	return nil
}

func (c *Collector) Close() error { return nil }

type multiSink []RecordSink

// Multi fans every call out to all sinks, stopping at the first error.
func Multi(sinks ...RecordSink) RecordSink {
	return multiSink(sinks)
}

func (m multiSink) WriteHeader() error {
	for _, s := range m {
		if err := s.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) WriteRecords(records []models.TransactionRecord) error {
	for _, s := range m {
		if err := s.WriteRecords(records); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
