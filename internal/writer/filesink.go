package writer

import (
	"errors"
	"fmt"
	"os"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// stagedSuffix marks output that is still being written.
const stagedSuffix = ".part"

// FileSink writes to "<path>.part" and only renames it to path on Commit, so
// an aborted run never leaves a file that looks complete.
type FileSink struct {
	path   string
	staged string
	file   *os.File
	sink   RecordSink
	done   bool
}

// CreateFile stages an output file for format at path.
func CreateFile(path, format string, profile *config.Profile) (*FileSink, error) {
	staged := path + stagedSuffix
	f, err := os.Create(staged)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	sink, err := New(format, f, profile)
	if err != nil {
		f.Close()
		os.Remove(staged)
		return nil, err
	}
	return &FileSink{path: path, staged: staged, file: f, sink: sink}, nil
}

// Path returns the final output path.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) WriteHeader() error { return s.sink.WriteHeader() }

func (s *FileSink) WriteRecords(records []models.TransactionRecord) error {
	return s.sink.WriteRecords(records)
}

// Close commits the output.
func (s *FileSink) Close() error { return s.Commit() }

// Commit finalises the output and moves it into place.
func (s *FileSink) Commit() error {
	if s.done {
		return nil
	}
	s.done = true

	if err := s.sink.Close(); err != nil {
		s.file.Close()
		os.Remove(s.staged)
		return err
	}
	if err := s.file.Close(); err != nil {
		os.Remove(s.staged)
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(s.staged, s.path); err != nil {
		os.Remove(s.staged)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// Abort discards the staged output. It is a no-op after Commit.
func (s *FileSink) Abort() error {
	if s.done {
		return nil
	}
	s.done = true

	if d, ok := s.sink.(interface{ Discard() }); ok {
		d.Discard()
	}
	closeErr := s.file.Close()
	if err := os.Remove(s.staged); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return closeErr
}
