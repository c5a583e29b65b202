package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// SheetName is the worksheet holding the transactions.
const SheetName = "Transacoes"

// XLSXWriter streams records into a single-sheet workbook. The workbook is
// written to the underlying writer on Close.
type XLSXWriter struct {
	w      io.Writer
	header []string

	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
	err    error
}

// NewXLSXWriter returns a workbook writer with the profile's header labels.
func NewXLSXWriter(w io.Writer, profile *config.Profile) *XLSXWriter {
	x := &XLSXWriter{
		w:      w,
		header: append([]string(nil), profile.Columns...),
		file:   excelize.NewFile(),
		row:    1,
	}
	if err := x.file.SetSheetName("Sheet1", SheetName); err != nil {
		x.err = fmt.Errorf("failed to name sheet: %w", err)
		return x
	}
	x.stream, x.err = x.file.NewStreamWriter(SheetName)
	return x
}

// WriteHeader writes the bold header row.
func (x *XLSXWriter) WriteHeader() error {
	if x.err != nil {
		return x.err
	}
	style, err := x.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	cells := make([]interface{}, len(x.header))
	for i, label := range x.header {
		cells[i] = excelize.Cell{StyleID: style, Value: label}
	}
	return x.setRow(cells)
}

// WriteRecords appends one row per record.
func (x *XLSXWriter) WriteRecords(records []models.TransactionRecord) error {
	if x.err != nil {
		return x.err
	}
	for _, rec := range records {
		values := rec.Values()
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		if err := x.setRow(cells); err != nil {
			return err
		}
	}
	return nil
}

// Close finalises the workbook and writes it out.
func (x *XLSXWriter) Close() error {
	defer x.file.Close()
	if x.err != nil {
		return x.err
	}
	if err := x.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := x.file.WriteTo(x.w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Discard releases the workbook without writing it.
func (x *XLSXWriter) Discard() {
	x.file.Close()
}

func (x *XLSXWriter) setRow(cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	if err := x.stream.SetRow(cell, cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", x.row, err)
	}
	x.row++
	return nil
}
