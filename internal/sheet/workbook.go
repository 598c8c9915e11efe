// Package sheet reads ledger tables from xlsx workbooks and csv files.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/xuri/excelize/v2"

	"github.com/artis-laminates/ledgerimport/internal/ledger"
)

// ErrNoHeader means the sheet has fewer than two rows.
var ErrNoHeader = errors.New("sheet has no two-row header")

// rawCells reads stored values, so quantities are not rounded by number
// formats and date-typed header cells show up as serials, not text.
var rawCells = excelize.Options{RawCellValue: true}

// Workbook is an open xlsx file.
type Workbook struct {
	f *excelize.File
}

// OpenWorkbook opens an xlsx file from disk.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

// ReadWorkbook opens an xlsx stream.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

// Sheets lists sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Table streams the named sheet, or the first sheet when name is empty. The
// first two rows are read eagerly as the header.
func (w *Workbook) Table(name string) (*Table, error) {
	if name == "" {
		sheets := w.f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		name = sheets[0]
	}

	rows, err := w.f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}

	t := &Table{name: name, rows: rows}
	for i := range t.header {
		if !rows.Next() {
			rows.Close()
			if err := rows.Error(); err != nil {
				return nil, fmt.Errorf("reading sheet %q header: %w", name, err)
			}
			return nil, fmt.Errorf("sheet %q: %w", name, ErrNoHeader)
		}
		cols, err := rows.Columns(rawCells)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("reading sheet %q header: %w", name, err)
		}
		t.header[i] = cols
	}
	return t, nil
}

// Table is a streaming ledger.Table over one worksheet.
type Table struct {
	name   string
	rows   *excelize.Rows
	header [2][]string
	used   bool
	err    error
}

var _ ledger.Table = (*Table)(nil)

// Name returns the worksheet name.
func (t *Table) Name() string { return t.name }

// Header returns the label row and the sub-label row.
func (t *Table) Header() (row1, row2 []string) {
	return t.header[0], t.header[1]
}

// Rows streams data rows once, starting at sheet row 3.
func (t *Table) Rows() iter.Seq[ledger.Row] {
	return func(yield func(ledger.Row) bool) {
		if t.used {
			return
		}
		t.used = true

		for n := 3; t.rows.Next(); n++ {
			cols, err := t.rows.Columns(rawCells)
			if err != nil {
				t.err = fmt.Errorf("reading sheet %q row %d: %w", t.name, n, err)
				return
			}
			if !yield(ledger.Row{Number: n, Cells: cols}) {
				return
			}
		}
		if err := t.rows.Error(); err != nil {
			t.err = fmt.Errorf("reading sheet %q: %w", t.name, err)
		}
	}
}

// Err reports the first read error seen by Rows.
func (t *Table) Err() error { return t.err }

// Close releases the row iterator. The Workbook stays open.
func (t *Table) Close() error {
	return t.rows.Close()
}
