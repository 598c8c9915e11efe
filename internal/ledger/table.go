// Package ledger turns a two-row-header inventory sheet into transactions.
//
// A sheet's first header row carries labels (the product code column, "OPEN",
// "IN", consumption labels); the second carries a dd/mm/yy date under every
// movement column. DecodeHeader turns those two rows into a ColumnPlan once,
// and Extract walks the data rows against that plan.
package ledger

import "iter"

// Row is one data row. Number is the 1-based sheet row, for reporting.
type Row struct {
	Number int
	Cells  []string
}

// Cell returns the raw cell at idx, or "" past the row end.
func (r Row) Cell(idx int) string {
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return r.Cells[idx]
}

// Table is a sheet with a two-row header and a stream of data rows. Rows may
// be iterated once; Err reports any read failure after iteration stops.
type Table interface {
	Header() (row1, row2 []string)
	Rows() iter.Seq[Row]
	Err() error
}

// MemoryTable is a Table over rows already in memory.
type MemoryTable struct {
	Header1 []string
	Header2 []string
	Data    [][]string
	// FirstRow is the sheet row number of Data[0]; 3 when zero.
	FirstRow int
}

// Header returns the two header rows.
func (t *MemoryTable) Header() (row1, row2 []string) {
	return t.Header1, t.Header2
}

// Rows yields every data row in order.
func (t *MemoryTable) Rows() iter.Seq[Row] {
	first := t.FirstRow
	if first == 0 {
		first = 3
	}
	return func(yield func(Row) bool) {
		for i, cells := range t.Data {
			if !yield(Row{Number: first + i, Cells: cells}) {
				return
			}
		}
	}
}

// Err always returns nil.
func (t *MemoryTable) Err() error { return nil }
