package ledger

import (
	"fmt"
	"io"
)

// UnresolvedCode is a row whose product code is not in the catalog.
type UnresolvedCode struct {
	Row  int
	Code string
}

// Summary counts how one extraction disposed of every row and cell.
type Summary struct {
	RowsTotal                 int
	RowsSkippedNoCode         int
	RowsSkippedUnresolvedCode int
	CellsSkippedNonPositive   int
	TransactionsProduced      int

	MovementColumns int
	Unresolved      []UnresolvedCode
	Excluded        []ExcludedColumn
}

// RowsResolved is the number of rows whose code resolved.
func (s *Summary) RowsResolved() int {
	return s.RowsTotal - s.RowsSkippedNoCode - s.RowsSkippedUnresolvedCode
}

// CellsExamined counts every row x movement-column cell accounted for.
// Cells of skipped rows are counted through their row. After a full pass it
// equals RowsTotal * MovementColumns.
func (s *Summary) CellsExamined() int {
	skippedRows := s.RowsSkippedNoCode + s.RowsSkippedUnresolvedCode
	return s.TransactionsProduced + s.CellsSkippedNonPositive + skippedRows*s.MovementColumns
}

// Report writes a human-readable summary, itemizing every unresolved code
// and excluded column.
func (s *Summary) Report(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("Movement columns:        %d", s.MovementColumns),
		fmt.Sprintf("Rows read:               %d", s.RowsTotal),
		fmt.Sprintf("Rows skipped (no code):  %d", s.RowsSkippedNoCode),
		fmt.Sprintf("Rows skipped (unknown):  %d", s.RowsSkippedUnresolvedCode),
		fmt.Sprintf("Cells skipped (<= 0):    %d", s.CellsSkippedNonPositive),
		fmt.Sprintf("Transactions produced:   %d", s.TransactionsProduced),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	if len(s.Unresolved) > 0 {
		if _, err := fmt.Fprintln(w, "\nUnresolved product codes:"); err != nil {
			return err
		}
		for _, u := range s.Unresolved {
			if _, err := fmt.Fprintf(w, "  row %d: %q\n", u.Row, u.Code); err != nil {
				return err
			}
		}
	}

	if len(s.Excluded) > 0 {
		if _, err := fmt.Fprintln(w, "\nExcluded columns:"); err != nil {
			return err
		}
		for _, c := range s.Excluded {
			if _, err := fmt.Fprintf(w, "  column %d %q / %q: %s\n", c.Index+1, c.Label, c.SubLabel, c.Reason); err != nil {
				return err
			}
		}
	}
	return nil
}
