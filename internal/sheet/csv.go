package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/artis-laminates/ledgerimport/internal/ledger"
)

// ReadCSV reads a csv ledger laid out like a worksheet: two header rows,
// then data rows. Rows may have differing widths.
func ReadCSV(r io.Reader) (*ledger.MemoryTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrNoHeader
	}

	return &ledger.MemoryTable{
		Header1:  records[0],
		Header2:  records[1],
		Data:     records[2:],
		FirstRow: 3,
	}, nil
}
