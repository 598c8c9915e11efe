package importer

import (
	"errors"
	"fmt"
	"os"

	"github.com/artis-laminates/ledgerimport/internal/ledger"
	"github.com/artis-laminates/ledgerimport/internal/sheet"
)

// XLSXReader streams a workbook sheet.
type XLSXReader struct{}

// Format returns the file extension handled.
func (XLSXReader) Format() string { return "xlsx" }

// Open opens path and streams sheet, or the first sheet when sheet is empty.
func (XLSXReader) Open(path, sheetName string) (Source, error) {
	wb, err := sheet.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	tbl, err := wb.Table(sheetName)
	if err != nil {
		wb.Close()
		return nil, err
	}
	return &workbookSource{Table: tbl, wb: wb}, nil
}

type workbookSource struct {
	*sheet.Table
	wb *sheet.Workbook
}

func (s *workbookSource) Close() error {
	return errors.Join(s.Table.Close(), s.wb.Close())
}

// CSVReader loads a csv ledger into memory. The sheet name is ignored.
type CSVReader struct{}

// Format returns the file extension handled.
func (CSVReader) Format() string { return "csv" }

// Open reads the whole file.
func (CSVReader) Open(path, _ string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	tbl, err := sheet.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	return memorySource{tbl}, nil
}

type memorySource struct {
	*ledger.MemoryTable
}

func (memorySource) Close() error { return nil }
