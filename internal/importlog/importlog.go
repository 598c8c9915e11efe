// Package importlog keeps a CSV audit trail of import runs.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp         time.Time
	File              string
	OperationID       string
	Sink              string
	Rows              int
	Produced          int
	SkippedNoCode     int
	SkippedUnresolved int
	SkippedCells      int
	Written           int
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,file,operation_id,sink,rows,produced,skipped_no_code,skipped_unresolved,skipped_cells,written"

const (
	numFields            = 10
	logDir               = "logs"
	logFile              = "logs/import-log.csv"
	colTimestamp         = 0
	colFile              = 1
	colOperationID       = 2
	colSink              = 3
	colRows              = 4
	colProduced          = 5
	colSkippedNoCode     = 6
	colSkippedUnresolved = 7
	colSkippedCells      = 8
	colWritten           = 9
)

// counts lists the integer columns in header order.
var counts = [...]struct {
	col  int
	name string
	get  func(*Entry) *int
}{
	{colRows, "rows", func(e *Entry) *int { return &e.Rows }},
	{colProduced, "produced", func(e *Entry) *int { return &e.Produced }},
	{colSkippedNoCode, "skipped_no_code", func(e *Entry) *int { return &e.SkippedNoCode }},
	{colSkippedUnresolved, "skipped_unresolved", func(e *Entry) *int { return &e.SkippedUnresolved }},
	{colSkippedCells, "skipped_cells", func(e *Entry) *int { return &e.SkippedCells }},
	{colWritten, "written", func(e *Entry) *int { return &e.Written }},
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colFile] = e.File
	row[colOperationID] = e.OperationID
	row[colSink] = e.Sink
	for _, c := range counts {
		row[c.col] = strconv.Itoa(*c.get(&e))
	}
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	e := Entry{
		Timestamp:   ts,
		File:        record[colFile],
		OperationID: record[colOperationID],
		Sink:        record[colSink],
	}
	for _, c := range counts {
		n, err := strconv.Atoi(record[c.col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing %s %q: %w", c.name, record[c.col], err)
		}
		*c.get(&e) = n
	}
	return e, nil
}

// Append writes entries to <repoRoot>/logs/import-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/import-log.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	path := filepath.Join(repoRoot, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
