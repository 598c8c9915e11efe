package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// Header is the CSV header for a catalog file.
const Header = "product_id,aliases"

const (
	numFields      = 2
	colProductID   = 0
	colAliases     = 1
	aliasSeparator = ";"
)

// ReadEntries reads a catalog CSV. Aliases are ';'-separated in one column.
func ReadEntries(r io.Reader) ([]model.CatalogEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading catalog CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var entries []model.CatalogEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes a catalog CSV including the header.
func WriteEntries(w io.Writer, entries []model.CatalogEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalEntry converts a CatalogEntry to a CSV row.
func MarshalEntry(e model.CatalogEntry) []string {
	row := make([]string, numFields)
	row[colProductID] = string(e.ID)
	row[colAliases] = strings.Join(e.Aliases, aliasSeparator)
	return row
}

// UnmarshalEntry converts a CSV row to a CatalogEntry.
func UnmarshalEntry(record []string) (model.CatalogEntry, error) {
	if len(record) != numFields {
		return model.CatalogEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id := strings.TrimSpace(record[colProductID])
	if id == "" {
		return model.CatalogEntry{}, fmt.Errorf("empty product_id")
	}

	var aliases []string
	for _, a := range strings.Split(record[colAliases], aliasSeparator) {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}

	return model.CatalogEntry{ID: model.ProductID(id), Aliases: aliases}, nil
}
