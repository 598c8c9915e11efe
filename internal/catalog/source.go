package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// Source supplies catalog entries in a stable order.
type Source interface {
	Entries(ctx context.Context) ([]model.CatalogEntry, error)
}

// BuildError reports that the catalog could not be read. It aborts the run.
type BuildError struct {
	Source string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building product directory from %s: %v", e.Source, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Load reads every entry from src and builds a Directory.
func Load(ctx context.Context, src Source) (*Directory, error) {
	entries, err := src.Entries(ctx)
	if err != nil {
		return nil, &BuildError{Source: sourceName(src), Err: err}
	}
	return Build(entries), nil
}

func sourceName(src Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}

// CSVSource reads a catalog CSV file (see ReadEntries).
type CSVSource struct {
	Path string
}

func (s CSVSource) String() string { return s.Path }

// Entries opens and parses the catalog file.
func (s CSVSource) Entries(_ context.Context) ([]model.CatalogEntry, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	return ReadEntries(f)
}

// StaticSource serves a fixed slice of entries.
type StaticSource []model.CatalogEntry

// Entries returns the slice unchanged.
func (s StaticSource) Entries(_ context.Context) ([]model.CatalogEntry, error) {
	return s, nil
}
