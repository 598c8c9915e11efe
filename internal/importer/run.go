package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/artis-laminates/ledgerimport/internal/ledger"
	"github.com/artis-laminates/ledgerimport/internal/sink"
)

// DefaultNote prefixes every generated transaction note.
const DefaultNote = "Stock import"

// Params configures one import run.
type Params struct {
	Path  string
	Sheet string

	// Directory resolves product codes. The caller builds it once per
	// catalog load.
	Directory ledger.Resolver

	// Sink receives the transactions. A nil Sink is a dry run: transactions
	// are extracted and counted but not written anywhere.
	Sink sink.Sink

	Note        string
	Header      ledger.HeaderOptions
	BatchSize   int
	OperationID string
	Readers     *Registry
	Logger      *slog.Logger
}

// Result describes a finished run.
type Result struct {
	File        string
	OperationID string
	Summary     *ledger.Summary
	Written     int
}

// Run imports one ledger file. A missing code column, a table read failure
// or a sink failure aborts the run and the sink; per-row and per-cell
// problems only show up in the Summary.
func Run(ctx context.Context, p Params) (*Result, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	reg := p.Readers
	if reg == nil {
		reg = DefaultRegistry()
	}
	if p.Directory == nil {
		return nil, errors.New("no product directory")
	}
	note := p.Note
	if note == "" {
		note = DefaultNote
	}

	rd := reg.ForPath(p.Path)
	if rd == nil {
		return nil, fmt.Errorf("unsupported ledger file %q", filepath.Base(p.Path))
	}

	log = log.With("file", filepath.Base(p.Path), "operation_id", p.OperationID)
	log.Info("import started", "format", rd.Format(), "sheet", p.Sheet)

	src, err := rd.Open(p.Path, p.Sheet)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p.Path, err)
	}
	defer src.Close()

	row1, row2 := src.Header()
	plan, err := ledger.DecodeHeader(row1, row2, p.Header)
	if err != nil {
		return nil, fmt.Errorf("decoding header of %s: %w", p.Path, err)
	}
	log.Debug("header decoded", "code_column", plan.CodeColumn, "movement_columns", len(plan.Movements))
	for _, ex := range plan.Excluded {
		log.Warn("column excluded", "column", ex.Index+1, "label", ex.Label, "sub_label", ex.SubLabel, "reason", ex.Reason)
	}

	seq, sum := ledger.Extract(src, plan, p.Directory, note)
	res := &Result{File: p.Path, OperationID: p.OperationID, Summary: sum}

	if p.Sink == nil {
		for range seq {
		}
	} else {
		res.Written, err = sink.Drain(ctx, seq, p.Sink, p.BatchSize)
		if err != nil {
			abort(ctx, log, p.Sink)
			return res, fmt.Errorf("writing transactions: %w", err)
		}
	}

	if err := src.Err(); err != nil {
		if p.Sink != nil {
			abort(ctx, log, p.Sink)
		}
		return res, err
	}

	for _, u := range sum.Unresolved {
		log.Warn("unresolved product code", "row", u.Row, "code", u.Code)
	}

	if p.Sink != nil {
		if err := p.Sink.Close(ctx); err != nil {
			return res, fmt.Errorf("closing sink: %w", err)
		}
	}

	log.Info("import finished",
		"rows", sum.RowsTotal,
		"produced", sum.TransactionsProduced,
		"written", res.Written,
		"skipped_no_code", sum.RowsSkippedNoCode,
		"skipped_unresolved", sum.RowsSkippedUnresolvedCode,
		"skipped_cells", sum.CellsSkippedNonPositive,
	)
	return res, nil
}

func abort(ctx context.Context, log *slog.Logger, s sink.Sink) {
	a, ok := s.(sink.Aborter)
	if !ok {
		return
	}
	if err := a.Abort(ctx); err != nil {
		log.Error("aborting sink", "error", err)
	}
}
