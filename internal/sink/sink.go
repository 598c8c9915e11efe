// Package sink persists or serializes extracted transactions.
package sink

import (
	"context"
	"fmt"
	"iter"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// Sink accepts batches of transactions. Write returns how many records it
// accepted and must not retain the slice; Close finalizes the output
// (commit, footer, flush).
type Sink interface {
	Write(ctx context.Context, txns []model.Transaction) (int, error)
	Close(ctx context.Context) error
}

// Aborter is implemented by sinks that can discard everything written so far.
type Aborter interface {
	Abort(ctx context.Context) error
}

// Kind names a sink implementation.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindScript   Kind = "script"
	KindCSV      Kind = "csv"
)

// ParseKind validates a sink name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindPostgres, KindScript, KindCSV:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sink %q (want postgres, script or csv)", s)
	}
}

// DefaultBatchSize matches the page size used for direct inserts.
const DefaultBatchSize = 100

// Drain pulls seq into batches of batchSize and writes each to s. It stops
// at the first sink error and returns it unchanged with the count written so
// far. Drain does not Close s.
func Drain(ctx context.Context, seq iter.Seq[model.Transaction], s Sink, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	written := 0
	batch := make([]model.Transaction, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.Write(ctx, batch)
		written += n
		batch = batch[:0]
		return err
	}

	for txn := range seq {
		batch = append(batch, txn)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}
