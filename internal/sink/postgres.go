package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// Beginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

const insertTransaction = `INSERT INTO "Transactions" (id, "productId", type, quantity, date, notes, "includeInAvg", "operationId")
VALUES ($1, $2, $3::"enum_Transactions_type", $4, $5, $6, $7, $8)`

// ErrSinkClosed is returned by writes after Close or Abort.
var ErrSinkClosed = errors.New("sink already closed")

// PostgresSink inserts transactions directly into the Transactions table.
// All writes of one run share a single database transaction: Close commits,
// Abort (or any failed Write) rolls back.
type PostgresSink struct {
	db          Beginner
	operationID string
	newID       func() uuid.UUID
	tx          pgx.Tx
	closed      bool
}

// NewPostgresSink tags every inserted row with operationID (may be empty).
func NewPostgresSink(db Beginner, operationID string) *PostgresSink {
	return &PostgresSink{db: db, operationID: operationID, newID: uuid.New}
}

// Write queues one INSERT per transaction and sends them as a single batch.
func (s *PostgresSink) Write(ctx context.Context, txns []model.Transaction) (int, error) {
	if s.closed {
		return 0, ErrSinkClosed
	}
	if len(txns) == 0 {
		return 0, nil
	}
	if s.tx == nil {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return 0, fmt.Errorf("beginning transaction: %w", err)
		}
		s.tx = tx
	}

	var opID any
	if s.operationID != "" {
		opID = s.operationID
	}

	batch := &pgx.Batch{}
	for _, txn := range txns {
		batch.Queue(insertTransaction,
			s.newID().String(),
			string(txn.ProductID),
			txn.Direction.String(),
			txn.Quantity,
			txn.OccurredOn,
			txn.Note,
			txn.IncludeInAggregate,
			opID,
		)
	}

	br := s.tx.SendBatch(ctx, batch)
	for i := range txns {
		if _, err := br.Exec(); err != nil {
			br.Close()
			s.rollback(ctx)
			return 0, fmt.Errorf("inserting transaction %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		s.rollback(ctx)
		return 0, fmt.Errorf("closing batch: %w", err)
	}
	return len(txns), nil
}

// Close commits everything written. Closing an unused sink is a no-op.
func (s *PostgresSink) Close(ctx context.Context) error {
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	if s.tx == nil {
		return nil
	}
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Abort rolls back everything written.
func (s *PostgresSink) Abort(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.tx == nil {
		return nil
	}
	if err := s.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

func (s *PostgresSink) rollback(ctx context.Context) {
	_ = s.tx.Rollback(ctx)
	s.closed = true
}
