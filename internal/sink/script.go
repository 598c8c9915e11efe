package sink

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// ScriptMeta is written into the script header.
type ScriptMeta struct {
	Source      string
	OperationID string
	GeneratedAt time.Time
}

// ScriptSink renders transactions as a replayable SQL script wrapped in a
// single BEGIN/COMMIT.
type ScriptSink struct {
	w       io.Writer
	meta    ScriptMeta
	newID   func() uuid.UUID
	started bool
	total   int
}

// NewScriptSink writes to w. Nothing is written until the first Write or Close.
func NewScriptSink(w io.Writer, meta ScriptMeta) *ScriptSink {
	return &ScriptSink{w: w, meta: meta, newID: uuid.New}
}

func (s *ScriptSink) begin() error {
	if s.started {
		return nil
	}
	s.started = true
	_, err := fmt.Fprintf(s.w,
		"-- Ledger import\n-- Source: %s\n-- Operation: %s\n-- Generated: %s\n\nBEGIN;\n",
		s.meta.Source, s.meta.OperationID, s.meta.GeneratedAt.Format(time.RFC3339))
	return err
}

// Write appends one commented INSERT per transaction.
func (s *ScriptSink) Write(_ context.Context, txns []model.Transaction) (int, error) {
	if err := s.begin(); err != nil {
		return 0, fmt.Errorf("writing script header: %w", err)
	}
	for i, txn := range txns {
		if _, err := io.WriteString(s.w, s.statement(txn)); err != nil {
			return i, fmt.Errorf("writing statement: %w", err)
		}
		s.total++
	}
	return len(txns), nil
}

// Close writes the total and COMMIT.
func (s *ScriptSink) Close(_ context.Context) error {
	if err := s.begin(); err != nil {
		return fmt.Errorf("writing script header: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "\n-- Total transactions: %d\nCOMMIT;\n", s.total); err != nil {
		return fmt.Errorf("writing script footer: %w", err)
	}
	return nil
}

func (s *ScriptSink) statement(txn model.Transaction) string {
	day := txn.OccurredOn.Format(model.DateFormat)
	var b strings.Builder
	fmt.Fprintf(&b, "\n-- %s: %s %s on %s\n", txn.ProductID, txn.Quantity.String(), txn.Direction, day)
	b.WriteString(insertPrefix)
	fmt.Fprintf(&b, "VALUES (%s, %s, %s::\"enum_Transactions_type\", %s, %s::date, %s, %t, %s);\n",
		quote(s.newID().String()),
		quote(string(txn.ProductID)),
		quote(txn.Direction.String()),
		txn.Quantity.String(),
		quote(day),
		quote(txn.Note),
		txn.IncludeInAggregate,
		nullable(s.meta.OperationID),
	)
	return b.String()
}

const insertPrefix = `INSERT INTO "Transactions" (id, "productId", type, quantity, date, notes, "includeInAvg", "operationId")` + "\n"

// quote renders a SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func nullable(s string) string {
	if s == "" {
		return "NULL"
	}
	return quote(s)
}
