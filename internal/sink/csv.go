package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// CSVHeader is the canonical record shape, in boundary field order.
const CSVHeader = "product_id,direction,quantity,occurred_on,note,include_in_aggregate"

const (
	numFields    = 6
	colProductID = 0
	colDirection = 1
	colQuantity  = 2
	colDate      = 3
	colNote      = 4
	colInclude   = 5
)

// CSVSink writes canonical records as CSV.
type CSVSink struct {
	cw      *csv.Writer
	started bool
}

// NewCSVSink writes to w. The header is written with the first record, or
// on Close for an empty run.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{cw: csv.NewWriter(w)}
}

func (s *CSVSink) header() error {
	if s.started {
		return nil
	}
	s.started = true
	if err := s.cw.Write(strings.Split(CSVHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

// Write appends one row per transaction.
func (s *CSVSink) Write(_ context.Context, txns []model.Transaction) (int, error) {
	if err := s.header(); err != nil {
		return 0, err
	}
	for i, txn := range txns {
		if err := s.cw.Write(MarshalTransaction(txn)); err != nil {
			return i, fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	return len(txns), nil
}

// Close flushes buffered rows.
func (s *CSVSink) Close(_ context.Context) error {
	if err := s.header(); err != nil {
		return err
	}
	s.cw.Flush()
	return s.cw.Error()
}

// MarshalTransaction converts a Transaction to a canonical CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colProductID] = string(txn.ProductID)
	row[colDirection] = txn.Direction.String()
	row[colQuantity] = txn.Quantity.String()
	row[colDate] = txn.OccurredOn.Format(model.DateFormat)
	row[colNote] = txn.Note
	row[colInclude] = strconv.FormatBool(txn.IncludeInAggregate)
	return row
}

// UnmarshalTransaction converts a canonical CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	dir, err := model.ParseDirection(record[colDirection])
	if err != nil {
		return model.Transaction{}, err
	}

	qty, err := decimal.NewFromString(record[colQuantity])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing quantity %q: %w", record[colQuantity], err)
	}
	if !qty.IsPositive() {
		return model.Transaction{}, fmt.Errorf("quantity %s must be positive", qty)
	}

	day, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing occurred_on %q: %w", record[colDate], err)
	}

	include, err := strconv.ParseBool(record[colInclude])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing include_in_aggregate %q: %w", record[colInclude], err)
	}

	return model.Transaction{
		ProductID:          model.ProductID(record[colProductID]),
		Direction:          dir,
		Quantity:           qty,
		OccurredOn:         day,
		Note:               record[colNote],
		IncludeInAggregate: include,
	}, nil
}

// ReadTransactions reads a canonical CSV written by CSVSink.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
