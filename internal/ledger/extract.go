package ledger

import (
	"iter"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// noteMonthFormat renders the movement month in notes ("Jan 2024").
const noteMonthFormat = "Jan 2006"

// Extract walks every data row against plan and yields one transaction per
// positive movement cell. The sequence is lazy and single-pass: a second
// range over it yields nothing. The returned Summary is filled in as the
// sequence is consumed and is final once iteration stops.
//
// Each transaction's note is "<note> - <Mon YYYY>" for its column date.
func Extract(table Table, plan *ColumnPlan, dir Resolver, note string) (iter.Seq[model.Transaction], *Summary) {
	sum := &Summary{
		MovementColumns: len(plan.Movements),
		Excluded:        plan.Excluded,
	}

	consumed := false
	seq := func(yield func(model.Transaction) bool) {
		if consumed {
			return
		}
		consumed = true

		for row := range table.Rows() {
			sum.RowsTotal++

			res := ResolveRow(row, plan, dir)
			switch res.Status {
			case RowSkipNoCode:
				sum.RowsSkippedNoCode++
				continue
			case RowSkipUnresolvedCode:
				sum.RowsSkippedUnresolvedCode++
				sum.Unresolved = append(sum.Unresolved, UnresolvedCode{Row: row.Number, Code: res.Code})
				continue
			}

			for _, col := range plan.Movements {
				qty, ok := parseQuantity(row.Cell(col.Index))
				if !ok {
					sum.CellsSkippedNonPositive++
					continue
				}
				sum.TransactionsProduced++
				txn := model.Transaction{
					ProductID:          res.ProductID,
					Direction:          col.Direction,
					Quantity:           qty,
					OccurredOn:         col.Date,
					Note:               note + " - " + col.Date.Format(noteMonthFormat),
					IncludeInAggregate: true,
				}
				if !yield(txn) {
					return
				}
			}
		}
	}
	return seq, sum
}

// parseQuantity accepts a strictly positive number. Thousands separators
// are tolerated.
func parseQuantity(cell string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return decimal.Decimal{}, false
	}
	q, err := decimal.NewFromString(s)
	if err != nil || !q.IsPositive() {
		return decimal.Decimal{}, false
	}
	return q, true
}
