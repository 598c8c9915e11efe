package ledger

import (
	"bytes"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artis-laminates/ledgerimport/internal/catalog"
	"github.com/artis-laminates/ledgerimport/internal/model"
)

type mapResolver map[string]model.ProductID

func (m mapResolver) Resolve(alias string) (model.ProductID, bool) {
	id, ok := m[alias]
	return id, ok
}

func janTable(rows ...[]string) *MemoryTable {
	return &MemoryTable{
		Header1: []string{"DESIGN CODE", "OPEN", "JAN CONS."},
		Header2: []string{"", "01/01/24", "31/01/24"},
		Data:    rows,
	}
}

func run(t *testing.T, table *MemoryTable, dir Resolver) ([]model.Transaction, *Summary) {
	t.Helper()
	plan, err := DecodeHeader(table.Header1, table.Header2, HeaderOptions{})
	require.NoError(t, err)
	seq, sum := Extract(table, plan, dir, "Monthly upload")
	return slices.Collect(seq), sum
}

func TestExtract_ScenarioA(t *testing.T) {
	txns, sum := run(t, janTable([]string{"901", "500", "42"}), mapResolver{"901": "P1"})

	require.Len(t, txns, 2)
	assert.Equal(t, model.ProductID("P1"), txns[0].ProductID)
	assert.Equal(t, model.DirectionIn, txns[0].Direction)
	assert.Equal(t, "500", txns[0].Quantity.String())
	assert.Equal(t, "2024-01-01", txns[0].OccurredOn.Format(model.DateFormat))
	assert.Equal(t, "Monthly upload - Jan 2024", txns[0].Note)
	assert.True(t, txns[0].IncludeInAggregate)

	assert.Equal(t, model.DirectionOut, txns[1].Direction)
	assert.Equal(t, "42", txns[1].Quantity.String())
	assert.Equal(t, "2024-01-31", txns[1].OccurredOn.Format(model.DateFormat))

	assert.Equal(t, 1, sum.RowsTotal)
	assert.Equal(t, 2, sum.TransactionsProduced)
	assert.Equal(t, 1, sum.RowsResolved())
}

func TestExtract_ScenarioB_NanCode(t *testing.T) {
	txns, sum := run(t, janTable([]string{"nan", "500", "42"}, []string{"", "1", "1"}), mapResolver{"901": "P1"})

	assert.Empty(t, txns)
	assert.Equal(t, 2, sum.RowsSkippedNoCode)
	assert.Equal(t, 0, sum.CellsSkippedNonPositive)
}

func TestExtract_ScenarioC_UnresolvedCode(t *testing.T) {
	txns, sum := run(t, janTable([]string{"999", "500", "42"}), mapResolver{"901": "P1"})

	assert.Empty(t, txns)
	assert.Equal(t, 1, sum.RowsSkippedUnresolvedCode)
	require.Len(t, sum.Unresolved, 1)
	assert.Equal(t, UnresolvedCode{Row: 3, Code: "999"}, sum.Unresolved[0])
}

func TestExtract_ScenarioD_ZeroCell(t *testing.T) {
	txns, sum := run(t, janTable([]string{"901", "0", "42"}), mapResolver{"901": "P1"})

	require.Len(t, txns, 1)
	assert.Equal(t, model.DirectionOut, txns[0].Direction)
	assert.Equal(t, 1, sum.CellsSkippedNonPositive)
}

func TestExtract_ScenarioE_FirstSeenAlias(t *testing.T) {
	dir := catalog.Build([]model.CatalogEntry{
		{ID: "P1", Aliases: []string{"ABC"}},
		{ID: "P2", Aliases: []string{"ABC"}},
	})
	txns, _ := run(t, janTable([]string{"ABC", "5", ""}), dir)

	require.Len(t, txns, 1)
	assert.Equal(t, model.ProductID("P1"), txns[0].ProductID)
}

func TestExtract_SkipsBadCells(t *testing.T) {
	table := &MemoryTable{
		Header1: []string{"CODE", "OPEN", "A", "B", "C", "D"},
		Header2: []string{"", "1/1/24", "2/1/24", "3/1/24", "4/1/24", "5/1/24"},
		Data: [][]string{
			{"901", "", "-3", "abc", "1,250.50", "nan"},
		},
	}
	txns, sum := run(t, table, mapResolver{"901": "P1"})

	require.Len(t, txns, 1)
	assert.Equal(t, "1250.5", txns[0].Quantity.String())
	assert.Equal(t, 4, sum.CellsSkippedNonPositive)
}

func TestExtract_ShortDataRow(t *testing.T) {
	txns, sum := run(t, janTable([]string{"901", "7"}), mapResolver{"901": "P1"})

	require.Len(t, txns, 1)
	assert.Equal(t, 1, sum.CellsSkippedNonPositive)
}

func TestExtract_NeverEmitsNonPositiveAndCountersBalance(t *testing.T) {
	table := &MemoryTable{
		Header1: []string{"CODE", "OPEN", "IN", "CONS", "CONS"},
		Header2: []string{"", "1/3/24", "10/3/24", "15/3/24", "31/3/24"},
		Data: [][]string{
			{"901", "10", "0", "-1", "2.5"},
			{"nan", "1", "1", "1", "1"},
			{"902", "", " ", "x", "0.0"},
			{"777", "1", "1", "1", "1"},
			{"", "", "", "", ""},
			{"901", "3", "4", "5", "6"},
		},
	}
	txns, sum := run(t, table, mapResolver{"901": "P1", "902": "P2"})

	for _, txn := range txns {
		assert.True(t, txn.Quantity.IsPositive(), "quantity %s must be > 0", txn.Quantity)
	}
	assert.Equal(t, len(txns), sum.TransactionsProduced)
	assert.Equal(t, 6, sum.RowsTotal)
	assert.Equal(t, 2, sum.RowsSkippedNoCode)
	assert.Equal(t, 1, sum.RowsSkippedUnresolvedCode)
	assert.Equal(t, 6, sum.TransactionsProduced)
	assert.Equal(t, 6, sum.CellsSkippedNonPositive)
	assert.Equal(t, sum.RowsTotal*sum.MovementColumns, sum.CellsExamined())
}

func TestExtract_SinglePass(t *testing.T) {
	table := janTable([]string{"901", "1", "2"})
	plan, err := DecodeHeader(table.Header1, table.Header2, HeaderOptions{})
	require.NoError(t, err)

	seq, sum := Extract(table, plan, mapResolver{"901": "P1"}, "n")
	assert.Len(t, slices.Collect(seq), 2)
	assert.Empty(t, slices.Collect(seq))
	assert.Equal(t, 1, sum.RowsTotal)
}

func TestExtract_EarlyStop(t *testing.T) {
	table := janTable([]string{"901", "1", "2"}, []string{"901", "3", "4"})
	plan, err := DecodeHeader(table.Header1, table.Header2, HeaderOptions{})
	require.NoError(t, err)

	seq, sum := Extract(table, plan, mapResolver{"901": "P1"}, "n")
	for range seq {
		break
	}
	assert.Equal(t, 1, sum.TransactionsProduced)
	assert.Equal(t, 1, sum.RowsTotal)
}

func TestExtract_CarriesExcludedColumns(t *testing.T) {
	table := &MemoryTable{
		Header1: []string{"CODE", "OPEN", "CONS"},
		Header2: []string{"", "1/1/24", "31/2/24"},
		Data:    [][]string{{"901", "1", "1"}},
	}
	_, sum := run(t, table, mapResolver{"901": "P1"})
	require.Len(t, sum.Excluded, 1)
	assert.Equal(t, 1, sum.MovementColumns)
}

func TestSummaryReport(t *testing.T) {
	sum := &Summary{
		RowsTotal:                 4,
		RowsSkippedNoCode:         1,
		RowsSkippedUnresolvedCode: 1,
		TransactionsProduced:      3,
		MovementColumns:           2,
		Unresolved:                []UnresolvedCode{{Row: 7, Code: "999"}},
		Excluded:                  []ExcludedColumn{{Index: 4, Label: "CONS", SubLabel: "31/2/24", Reason: "no such day"}},
	}

	var buf bytes.Buffer
	require.NoError(t, sum.Report(&buf))
	out := buf.String()

	assert.Contains(t, out, "Transactions produced:   3")
	assert.Contains(t, out, `row 7: "999"`)
	assert.Contains(t, out, `column 5 "CONS" / "31/2/24": no such day`)
}
