package ledger

import (
	"strings"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// Resolver maps an alias to a product. *catalog.Directory satisfies it.
type Resolver interface {
	Resolve(alias string) (model.ProductID, bool)
}

// RowStatus is the outcome of resolving a row's product code.
type RowStatus int

const (
	RowResolved RowStatus = iota
	RowSkipNoCode
	RowSkipUnresolvedCode
)

func (s RowStatus) String() string {
	switch s {
	case RowResolved:
		return "resolved"
	case RowSkipNoCode:
		return "no code"
	case RowSkipUnresolvedCode:
		return "unresolved code"
	default:
		return "unknown"
	}
}

// RowResult carries the resolved product, or the raw code that failed.
type RowResult struct {
	Status    RowStatus
	ProductID model.ProductID
	Code      string
	Row       Row
}

// ResolveRow looks up the row's code cell. Blank cells and the literal "nan"
// left behind by spreadsheet exports count as no code.
func ResolveRow(row Row, plan *ColumnPlan, dir Resolver) RowResult {
	code := strings.TrimSpace(row.Cell(plan.CodeColumn))
	if code == "" || strings.EqualFold(code, "nan") {
		return RowResult{Status: RowSkipNoCode, Row: row}
	}

	id, ok := dir.Resolve(code)
	if !ok {
		return RowResult{Status: RowSkipUnresolvedCode, Code: code, Row: row}
	}
	return RowResult{Status: RowResolved, ProductID: id, Code: code, Row: row}
}
