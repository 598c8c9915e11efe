package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// ErrCodeColumnNotFound means no first-row header mentions "CODE". The sheet
// cannot be imported.
var ErrCodeColumnNotFound = errors.New("no product code column in header")

// DefaultInboundMarkers are the first-row labels that mark IN columns.
var DefaultInboundMarkers = []string{"OPEN", "IN"}

// HeaderOptions tunes header decoding.
type HeaderOptions struct {
	// InboundMarkers are exact (trimmed) first-row labels classified IN.
	// Nil means DefaultInboundMarkers.
	InboundMarkers []string
}

// MovementColumn is a column holding one date's movements for every row.
type MovementColumn struct {
	Index     int
	Label     string
	Date      time.Time
	Direction model.Direction
}

// ExcludedColumn is a column whose sub-label looked like a date but could not
// be used. It is reported, never imported.
type ExcludedColumn struct {
	Index    int
	Label    string
	SubLabel string
	Reason   string
}

// ColumnPlan is the decoded two-row header.
type ColumnPlan struct {
	CodeColumn int
	CodeLabel  string
	Movements  []MovementColumn
	Excluded   []ExcludedColumn
}

// DecodeHeader builds a ColumnPlan from the label row and the sub-label row.
//
// The code column is the first label containing "CODE" (any case). Every
// other column whose sub-label contains '/' is parsed as dd/mm/yy; columns
// that parse become movements, the rest are listed in Excluded. Columns
// without a '/' in their sub-label are plain annotation columns and are
// ignored.
//
// Two-digit years are taken as 20yy. Sheets dated before 2000 are not
// supported.
func DecodeHeader(row1, row2 []string, opts HeaderOptions) (*ColumnPlan, error) {
	codeCol := -1
	for i, label := range row1 {
		if strings.Contains(strings.ToUpper(label), "CODE") {
			codeCol = i
			break
		}
	}
	if codeCol < 0 {
		return nil, ErrCodeColumnNotFound
	}

	markers := opts.InboundMarkers
	if markers == nil {
		markers = DefaultInboundMarkers
	}

	plan := &ColumnPlan{
		CodeColumn: codeCol,
		CodeLabel:  strings.TrimSpace(row1[codeCol]),
	}

	width := max(len(row1), len(row2))
	for i := 0; i < width; i++ {
		if i == codeCol {
			continue
		}
		sub := strings.TrimSpace(cellAt(row2, i))
		if !strings.Contains(sub, "/") {
			continue
		}
		label := strings.TrimSpace(cellAt(row1, i))
		if label == "" {
			plan.Excluded = append(plan.Excluded, ExcludedColumn{Index: i, SubLabel: sub, Reason: "empty label"})
			continue
		}
		date, err := ParseSubLabelDate(sub)
		if err != nil {
			plan.Excluded = append(plan.Excluded, ExcludedColumn{Index: i, Label: label, SubLabel: sub, Reason: err.Error()})
			continue
		}
		plan.Movements = append(plan.Movements, MovementColumn{
			Index:     i,
			Label:     label,
			Date:      date,
			Direction: classify(label, markers),
		})
	}
	return plan, nil
}

func classify(label string, markers []string) model.Direction {
	for _, m := range markers {
		if label == m {
			return model.DirectionIn
		}
	}
	return model.DirectionOut
}

// ParseSubLabelDate parses "d/m/yy" into a UTC date in 20yy.
func ParseSubLabelDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date %q: want day/month/yy", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("date %q: bad number %q", s, p)
		}
		if i == 2 && len(p) > 2 {
			return time.Time{}, fmt.Errorf("date %q: year must be two digits", s)
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], 2000+nums[2]
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, fmt.Errorf("date %q: no such day", s)
	}
	return d, nil
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
