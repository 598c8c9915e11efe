package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies a stock movement.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// String returns the wire form ("IN" or "OUT").
func (d Direction) String() string { return string(d) }

// ParseDirection parses "IN" or "OUT", ignoring case and surrounding space.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN":
		return DirectionIn, nil
	case "OUT":
		return DirectionOut, nil
	default:
		return "", fmt.Errorf("invalid direction %q", s)
	}
}

// DateFormat is the ISO calendar date used at every output boundary.
const DateFormat = "2006-01-02"

// Transaction is one inventory movement. Field order matches the canonical
// record shape shared by every sink.
type Transaction struct {
	ProductID          ProductID
	Direction          Direction
	Quantity           decimal.Decimal // always > 0
	OccurredOn         time.Time       // date only, UTC
	Note               string
	IncludeInAggregate bool
}

// Signed returns the quantity with OUT movements negated.
func (t Transaction) Signed() decimal.Decimal {
	if t.Direction == DirectionOut {
		return t.Quantity.Neg()
	}
	return t.Quantity
}
