// Package query compiles transaction filters into parameterized predicates.
//
// A Predicate is a flat list of conditions joined by AND. It renders to SQL
// with "?" placeholders and a matching argument list, and it can also be
// evaluated directly against an in-memory transaction.
package query

import (
	"fmt"
	"strings"

	"tranxledger/internal/core"
	"tranxledger/internal/schema"
)

type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
	// OpIsNull takes no value.
	OpIsNull Op = "IS NULL"
)

// Condition constrains one column. Value is an int64 or a string, or nil
// for OpIsNull.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

// Predicate is the compiled form of a filter.
type Predicate struct {
	Conditions []Condition
	Descending bool
}

// Where renders the conditions as a WHERE clause and its bound arguments.
// An empty predicate renders "" and matches every row.
func (p Predicate) Where() (string, []any) {
	if len(p.Conditions) == 0 {
		return "", nil
	}
	parts := make([]string, len(p.Conditions))
	args := make([]any, 0, len(p.Conditions))
	for i, c := range p.Conditions {
		if !schema.IsColumn(c.Column) {
			panic(fmt.Sprintf("query: unknown column %q", c.Column))
		}
		if c.Op == OpIsNull {
			parts[i] = c.Column + " IS NULL"
			continue
		}
		parts[i] = c.Column + " " + string(c.Op) + " ?"
		args = append(args, c.Value)
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}

// OrderBy renders the ordering clause: by moment, then insertion order.
func (p Predicate) OrderBy() string {
	dir := "ASC"
	if p.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, %s %s", schema.ColumnEpochMilliseconds, dir, schema.ColumnID, dir)
}

// Match evaluates the predicate against t.
func (p Predicate) Match(t core.Tranx) bool {
	for _, c := range p.Conditions {
		if !c.match(ColumnValue(t, c.Column)) {
			return false
		}
	}
	return true
}

func (c Condition) match(v any) bool {
	if c.Op == OpIsNull {
		return v == nil
	}
	switch want := c.Value.(type) {
	case int64:
		got, ok := v.(int64)
		if !ok {
			return false
		}
		switch c.Op {
		case OpEq:
			return got == want
		case OpGte:
			return got >= want
		case OpLte:
			return got <= want
		}
	case string:
		got, ok := v.(string)
		if !ok {
			return false
		}
		switch c.Op {
		case OpEq:
			return got == want
		case OpGte:
			return got >= want
		case OpLte:
			return got <= want
		}
	}
	return false
}

// ColumnValue returns the stored representation of t in column. An untagged
// purpose is nil, mirroring SQL NULL.
func ColumnValue(t core.Tranx, column string) any {
	switch column {
	case schema.ColumnID:
		return t.ID
	case schema.ColumnEpochMilliseconds:
		return t.Moment.EpochMillis()
	case schema.ColumnAmount:
		return t.Amount.Scalar()
	case schema.ColumnCurrency:
		return t.Amount.Currency
	case schema.ColumnCurrencySpecifications:
		return t.Amount.Spec
	case schema.ColumnPurpose:
		if t.Purpose == core.PurposeNone {
			return nil
		}
		return string(t.Purpose)
	case schema.ColumnIncoming:
		return IncomingFlag(t.Direction)
	case schema.ColumnTransactionIdentity:
		return t.TID
	default:
		return nil
	}
}

// IncomingFlag encodes a direction for the incoming column.
func IncomingFlag(d core.Direction) int64 {
	if d == core.Incoming {
		return 1
	}
	return 0
}
