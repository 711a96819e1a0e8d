package query

import (
	"tranxledger/internal/core"
	"tranxledger/internal/schema"
)

// Compiler turns filters into predicates.
type Compiler struct{}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile validates f and builds its predicate. Conditions are emitted in a
// fixed order so the same filter always yields the same predicate.
func (c *Compiler) Compile(f core.TranxFilter) (Predicate, error) {
	if err := f.Validate(); err != nil {
		return Predicate{}, err
	}
	return build(f), nil
}

func build(f core.TranxFilter) Predicate {
	p := Predicate{Descending: f.Descending}
	add := func(column string, op Op, value any) {
		p.Conditions = append(p.Conditions, Condition{Column: column, Op: op, Value: value})
	}

	if f.Direction != nil {
		add(schema.ColumnIncoming, OpEq, IncomingFlag(*f.Direction))
	}
	if f.Purpose != nil {
		if *f.Purpose == core.PurposeNone {
			add(schema.ColumnPurpose, OpIsNull, nil)
		} else {
			add(schema.ColumnPurpose, OpEq, string(*f.Purpose))
		}
	}
	if f.From != nil {
		add(schema.ColumnEpochMilliseconds, OpGte, f.From.EpochMillis())
	}
	if f.To != nil {
		add(schema.ColumnEpochMilliseconds, OpLte, f.To.EpochMillis())
	}

	var currency string
	if f.MinAmount != nil {
		if f.MinAmount.Currency != "" {
			currency = f.MinAmount.Currency
			add(schema.ColumnCurrency, OpEq, currency)
		}
		add(schema.ColumnAmount, OpGte, f.MinAmount.Scalar())
	}
	if f.MaxAmount != nil {
		if f.MaxAmount.Currency != "" && f.MaxAmount.Currency != currency {
			add(schema.ColumnCurrency, OpEq, f.MaxAmount.Currency)
		}
		add(schema.ColumnAmount, OpLte, f.MaxAmount.Scalar())
	}
	return p
}
