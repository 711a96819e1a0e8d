package core

import (
	"fmt"
	"strconv"
	"strings"
)

// TranxFilter selects ledger entries. Nil constraints are unset; the zero
// value matches every entry. Time and amount bounds are inclusive and each
// bound may be set on its own. Time bounds have millisecond precision, the
// same as stored entries; anything finer is ignored.
type TranxFilter struct {
	Direction *Direction
	Purpose   *Purpose
	From      *Moment
	To        *Moment
	// An amount bound with an empty Currency constrains only the scalar.
	MinAmount *Amount
	MaxAmount *Amount
	// Descending returns newest entries first.
	Descending bool
}

// Validate reports constraints that cannot compile to a predicate.
func (f TranxFilter) Validate() error {
	if f.Direction != nil {
		if err := f.Direction.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}
	if f.Purpose != nil {
		if err := f.Purpose.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}
	if f.From != nil && f.To != nil && f.From.EpochMillis() > f.To.EpochMillis() {
		return fmt.Errorf("%w: time range from %s is after to %s", ErrInvalidFilter, f.From, f.To)
	}
	for _, bound := range []*Amount{f.MinAmount, f.MaxAmount} {
		if bound == nil {
			continue
		}
		if bound.Value < 0 || bound.Value > MaxValue || bound.Fraction < 0 || bound.Fraction >= FractionalBase {
			return fmt.Errorf("%w: amount bound %d.%d out of range", ErrInvalidFilter, bound.Value, bound.Fraction)
		}
	}
	if f.MinAmount != nil && f.MaxAmount != nil {
		lo, hi := *f.MinAmount, *f.MaxAmount
		if lo.Currency != "" && hi.Currency != "" && lo.Currency != hi.Currency {
			return fmt.Errorf("%w: %w", ErrInvalidFilter, &CurrencyMismatchError{Left: lo.Currency, Right: hi.Currency})
		}
		if lo.Scalar() > hi.Scalar() {
			return fmt.Errorf("%w: amount range min %s is above max %s", ErrInvalidFilter, lo, hi)
		}
	}
	return nil
}

// Clone returns a copy of f that shares no pointers with it.
func (f TranxFilter) Clone() TranxFilter {
	c := f
	c.Direction = clonePtr(f.Direction)
	c.Purpose = clonePtr(f.Purpose)
	c.From = clonePtr(f.From)
	c.To = clonePtr(f.To)
	c.MinAmount = clonePtr(f.MinAmount)
	c.MaxAmount = clonePtr(f.MaxAmount)
	return c
}

// Normalize is Clone with the time bounds truncated to whole milliseconds,
// so the filter reads back exactly as it is applied.
func (f TranxFilter) Normalize() TranxFilter {
	c := f.Clone()
	if c.From != nil {
		*c.From = c.From.TruncateMillis()
	}
	if c.To != nil {
		*c.To = c.To.TruncateMillis()
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// IsDefault reports whether no constraint is set.
func (f TranxFilter) IsDefault() bool {
	return f.Equal(TranxFilter{})
}

// Equal compares constraint values, not pointer identity.
func (f TranxFilter) Equal(o TranxFilter) bool {
	return f.Key() == o.Key()
}

// Key returns a canonical encoding of the filter. Equal filters produce
// equal keys.
func (f TranxFilter) Key() string {
	var b strings.Builder
	b.WriteString("dir=")
	if f.Direction != nil {
		b.WriteString(string(*f.Direction))
	}
	b.WriteString("|purpose=")
	if f.Purpose != nil {
		b.WriteString(strconv.Quote(string(*f.Purpose)))
	}
	b.WriteString("|from=")
	if f.From != nil {
		b.WriteString(strconv.FormatInt(f.From.EpochMillis(), 10))
	}
	b.WriteString("|to=")
	if f.To != nil {
		b.WriteString(strconv.FormatInt(f.To.EpochMillis(), 10))
	}
	b.WriteString("|min=")
	writeAmountKey(&b, f.MinAmount)
	b.WriteString("|max=")
	writeAmountKey(&b, f.MaxAmount)
	if f.Descending {
		b.WriteString("|desc")
	}
	return b.String()
}

func writeAmountKey(b *strings.Builder, a *Amount) {
	if a == nil {
		return
	}
	b.WriteString(strconv.Quote(a.Currency))
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(a.Scalar(), 10))
}

// Ptr returns a pointer to v, for building filters inline.
func Ptr[T any](v T) *T {
	return &v
}
