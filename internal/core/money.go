// Package core provides the ledger's value types.
//
// This file contains the Amount type: parsing monetary amounts from their
// text form and comparing or adding them within one currency.
package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// FractionalDigits is the number of decimal digits carried by Fraction.
	FractionalDigits = 8
	// FractionalBase is the number of fraction units in one major unit.
	FractionalBase int64 = 100_000_000
	// MaxValue is the largest major-unit value whose scalar still fits an int64.
	MaxValue = math.MaxInt64/FractionalBase - 1
)

// Amount is a non-negative monetary value in a single currency.
//
// Value holds major units and Fraction holds minor units in 1/FractionalBase
// steps. Spec is opaque formatting metadata and never takes part in
// comparisons.
type Amount struct {
	Currency string
	Value    int64
	Fraction int64
	Spec     string
}

// NewAmount builds and validates an Amount.
func NewAmount(currency string, value, fraction int64) (Amount, error) {
	a := Amount{Currency: currency, Value: value, Fraction: fraction}
	if err := a.Validate(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// ParseAmount converts the text form "CUR:major.fraction" into an Amount.
//
// Examples:
//
//	ParseAmount("EUR:10")      -> EUR 10 + 0
//	ParseAmount("EUR:10.5")    -> EUR 10 + 50000000
//	ParseAmount("KUDOS:0.01")  -> KUDOS 0 + 1000000
//	ParseAmount("EUR:-1")      -> ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	currency, number, ok := strings.Cut(s, ":")
	if !ok || currency == "" || number == "" {
		return Amount{}, fmt.Errorf("%w: %q is not CUR:value", ErrInvalidAmount, s)
	}
	if strings.ContainsAny(number, "+-eE") {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(number)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	if -d.Exponent() > FractionalDigits {
		return Amount{}, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, FractionalDigits)
	}
	if d.GreaterThan(decimal.NewFromInt(MaxValue + 1)) {
		return Amount{}, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, s)
	}
	scalar := d.Shift(FractionalDigits).IntPart()
	return NewAmount(currency, scalar/FractionalBase, scalar%FractionalBase)
}

// AmountFromScalar rebuilds an Amount from its ordering scalar.
func AmountFromScalar(currency string, scalar int64) Amount {
	return Amount{
		Currency: currency,
		Value:    scalar / FractionalBase,
		Fraction: scalar % FractionalBase,
	}
}

// Validate checks the currency and the value/fraction ranges.
func (a Amount) Validate() error {
	if strings.TrimSpace(a.Currency) == "" {
		return fmt.Errorf("%w: empty currency", ErrInvalidAmount)
	}
	if a.Value < 0 || a.Value > MaxValue {
		return fmt.Errorf("%w: value %d out of range", ErrInvalidAmount, a.Value)
	}
	if a.Fraction < 0 || a.Fraction >= FractionalBase {
		return fmt.Errorf("%w: fraction %d out of range", ErrInvalidAmount, a.Fraction)
	}
	return nil
}

// Scalar returns the amount in minor units, the key used for ordering.
func (a Amount) Scalar() int64 {
	return a.Value*FractionalBase + a.Fraction
}

// Decimal returns the amount as a decimal number of major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.Scalar(), -FractionalDigits)
}

// IsZero reports whether both parts are zero.
func (a Amount) IsZero() bool {
	return a.Value == 0 && a.Fraction == 0
}

// Compare orders two amounts of the same currency. It returns -1, 0 or +1,
// or a *CurrencyMismatchError when the currencies differ.
func (a Amount) Compare(b Amount) (int, error) {
	if a.Currency != b.Currency {
		return 0, &CurrencyMismatchError{Left: a.Currency, Right: b.Currency}
	}
	return cmpInt64(a.Scalar(), b.Scalar()), nil
}

// Add sums two amounts of the same currency, carrying fraction overflow
// into the major units. The result keeps a's Spec.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, &CurrencyMismatchError{Left: a.Currency, Right: b.Currency}
	}
	fraction := a.Fraction + b.Fraction
	value := a.Value + b.Value + fraction/FractionalBase
	fraction %= FractionalBase
	if value > MaxValue || value < a.Value {
		return Amount{}, fmt.Errorf("%w: sum overflows", ErrInvalidAmount)
	}
	return Amount{Currency: a.Currency, Value: value, Fraction: fraction, Spec: a.Spec}, nil
}

// String returns the canonical text form, e.g. "EUR:10.5".
func (a Amount) String() string {
	return a.Currency + ":" + a.Decimal().String()
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
