package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized = errors.New("tranx history not initialized")
	ErrInvalidFilter  = errors.New("invalid filter")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidTranx   = errors.New("invalid transaction")
)

// StoreError reports a failure of the backing store during Op.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// CurrencyMismatchError is returned when two amounts of different
// currencies are compared or added.
type CurrencyMismatchError struct {
	Left  string
	Right string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %q vs %q", e.Left, e.Right)
}
