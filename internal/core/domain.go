package core

import (
	"fmt"
	"strings"
)

const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

const (
	PurposeNone       Purpose = ""
	PurposeWithdrawal Purpose = "withdrawal"
	PurposePayment    Purpose = "payment"
	PurposeRefund     Purpose = "refund"
	PurposeDeposit    Purpose = "deposit"
	PurposeTip        Purpose = "tip"
	PurposePeerPush   Purpose = "peer_push"
	PurposePeerPull   Purpose = "peer_pull"
)

type (
	Direction string

	// Purpose is an optional category tag. PurposeNone means untagged.
	Purpose string

	// Tranx is one ledger entry. ID is assigned by the store and is zero
	// until the entry has been persisted.
	Tranx struct {
		ID        int64
		TID       string // external transaction identity, not unique
		Moment    Moment
		Purpose   Purpose
		Amount    Amount
		Direction Direction
	}
)

// Purposes lists every tagged purpose.
func Purposes() []Purpose {
	return []Purpose{
		PurposeWithdrawal, PurposePayment, PurposeRefund, PurposeDeposit,
		PurposeTip, PurposePeerPush, PurposePeerPull,
	}
}

func (d Direction) Validate() error {
	switch d {
	case Incoming, Outgoing:
		return nil
	default:
		return fmt.Errorf("unknown direction %q", string(d))
	}
}

// ParseDirection accepts "incoming"/"in" and "outgoing"/"out".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incoming", "in":
		return Incoming, nil
	case "outgoing", "out":
		return Outgoing, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

func (p Purpose) Validate() error {
	if p == PurposeNone {
		return nil
	}
	for _, known := range Purposes() {
		if p == known {
			return nil
		}
	}
	return fmt.Errorf("unknown purpose %q", string(p))
}

func (t Tranx) Validate() error {
	if t.Moment.IsZero() {
		return fmt.Errorf("%w: moment is required", ErrInvalidTranx)
	}
	if err := t.Direction.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTranx, err)
	}
	if err := t.Purpose.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTranx, err)
	}
	if err := t.Amount.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTranx, err)
	}
	return nil
}
