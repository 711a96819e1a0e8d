package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTranx() Tranx {
	return Tranx{
		TID:       "T-1",
		Moment:    MomentFromEpochMillis(1000),
		Purpose:   PurposePayment,
		Amount:    Amount{Currency: "EUR", Value: 1},
		Direction: Outgoing,
	}
}

func TestTranxValidate(t *testing.T) {
	assert.NoError(t, validTranx().Validate())

	untagged := validTranx()
	untagged.Purpose = PurposeNone
	assert.NoError(t, untagged.Validate())

	bads := map[string]func(*Tranx){
		"zero moment":      func(t *Tranx) { t.Moment = Moment{} },
		"no direction":     func(t *Tranx) { t.Direction = "" },
		"unknown purpose":  func(t *Tranx) { t.Purpose = "bribe" },
		"negative amount":  func(t *Tranx) { t.Amount.Value = -1 },
		"missing currency": func(t *Tranx) { t.Amount.Currency = "" },
	}
	for name, mutate := range bads {
		t.Run(name, func(t *testing.T) {
			tx := validTranx()
			mutate(&tx)
			assert.ErrorIs(t, tx.Validate(), ErrInvalidTranx)
		})
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("IN")
	assert.NoError(t, err)
	assert.Equal(t, Incoming, d)

	d, err = ParseDirection("outgoing")
	assert.NoError(t, err)
	assert.Equal(t, Outgoing, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestExtremaInclude(t *testing.T) {
	first := validTranx()
	first.Amount = Amount{Currency: "EUR", Value: 100}
	first.Moment = MomentFromEpochMillis(3000)

	e := Extrema{}.Include(first, false)
	assert.Equal(t, e.MinAmount, e.MaxAmount)
	assert.Equal(t, int64(3000), e.MinMoment.EpochMillis())

	second := validTranx()
	second.Amount = Amount{Currency: "EUR", Value: 500}
	second.Moment = MomentFromEpochMillis(1000)
	e = e.Include(second, true)

	tie := validTranx()
	tie.Amount = Amount{Currency: "USD", Value: 500}
	tie.Moment = MomentFromEpochMillis(2000)
	e = e.Include(tie, true)

	assert.Equal(t, int64(1000), e.MinMoment.EpochMillis())
	assert.Equal(t, int64(3000), e.MaxMoment.EpochMillis())
	assert.Equal(t, int64(100), e.MinAmount.Value)
	assert.Equal(t, "EUR", e.MaxAmount.Currency, "ties keep the earlier entry")
}
