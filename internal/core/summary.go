package core

// Extrema holds the smallest and largest moment and amount over the ledger.
// Amounts rank by Scalar regardless of currency; on ties the entry inserted
// first wins. Moments are kept in UTC at millisecond precision.
type Extrema struct {
	MinMoment Moment
	MaxMoment Moment
	MinAmount Amount
	MaxAmount Amount
}

// Include returns the extrema widened by t. The first entry of an empty
// ledger is passed with ok == false.
func (e Extrema) Include(t Tranx, ok bool) Extrema {
	m := t.Moment.UTC()
	if !ok {
		return Extrema{MinMoment: m, MaxMoment: m, MinAmount: t.Amount, MaxAmount: t.Amount}
	}
	if m.Before(e.MinMoment) {
		e.MinMoment = m
	}
	if m.After(e.MaxMoment) {
		e.MaxMoment = m
	}
	if t.Amount.Scalar() < e.MinAmount.Scalar() {
		e.MinAmount = t.Amount
	}
	if t.Amount.Scalar() > e.MaxAmount.Scalar() {
		e.MaxAmount = t.Amount
	}
	return e
}
