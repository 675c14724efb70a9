// Package engine computes position and portfolio valuations. Everything in
// it is a pure function over decimals: no I/O, no side effects, so the
// same inputs always price the same way regardless of which store or
// market provider produced them.
package engine

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Position is the valuation of one holding.
type Position struct {
	Invested   decimal.Decimal
	Value      decimal.Decimal
	PriceKnown bool
}

// Totals aggregates a position list.
type Totals struct {
	Invested decimal.Decimal
	Value    decimal.Decimal
	GainAbs  decimal.Decimal
	GainPct  float64
}

// PositionValue returns current price times quantity, or zero when the
// price is unknown. The zero stands in for the value in aggregates only;
// display code must check the known flag before rendering it as a price.
func PositionValue(price decimal.Decimal, known bool, quantity decimal.Decimal) decimal.Decimal {
	if !known {
		return decimal.Zero
	}
	return price.Mul(quantity)
}

// Invested returns cost basis times quantity.
func Invested(costBasis, quantity decimal.Decimal) decimal.Decimal {
	return costBasis.Mul(quantity)
}

// GainLoss returns the absolute and percentage gain of value over
// invested. A zero (or negative) invested amount yields 0% by definition;
// there is no division fault to guard against downstream.
func GainLoss(value, invested decimal.Decimal) (decimal.Decimal, float64) {
	abs := value.Sub(invested)
	if !invested.IsPositive() {
		return abs, 0
	}
	pct, _ := abs.Div(invested).Mul(hundred).Float64()
	return abs, pct
}

// Aggregate sums invested and current value across positions and derives
// the total gain from the sums. Deriving from summed invested (rather than
// averaging per-position percentages) keeps a small winning position from
// drowning out a large flat one.
func Aggregate(positions []Position) Totals {
	t := Totals{}
	for _, p := range positions {
		t.Invested = t.Invested.Add(p.Invested)
		t.Value = t.Value.Add(p.Value)
	}
	t.GainAbs, t.GainPct = GainLoss(t.Value, t.Invested)
	return t
}
