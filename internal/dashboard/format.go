// Package dashboard turns enriched valuation rows into the render-ready
// structures the presentation layer consumes: formatted table rows with a
// trailing TOTAL row, and per-category chart slices.
package dashboard

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// NA is rendered wherever market data is unavailable for a field.
const NA = "N/A"

// euroCurrency carries the formatter and fraction digits for EUR.
var euroCurrency = *money.New(0, money.EUR).Currency()

// Euro formats a decimal amount of euros, e.g. "€1,234.56".
func Euro(v decimal.Decimal) string {
	minor := v.Shift(int32(euroCurrency.Fraction)).Round(0).IntPart()
	return euroCurrency.Formatter().Format(minor)
}

// SignedEuro formats an amount with an explicit sign on gains.
func SignedEuro(v decimal.Decimal) string {
	if v.IsPositive() {
		return "+" + Euro(v)
	}
	return Euro(v)
}

// Percent formats a percentage with two decimals.
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// SignedPercent formats a percentage with an explicit sign.
func SignedPercent(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}
