package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"cartera/internal/domain"
	"cartera/internal/market"
)

// Row is one enriched holding, ready for the display layer. When
// PriceKnown is false the price-derived fields hold zero and must render
// as unavailable, not as €0.00; the zero CurrentValue is still the row's
// (correct) contribution to portfolio totals.
type Row struct {
	ID           int64
	Name         string
	Ticker       string
	Category     string
	PurchaseCost decimal.Decimal
	Quantity     decimal.Decimal
	PurchaseDate domain.Date

	PriceKnown     bool
	CurrentPrice   decimal.Decimal
	CurrentValue   decimal.Decimal
	DailyChangePct float64
	DailyChangeAbs decimal.Decimal
	YTDChangePct   float64

	Invested decimal.Decimal
	GainAbs  decimal.Decimal
	GainPct  float64
}

// Position returns the row's valuation for aggregation.
func (r Row) Position() Position {
	return Position{Invested: r.Invested, Value: r.CurrentValue, PriceKnown: r.PriceKnown}
}

// EnrichFund values one fund against the market gateway.
func EnrichFund(ctx context.Context, gw market.Gateway, f domain.Fund) Row {
	return enrich(ctx, gw, Row{
		ID:           f.ID,
		Name:         f.Name,
		Ticker:       f.Ticker,
		Category:     f.Category(),
		PurchaseCost: f.PurchaseValue,
		Quantity:     f.Quantity,
		PurchaseDate: f.PurchaseDate,
	})
}

// EnrichStock values one stock against the market gateway.
func EnrichStock(ctx context.Context, gw market.Gateway, s domain.Stock) Row {
	return enrich(ctx, gw, Row{
		ID:           s.ID,
		Name:         s.Name,
		Ticker:       s.Ticker,
		Category:     s.Category(),
		PurchaseCost: s.PurchasePrice,
		Quantity:     s.QuantityDecimal(),
		PurchaseDate: s.PurchaseDate,
	})
}

// enrich fills the market-derived fields of a row. A ticker the gateway
// cannot resolve degrades that row only: siblings value normally.
func enrich(ctx context.Context, gw market.Gateway, r Row) Row {
	price, known := gw.CurrentPrice(ctx, r.Ticker)
	r.PriceKnown = known
	if known {
		r.CurrentPrice = price
		r.DailyChangePct, r.DailyChangeAbs = gw.DailyChange(ctx, r.Ticker)
		r.YTDChangePct = gw.YTDChange(ctx, r.Ticker, r.PurchaseDate)
	}

	r.CurrentValue = PositionValue(price, known, r.Quantity)
	r.Invested = Invested(r.PurchaseCost, r.Quantity)
	r.GainAbs, r.GainPct = GainLoss(r.CurrentValue, r.Invested)
	return r
}

// EnrichFunds values a fund list in input order.
func EnrichFunds(ctx context.Context, gw market.Gateway, funds []domain.Fund) []Row {
	rows := make([]Row, len(funds))
	for i, f := range funds {
		rows[i] = EnrichFund(ctx, gw, f)
	}
	return rows
}

// EnrichStocks values a stock list in input order.
func EnrichStocks(ctx context.Context, gw market.Gateway, stocks []domain.Stock) []Row {
	rows := make([]Row, len(stocks))
	for i, s := range stocks {
		rows[i] = EnrichStock(ctx, gw, s)
	}
	return rows
}

// AggregateRows sums the valuations of enriched rows.
func AggregateRows(rows []Row) Totals {
	positions := make([]Position, len(rows))
	for i, r := range rows {
		positions[i] = r.Position()
	}
	return Aggregate(positions)
}

// GroupValues sums current value per category for the chart views. Rows
// without an explicit category were already bucketed by the domain layer.
func GroupValues(rows []Row) map[string]decimal.Decimal {
	groups := make(map[string]decimal.Decimal)
	for _, r := range rows {
		groups[r.Category] = groups[r.Category].Add(r.CurrentValue)
	}
	return groups
}
