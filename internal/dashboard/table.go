package dashboard

import (
	"fmt"

	"cartera/internal/engine"
)

// TableRow is one formatted display row. Field names match the persisted
// document so the UI can bind columns directly.
type TableRow struct {
	ID           int64  `json:"id"`
	Name         string `json:"nombre"`
	Ticker       string `json:"ticker"`
	Category     string `json:"categoria"`
	PurchaseCost string `json:"valor_compra"`
	Quantity     string `json:"cantidad"`
	CurrentPrice string `json:"precio_actual"`
	CurrentValue string `json:"valor_actual"`
	DailyChange  string `json:"cambio_diario"`
	YTDChange    string `json:"cambio_ytd"`
	GainLoss     string `json:"ganancia_perdida"`
	PurchaseDate string `json:"fecha_compra"`
}

// Table is the display contract for one collection: formatted rows plus a
// final synthetic TOTAL row. Empty is set when there are no records so the
// UI renders its "no records yet" affordance instead of a bare table.
type Table struct {
	Rows  []TableRow `json:"rows"`
	Empty bool       `json:"empty"`
}

// ChartSlice is one category of a value-distribution chart.
type ChartSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BuildTable formats enriched rows and appends the TOTAL row. Unavailable
// market data renders as N/A per field; the row itself always appears.
func BuildTable(rows []engine.Row) Table {
	if len(rows) == 0 {
		return Table{Rows: []TableRow{}, Empty: true}
	}

	out := make([]TableRow, 0, len(rows)+1)
	for _, r := range rows {
		tr := TableRow{
			ID:           r.ID,
			Name:         r.Name,
			Ticker:       r.Ticker,
			Category:     r.Category,
			PurchaseCost: Euro(r.PurchaseCost),
			Quantity:     r.Quantity.String(),
			CurrentPrice: NA,
			CurrentValue: NA,
			DailyChange:  NA,
			YTDChange:    NA,
			GainLoss:     NA,
			PurchaseDate: r.PurchaseDate.String(),
		}
		if r.PriceKnown {
			tr.CurrentPrice = Euro(r.CurrentPrice)
			tr.CurrentValue = Euro(r.CurrentValue)
			tr.DailyChange = fmt.Sprintf("%s (%s)", SignedPercent(r.DailyChangePct), SignedEuro(r.DailyChangeAbs))
			tr.YTDChange = SignedPercent(r.YTDChangePct)
			tr.GainLoss = fmt.Sprintf("%s (%s)", SignedEuro(r.GainAbs), SignedPercent(r.GainPct))
		}
		out = append(out, tr)
	}

	totals := engine.AggregateRows(rows)
	out = append(out, TableRow{
		Name:         "TOTAL",
		CurrentValue: Euro(totals.Value),
		GainLoss:     fmt.Sprintf("%s (%s)", SignedEuro(totals.GainAbs), SignedPercent(totals.GainPct)),
		PurchaseDate: "Total Invertido: " + Euro(totals.Invested),
	})

	return Table{Rows: out}
}

// BuildChart converts category groupings into chart slices, largest first
// left to the consumer; order here follows no guarantee.
func BuildChart(rows []engine.Row) []ChartSlice {
	groups := engine.GroupValues(rows)
	slices := make([]ChartSlice, 0, len(groups))
	for label, value := range groups {
		v, _ := value.Float64()
		slices = append(slices, ChartSlice{Label: label, Value: v})
	}
	return slices
}

// BuildDistributionChart slices current value per holding, labelled
// "nombre (ticker)". Holdings without a resolvable price stay in the chart
// at value zero rather than disappearing.
func BuildDistributionChart(rows []engine.Row) []ChartSlice {
	slices := make([]ChartSlice, 0, len(rows))
	for _, r := range rows {
		v, _ := r.CurrentValue.Float64()
		slices = append(slices, ChartSlice{
			Label: fmt.Sprintf("%s (%s)", r.Name, r.Ticker),
			Value: v,
		})
	}
	return slices
}

// BuildPerformanceChart bars gain percent per holding, labelled by ticker.
// A gain percent is meaningless without a price, so unresolved holdings are
// omitted here instead of shown as zero.
func BuildPerformanceChart(rows []engine.Row) []ChartSlice {
	slices := make([]ChartSlice, 0, len(rows))
	for _, r := range rows {
		if !r.PriceKnown {
			continue
		}
		slices = append(slices, ChartSlice{Label: r.Ticker, Value: r.GainPct})
	}
	return slices
}
