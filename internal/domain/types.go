// Package domain defines the core entities of the cartera service: funds,
// stocks, and the calendar date type they are persisted with.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The persisted document stores monetary fields as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// FundType classifies a fund as fixed or variable income.
type FundType string

const (
	// FundTypeFixed is a fixed-income fund ("renta fija").
	FundTypeFixed FundType = "RF"
	// FundTypeVariable is a variable-income fund ("renta variable").
	FundTypeVariable FundType = "RV"
)

const (
	// DefaultSector is stored when a stock is saved without a sector.
	DefaultSector = "N/A"
	// UnclassifiedBucket groups positions whose category is absent in
	// chart aggregations.
	UnclassifiedBucket = "Sin Clasificar"
)

// Fund is a mutual fund position. JSON field names follow the persisted
// document layout.
type Fund struct {
	ID            int64           `json:"id"`
	Name          string          `json:"nombre"`
	Ticker        string          `json:"ticker"`
	Type          FundType        `json:"tipo"`
	PurchaseValue decimal.Decimal `json:"valor_compra"`
	Quantity      decimal.Decimal `json:"cantidad"`
	PurchaseDate  Date            `json:"fecha_compra"`
}

// Stock is an equity position.
type Stock struct {
	ID            int64           `json:"id"`
	Name          string          `json:"nombre"`
	Ticker        string          `json:"ticker"`
	Sector        string          `json:"sector"`
	PurchasePrice decimal.Decimal `json:"precio_compra"`
	NumShares     int64           `json:"num_acciones"`
	PurchaseDate  Date            `json:"fecha_compra"`
}

// NormalizeTicker trims and uppercases a ticker symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Normalize applies storage invariants: the ticker is always uppercase.
func (f *Fund) Normalize() {
	f.Ticker = NormalizeTicker(f.Ticker)
}

// Normalize applies storage invariants: uppercase ticker, defaulted sector.
func (s *Stock) Normalize() {
	s.Ticker = NormalizeTicker(s.Ticker)
	if strings.TrimSpace(s.Sector) == "" {
		s.Sector = DefaultSector
	}
}

// Validate reports whether the fund can be saved. It is called before any
// store write so invalid input never reaches persistence.
func (f *Fund) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("nombre is required")
	}
	if strings.TrimSpace(f.Ticker) == "" {
		return errors.New("ticker is required")
	}
	if f.Type != FundTypeFixed && f.Type != FundTypeVariable {
		return fmt.Errorf("tipo must be %q or %q", FundTypeFixed, FundTypeVariable)
	}
	if f.PurchaseValue.IsNegative() {
		return errors.New("valor_compra must not be negative")
	}
	if f.Quantity.IsNegative() {
		return errors.New("cantidad must not be negative")
	}
	if f.PurchaseDate.IsZero() {
		return errors.New("fecha_compra is required")
	}
	return nil
}

// Validate reports whether the stock can be saved.
func (s *Stock) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("nombre is required")
	}
	if strings.TrimSpace(s.Ticker) == "" {
		return errors.New("ticker is required")
	}
	if s.PurchasePrice.IsNegative() {
		return errors.New("precio_compra must not be negative")
	}
	if s.NumShares < 0 {
		return errors.New("num_acciones must not be negative")
	}
	if s.PurchaseDate.IsZero() {
		return errors.New("fecha_compra is required")
	}
	return nil
}

// QuantityDecimal returns the number of shares as a decimal so funds and
// stocks share the valuation path.
func (s *Stock) QuantityDecimal() decimal.Decimal {
	return decimal.NewFromInt(s.NumShares)
}

// Category returns the fund's grouping key for chart aggregation.
func (f *Fund) Category() string {
	if f.Type == "" {
		return UnclassifiedBucket
	}
	return string(f.Type)
}

// Category returns the stock's grouping key for chart aggregation. Unset
// and placeholder sectors collapse into the unclassified bucket.
func (s *Stock) Category() string {
	sector := strings.TrimSpace(s.Sector)
	if sector == "" || sector == DefaultSector {
		return UnclassifiedBucket
	}
	return sector
}

// NextID returns the id to assign to a new record: max(existing)+1, or 1
// when the collection is empty. Ids are never reused while a higher id
// still exists.
func NextID(existing []int64) int64 {
	var max int64
	for _, id := range existing {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// YTDStart returns the baseline date for the year-to-date change: the later
// of the year start and the purchase date.
func YTDStart(purchase Date, now time.Time) time.Time {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if p := purchase.Time(); p.After(yearStart) {
		return p
	}
	return yearStart
}
