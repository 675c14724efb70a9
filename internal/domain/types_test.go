package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeTicker(t *testing.T) {
	if got := NormalizeTicker("  aapl "); got != "AAPL" {
		t.Errorf("NormalizeTicker = %q, want %q", got, "AAPL")
	}
}

func TestStockNormalizeDefaultsSector(t *testing.T) {
	s := Stock{Name: "Apple", Ticker: "aapl", Sector: "  "}
	s.Normalize()
	if s.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want %q", s.Ticker, "AAPL")
	}
	if s.Sector != DefaultSector {
		t.Errorf("Sector = %q, want %q", s.Sector, DefaultSector)
	}
}

func TestNextID(t *testing.T) {
	if got := NextID(nil); got != 1 {
		t.Errorf("NextID(empty) = %d, want 1", got)
	}
	if got := NextID([]int64{1, 2, 3}); got != 4 {
		t.Errorf("NextID = %d, want 4", got)
	}
	// Deleting id 1 must not cause reuse while id 3 exists.
	if got := NextID([]int64{2, 3}); got != 4 {
		t.Errorf("NextID after delete = %d, want 4", got)
	}
}

func TestFundValidate(t *testing.T) {
	valid := Fund{
		Name:          "Vanguard S&P 500",
		Ticker:        "VOO",
		Type:          FundTypeVariable,
		PurchaseValue: decimal.NewFromFloat(100.5),
		Quantity:      decimal.NewFromFloat(10),
		PurchaseDate:  NewDate(2024, time.March, 1),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid fund rejected: %v", err)
	}

	missingName := valid
	missingName.Name = ""
	if err := missingName.Validate(); err == nil {
		t.Error("fund without nombre accepted")
	}

	badType := valid
	badType.Type = "XX"
	if err := badType.Validate(); err == nil {
		t.Error("fund with unknown tipo accepted")
	}

	negative := valid
	negative.Quantity = decimal.NewFromInt(-1)
	if err := negative.Validate(); err == nil {
		t.Error("fund with negative cantidad accepted")
	}
}

func TestStockCategory(t *testing.T) {
	a := Stock{Sector: ""}
	b := Stock{Sector: DefaultSector}
	if a.Category() != UnclassifiedBucket || b.Category() != UnclassifiedBucket {
		t.Errorf("unset sectors should share bucket %q, got %q and %q",
			UnclassifiedBucket, a.Category(), b.Category())
	}
	c := Stock{Sector: "Tecnología"}
	if c.Category() != "Tecnología" {
		t.Errorf("Category = %q, want %q", c.Category(), "Tecnología")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.June, 15)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-06-15"` {
		t.Errorf("marshaled date = %s, want %q", data, `"2024-06-15"`)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != d.String() {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}

func TestYTDStart(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	// Purchase before year start: baseline is January 1.
	early := NewDate(2023, time.May, 10)
	if got := YTDStart(early, now); !got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("YTDStart = %v, want year start", got)
	}

	// Purchase during the year: baseline is the purchase date.
	late := NewDate(2025, time.March, 10)
	if got := YTDStart(late, now); !got.Equal(late.Time()) {
		t.Errorf("YTDStart = %v, want purchase date", got)
	}
}

func TestFundJSONFieldNames(t *testing.T) {
	f := Fund{
		ID:            1,
		Name:          "Fondo",
		Ticker:        "VOO",
		Type:          FundTypeFixed,
		PurchaseValue: decimal.NewFromInt(100),
		Quantity:      decimal.NewFromInt(2),
		PurchaseDate:  NewDate(2024, time.January, 2),
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "nombre", "ticker", "tipo", "valor_compra", "cantidad", "fecha_compra"} {
		if _, ok := m[key]; !ok {
			t.Errorf("document is missing field %q", key)
		}
	}
	// Monetary fields persist as JSON numbers, not strings.
	if _, ok := m["valor_compra"].(float64); !ok {
		t.Errorf("valor_compra persisted as %T, want number", m["valor_compra"])
	}
}
