// Command cartera-export writes a valuation snapshot of the portfolio to a
// Parquet file, one record per holding, for offline analysis.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"cartera/internal/config"
	"cartera/internal/engine"
	"cartera/internal/market"
	"cartera/internal/store"
	"cartera/internal/util"
)

// HoldingRecord is the Parquet schema for one valued holding.
type HoldingRecord struct {
	Kind           string  `parquet:"kind"` // "fund" or "stock"
	ID             int64   `parquet:"id"`
	Name           string  `parquet:"name"`
	Ticker         string  `parquet:"ticker"`
	Category       string  `parquet:"category"`
	PurchaseDate   string  `parquet:"purchase_date"`
	Invested       float64 `parquet:"invested"`
	PriceKnown     bool    `parquet:"price_known"`
	CurrentPrice   float64 `parquet:"current_price"`
	CurrentValue   float64 `parquet:"current_value"`
	DailyChangePct float64 `parquet:"daily_change_pct"`
	YTDChangePct   float64 `parquet:"ytd_change_pct"`
	GainPct        float64 `parquet:"gain_pct"`
	ExportedAt     int64   `parquet:"exported_at,timestamp(millisecond)"`
}

func toRecord(kind string, r engine.Row, at time.Time) HoldingRecord {
	invested, _ := r.Invested.Float64()
	price, _ := r.CurrentPrice.Float64()
	value, _ := r.CurrentValue.Float64()
	return HoldingRecord{
		Kind:           kind,
		ID:             r.ID,
		Name:           r.Name,
		Ticker:         r.Ticker,
		Category:       r.Category,
		PurchaseDate:   r.PurchaseDate.String(),
		Invested:       invested,
		PriceKnown:     r.PriceKnown,
		CurrentPrice:   price,
		CurrentValue:   value,
		DailyChangePct: r.DailyChangePct,
		YTDChangePct:   r.YTDChangePct,
		GainPct:        r.GainPct,
		ExportedAt:     at.UnixMilli(),
	}
}

func main() {
	var (
		cfgPath = flag.String("config", "config/cartera.yaml", "config file path")
		outPath = flag.String("out", "", "output parquet file (default cartera-YYYY-MM-DD.parquet)")
	)
	flag.Parse()

	if p := os.Getenv("CARTERA_CONFIG"); p != "" && *cfgPath == "config/cartera.yaml" {
		*cfgPath = p
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := util.NewLogger(cfg.Logging.Level)

	ctx := context.Background()

	var st store.Store
	switch cfg.Storage.Backend {
	case config.BackendJSON:
		st, err = store.NewJSONStore(cfg.Storage.JSONPath, logger)
	case config.BackendSQLite:
		st, err = store.NewSQLiteStore(cfg.Storage.SQLitePath, logger)
	case config.BackendSupabase:
		st, err = store.NewSupabaseStore(ctx, cfg.Supabase.URL, cfg.Supabase.Key, logger)
	default:
		log.Fatalf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		log.Fatalf("opening %s store: %v", cfg.Storage.Backend, err)
	}
	defer st.Close()

	var provider market.Provider
	switch cfg.Market.Provider {
	case config.ProviderYahoo:
		provider = market.NewYahooProvider()
	case config.ProviderAlpaca:
		provider = market.NewAlpacaProvider(cfg.Market.Alpaca.APIKey, cfg.Market.Alpaca.APISecret, cfg.Market.Alpaca.DataURL)
	case config.ProviderStatic:
		provider = market.NewStaticProvider()
	default:
		log.Fatalf("unknown market provider %q", cfg.Market.Provider)
	}
	gateway := market.NewService(provider, market.Options{
		CacheTTL:        time.Duration(cfg.Market.CacheTTLSeconds) * time.Second,
		RateLimitPerMin: cfg.Market.RateLimitPerMin,
	}, logger)

	now := time.Now()
	var records []HoldingRecord
	for _, r := range engine.EnrichFunds(ctx, gateway, st.ListFunds(ctx)) {
		records = append(records, toRecord("fund", r, now))
	}
	for _, r := range engine.EnrichStocks(ctx, gateway, st.ListStocks(ctx)) {
		records = append(records, toRecord("stock", r, now))
	}
	if len(records) == 0 {
		log.Fatal("nothing to export: the portfolio is empty")
	}

	path := *outPath
	if path == "" {
		path = fmt.Sprintf("cartera-%s.parquet", now.Format("2006-01-02"))
	}
	if err := parquet.WriteFile(path, records); err != nil {
		log.Fatalf("writing %s: %v", path, err)
	}
	fmt.Printf("exported %d holdings to %s\n", len(records), path)
}
