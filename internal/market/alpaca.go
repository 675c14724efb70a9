package market

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// Compile-time interface check.
var _ Provider = (*AlpacaProvider)(nil)

// AlpacaProvider fetches quotes and daily bars from the Alpaca market-data
// API. It covers US-listed symbols; European fund tickers usually need the
// Yahoo provider instead.
type AlpacaProvider struct {
	client *marketdata.Client
}

// NewAlpacaProvider creates a provider configured with the given
// credentials and optional data endpoint.
func NewAlpacaProvider(apiKey, apiSecret, dataURL string) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaProvider{client: marketdata.NewClient(opts)}
}

// Name returns "alpaca".
func (p *AlpacaProvider) Name() string { return "alpaca" }

// Quote returns the latest trade price and the previous daily close from
// the symbol snapshot.
func (p *AlpacaProvider) Quote(_ context.Context, symbol string) (*Quote, error) {
	snap, err := p.client.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", symbol, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownTicker)
	}

	q := &Quote{AsOf: time.Now()}
	switch {
	case snap.LatestTrade != nil && snap.LatestTrade.Price > 0:
		q.Price = decimal.NewFromFloat(snap.LatestTrade.Price)
		q.AsOf = snap.LatestTrade.Timestamp
	case snap.DailyBar != nil && snap.DailyBar.Close > 0:
		q.Price = decimal.NewFromFloat(snap.DailyBar.Close)
		q.AsOf = snap.DailyBar.Timestamp
	default:
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownTicker)
	}
	if snap.PrevDailyBar != nil && snap.PrevDailyBar.Close > 0 {
		q.PrevClose = decimal.NewFromFloat(snap.PrevDailyBar.Close)
	}
	return q, nil
}

// DailyCloses returns the daily close series since `from`.
func (p *AlpacaProvider) DailyCloses(_ context.Context, symbol string, from time.Time) ([]Close, error) {
	bars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     from,
	})
	if err != nil {
		return nil, fmt.Errorf("daily bars %s: %w", symbol, err)
	}

	closes := make([]Close, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		closes = append(closes, Close{
			Date:  b.Timestamp,
			Price: decimal.NewFromFloat(b.Close),
		})
	}
	return closes, nil
}
