package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Compile-time interface check.
var _ Provider = (*YahooProvider)(nil)

// YahooProvider fetches quotes from the Yahoo Finance v8 chart endpoint.
// It needs no credentials and covers most fund and EU tickers, so it is
// the default provider. One chart request per symbol serves the current
// price, previous close, and the daily close series, and charts are held
// for a short TTL to spare repeated round-trips within a refresh.
type YahooProvider struct {
	cli *http.Client
	ttl time.Duration

	mu     sync.RWMutex
	charts map[string]cachedChart
}

type cachedChart struct {
	chart   *chart
	fetched time.Time
}

// chart is the subset of the v8 response the provider consumes.
type chart struct {
	price     decimal.Decimal
	prevClose decimal.Decimal
	asOf      time.Time
	closes    []Close
}

// NewYahooProvider creates the provider with its own HTTP client.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		cli:    &http.Client{Timeout: 8 * time.Second},
		ttl:    60 * time.Second,
		charts: make(map[string]cachedChart),
	}
}

// Name returns "yahoo".
func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	c, err := p.chart(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return &Quote{Price: c.price, PrevClose: c.prevClose, AsOf: c.asOf}, nil
}

func (p *YahooProvider) DailyCloses(ctx context.Context, symbol string, from time.Time) ([]Close, error) {
	c, err := p.chart(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var out []Close
	for _, cl := range c.closes {
		if cl.Date.Before(from) {
			continue
		}
		out = append(out, cl)
	}
	return out, nil
}

func (p *YahooProvider) chart(ctx context.Context, symbol string) (*chart, error) {
	p.mu.RLock()
	if e, ok := p.charts[symbol]; ok && time.Since(e.fetched) < p.ttl {
		p.mu.RUnlock()
		return e.chart, nil
	}
	p.mu.RUnlock()

	c, err := p.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.charts[symbol] = cachedChart{chart: c, fetched: time.Now()}
	p.mu.Unlock()
	return c, nil
}

func (p *YahooProvider) fetch(ctx context.Context, symbol string) (*chart, error) {
	url := fmt.Sprintf("https://query2.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=1y", symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "cartera/1.0")

	resp, err := p.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownTicker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo http %d for %s", resp.StatusCode, symbol)
	}

	var raw struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					RegularMarketTime  int64   `json:"regularMarketTime"`
				} `json:"meta"`
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error any `json:"error"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownTicker)
	}

	r := raw.Chart.Result[0]
	c := &chart{}

	if len(r.Indicators.Quote) > 0 && len(r.Indicators.Quote[0].Close) == len(r.Timestamp) {
		for i, ts := range r.Timestamp {
			v := r.Indicators.Quote[0].Close[i]
			if v <= 0 {
				continue
			}
			c.closes = append(c.closes, Close{
				Date:  time.Unix(ts, 0).UTC(),
				Price: decimal.NewFromFloat(v),
			})
		}
	}

	if r.Meta.RegularMarketPrice > 0 {
		c.price = decimal.NewFromFloat(r.Meta.RegularMarketPrice)
		c.asOf = time.Unix(r.Meta.RegularMarketTime, 0).UTC()
	} else if n := len(c.closes); n > 0 {
		// Fall back to the last daily close when the meta is missing.
		c.price = c.closes[n-1].Price
		c.asOf = c.closes[n-1].Date
	}
	if c.price.IsZero() {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownTicker)
	}

	// Previous close: last close strictly before the as-of trading day.
	asOfDay := c.asOf.Truncate(24 * time.Hour)
	for i := len(c.closes) - 1; i >= 0; i-- {
		if c.closes[i].Date.Truncate(24 * time.Hour).Before(asOfDay) {
			c.prevClose = c.closes[i].Price
			break
		}
	}

	return c, nil
}
