package market

import (
	"sync"
	"time"

	"cartera/internal/domain"
)

// quoteCache holds quotes and close series for a TTL so that identical
// tickers inside one refresh cycle cost a single provider round-trip.
type quoteCache struct {
	ttl time.Duration

	mu     sync.RWMutex
	quotes map[string]cachedQuote
	series map[string]cachedSeries
}

type cachedQuote struct {
	quote   *Quote
	fetched time.Time
}

type cachedSeries struct {
	closes  []Close
	fetched time.Time
}

func newQuoteCache(ttl time.Duration) *quoteCache {
	return &quoteCache{
		ttl:    ttl,
		quotes: make(map[string]cachedQuote),
		series: make(map[string]cachedSeries),
	}
}

func (c *quoteCache) quote(ticker string) (*Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.quotes[ticker]
	if !ok || time.Since(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.quote, true
}

func (c *quoteCache) putQuote(ticker string, q *Quote) {
	c.mu.Lock()
	c.quotes[ticker] = cachedQuote{quote: q, fetched: time.Now()}
	c.mu.Unlock()
}

func (c *quoteCache) closes(ticker string, from time.Time) ([]Close, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.series[seriesKey(ticker, from)]
	if !ok || time.Since(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.closes, true
}

func (c *quoteCache) putCloses(ticker string, from time.Time, closes []Close) {
	c.mu.Lock()
	c.series[seriesKey(ticker, from)] = cachedSeries{closes: closes, fetched: time.Now()}
	c.mu.Unlock()
}

func seriesKey(ticker string, from time.Time) string {
	return ticker + ":" + from.Format(domain.DateLayout)
}
