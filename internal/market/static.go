package market

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Compile-time interface check.
var _ Provider = (*StaticProvider)(nil)

// StaticProvider serves fixed quotes from memory without external calls.
// It backs tests and offline runs of the dashboard.
type StaticProvider struct {
	mu     sync.RWMutex
	quotes map[string]Quote
	closes map[string][]Close
}

// NewStaticProvider creates an empty provider; quotes are added with Set.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		quotes: make(map[string]Quote),
		closes: make(map[string][]Close),
	}
}

// Set registers the quote and optional daily close series for a symbol.
func (p *StaticProvider) Set(symbol string, q Quote, closes []Close) {
	p.mu.Lock()
	p.quotes[symbol] = q
	p.closes[symbol] = closes
	p.mu.Unlock()
}

// Name returns "static".
func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) Quote(_ context.Context, symbol string) (*Quote, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	q, ok := p.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownTicker)
	}
	return &q, nil
}

func (p *StaticProvider) DailyCloses(_ context.Context, symbol string, from time.Time) ([]Close, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	series, ok := p.closes[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownTicker)
	}
	var out []Close
	for _, c := range series {
		if c.Date.Before(from) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
