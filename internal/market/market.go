// Package market resolves ticker symbols to current prices and price
// changes. A Gateway wraps a Provider (Alpaca, Yahoo, or a static table)
// with caching, rate limiting, and bounded retries, and degrades per
// ticker: an unknown or unreachable symbol yields "unavailable", never an
// error the caller has to handle.
package market

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"cartera/internal/domain"
	"cartera/internal/util"
)

// ErrUnknownTicker is returned by providers for symbols they cannot quote.
var ErrUnknownTicker = errors.New("unknown ticker")

// Quote is a point-in-time snapshot for one ticker.
type Quote struct {
	Price     decimal.Decimal
	PrevClose decimal.Decimal // zero when the previous close is unknown
	AsOf      time.Time
}

// Close is one day-close price.
type Close struct {
	Date  time.Time
	Price decimal.Decimal
}

// Provider fetches raw market data for a single symbol.
type Provider interface {
	// Name returns the provider identifier (e.g. "alpaca", "yahoo").
	Name() string

	// Quote returns the latest price and previous close for a symbol.
	Quote(ctx context.Context, symbol string) (*Quote, error)

	// DailyCloses returns day-close prices from `from` to now, ascending.
	DailyCloses(ctx context.Context, symbol string, from time.Time) ([]Close, error)
}

// Gateway is the contract the valuation engine consumes.
type Gateway interface {
	// CurrentPrice returns the latest tradable price, or false when the
	// ticker is unknown or the provider unreachable.
	CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, bool)

	// DailyChange returns the percent and absolute per-unit change since
	// the previous close. It returns the zero pair on failure so
	// downstream arithmetic needs no nil checks.
	DailyChange(ctx context.Context, ticker string) (float64, decimal.Decimal)

	// YTDChange returns the percent price change from the later of year
	// start and the purchase date to now, or 0 on failure.
	YTDChange(ctx context.Context, ticker string, purchase domain.Date) float64
}

var _ Gateway = (*Service)(nil)

// Service implements Gateway over a Provider. Identical tickers within the
// cache TTL share one provider round-trip, which keeps a full-portfolio
// refresh at one call per distinct symbol.
type Service struct {
	provider Provider
	cache    *quoteCache
	limiter  *util.RateLimiter
	log      *slog.Logger
	now      func() time.Time
}

// Options tune the service; zero values get sensible defaults.
type Options struct {
	CacheTTL        time.Duration
	RateLimitPerMin int
}

// NewService wraps the provider in the Gateway contract.
func NewService(p Provider, opts Options, log *slog.Logger) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	perMin := opts.RateLimitPerMin
	if perMin <= 0 {
		perMin = 60
	}
	return &Service{
		provider: p,
		cache:    newQuoteCache(ttl),
		limiter:  util.NewRateLimiter(perMin),
		log:      log.With("provider", p.Name()),
		now:      time.Now,
	}
}

func (s *Service) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	q, err := s.quote(ctx, ticker)
	if err != nil {
		return decimal.Zero, false
	}
	return q.Price, true
}

func (s *Service) DailyChange(ctx context.Context, ticker string) (float64, decimal.Decimal) {
	q, err := s.quote(ctx, ticker)
	if err != nil || q.PrevClose.IsZero() {
		return 0, decimal.Zero
	}
	abs := q.Price.Sub(q.PrevClose)
	pct, _ := abs.Div(q.PrevClose).Mul(decimal.NewFromInt(100)).Float64()
	return pct, abs
}

func (s *Service) YTDChange(ctx context.Context, ticker string, purchase domain.Date) float64 {
	ticker = domain.NormalizeTicker(ticker)
	q, err := s.quote(ctx, ticker)
	if err != nil {
		return 0
	}

	from := domain.YTDStart(purchase, s.now())
	closes, ok := s.cache.closes(ticker, from)
	if !ok {
		if err := s.limiter.Wait(ctx); err != nil {
			return 0
		}
		err = util.Retry(ctx, 2, 250*time.Millisecond, func() error {
			var ferr error
			closes, ferr = s.provider.DailyCloses(ctx, ticker, from)
			return ferr
		})
		if err != nil {
			s.log.Warn("fetching daily closes", "ticker", ticker, "error", err)
			return 0
		}
		s.cache.putCloses(ticker, from, closes)
	}
	if len(closes) == 0 {
		return 0
	}

	baseline := closes[0].Price
	if baseline.IsZero() {
		return 0
	}
	pct, _ := q.Price.Sub(baseline).Div(baseline).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// quote fetches the snapshot for a ticker through the cache.
func (s *Service) quote(ctx context.Context, ticker string) (*Quote, error) {
	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrUnknownTicker
	}
	if q, ok := s.cache.quote(ticker); ok {
		return q, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var q *Quote
	err := util.Retry(ctx, 2, 250*time.Millisecond, func() error {
		var ferr error
		q, ferr = s.provider.Quote(ctx, ticker)
		return ferr
	})
	if err != nil {
		s.log.Warn("fetching quote", "ticker", ticker, "error", err)
		return nil, err
	}
	s.cache.putQuote(ticker, q)
	return q, nil
}
