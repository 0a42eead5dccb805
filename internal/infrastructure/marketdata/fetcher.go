package marketdata

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"foliotrack/internal/domain"
)

// DefaultCooldown is how long a provider is excluded after signaling a
// rate limit.
const DefaultCooldown = 5 * time.Minute

// Fetcher resolves prices and names across an ordered list of providers,
// skipping any provider on cooldown and falling back to cached values when
// every provider fails. Provider order is fixed at construction.
type Fetcher struct {
	providers []Provider
	cooldowns *CooldownTracker
	cache     *QuoteCache
	cooldown  time.Duration

	now func() time.Time
}

// NewFetcher wires the fetcher with its state objects. The cooldown
// tracker and cache are injected rather than process-global so tests and
// callers can construct isolated instances.
func NewFetcher(providers []Provider, cooldowns *CooldownTracker, cache *QuoteCache, cooldown time.Duration) *Fetcher {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Fetcher{
		providers: providers,
		cooldowns: cooldowns,
		cache:     cache,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Cache exposes the underlying quote cache for callers that seed or
// inspect it, such as the startup name reconciliation.
func (f *Fetcher) Cache() *QuoteCache {
	return f.cache
}

// CurrentPrices fetches the current price for each symbol independently.
// The result always contains an entry for every requested symbol; nil
// marks a price that could not be resolved from any provider or the cache.
func (f *Fetcher) CurrentPrices(ctx context.Context, symbols []string) map[string]*domain.Decimal {
	prices := make(map[string]*domain.Decimal, len(symbols))
	for _, raw := range symbols {
		sym := domain.CanonicalSymbol(raw)
		start := f.now()

		if price := f.priceFromProviders(ctx, sym); price != nil {
			f.cache.SetPrice(sym, *price)
			prices[sym] = price
			slog.Info("fetched price", "symbol", sym, "price", price.String(), "elapsed", f.now().Sub(start))
			continue
		}

		if cached, ok := f.cache.Price(sym); ok {
			c := cached
			prices[sym] = &c
			slog.Info("using cached price", "symbol", sym, "price", cached.String())
		} else {
			prices[sym] = nil
		}
	}
	return prices
}

func (f *Fetcher) priceFromProviders(ctx context.Context, symbol string) *domain.Decimal {
	for _, p := range f.providers {
		if !f.cooldowns.Eligible(p.Name(), f.now()) {
			continue
		}
		price, err := p.FetchPrice(ctx, symbol)
		switch {
		case err == nil:
			return &price
		case errors.Is(err, ErrNoData):
			continue
		default:
			f.noteProviderFailure(p.Name(), symbol, err)
		}
	}
	return nil
}

// CompanyName resolves a display name for the symbol. The name cache is
// authoritative once populated. A candidate equal to the symbol itself is a
// low-quality result: it is remembered as a fallback but later providers
// still get a chance to do better. The final answer is always cached, even
// when it is just the symbol, so the lookup is not repeated this process.
func (f *Fetcher) CompanyName(ctx context.Context, symbol string) string {
	sym := domain.CanonicalSymbol(symbol)
	if name, ok := f.cache.Name(sym); ok && name != "" {
		return name
	}

	var name, fallback string
	for _, p := range f.providers {
		if !f.cooldowns.Eligible(p.Name(), f.now()) {
			continue
		}
		candidate, err := p.FetchName(ctx, sym)
		if err != nil {
			if !errors.Is(err, ErrNoData) {
				f.noteProviderFailure(p.Name(), sym, err)
			}
			continue
		}
		if candidate == "" {
			continue
		}
		if !strings.EqualFold(candidate, sym) {
			name = candidate
			break
		}
		if fallback == "" {
			fallback = candidate
		}
	}

	if name == "" {
		name = fallback
	}
	if name == "" {
		name = sym
	}
	f.cache.SetName(sym, name)
	return name
}

// noteProviderFailure classifies a provider error and updates cooldown
// state. Rate limits use the configured cooldown; an exhausted daily quota
// excludes the provider until local midnight, when its budget resets.
func (f *Fetcher) noteProviderFailure(provider, symbol string, err error) {
	now := f.now()

	var quotaErr *QuotaExhaustedError
	if errors.As(err, &quotaErr) {
		slog.Warn("provider daily quota exhausted", "provider", provider, "symbol", symbol, "error", err)
		f.cooldowns.MarkRateLimited(provider, now, untilNextMidnight(now))
		return
	}

	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		slog.Warn("provider rate limited", "provider", provider, "symbol", symbol, "error", err)
		f.cooldowns.MarkRateLimited(provider, now, f.cooldown)
		return
	}

	// Some upstream SDK errors only signal throttling in the message text.
	msg := err.Error()
	if strings.Contains(msg, "Too Many Requests") || strings.Contains(strings.ToLower(msg), "rate limit") {
		slog.Warn("provider rate limited", "provider", provider, "symbol", symbol, "error", err)
		f.cooldowns.MarkRateLimited(provider, now, f.cooldown)
		return
	}

	slog.Warn("provider call failed", "provider", provider, "symbol", symbol, "error", err)
}

func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
