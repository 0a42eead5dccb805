package marketdata

import (
	"sync"

	"foliotrack/internal/domain"
)

// QuoteCache keeps the last known price and company name per canonical
// symbol. Prices feed the fallback path when every provider fails; names
// avoid repeat lookups for symbols already resolved. Entries live for the
// process lifetime and are overwritten last-writer-wins per symbol.
type QuoteCache struct {
	mu     sync.RWMutex
	prices map[string]domain.Decimal
	names  map[string]string
}

func NewQuoteCache() *QuoteCache {
	return &QuoteCache{
		prices: make(map[string]domain.Decimal),
		names:  make(map[string]string),
	}
}

func (c *QuoteCache) Price(symbol string) (domain.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[symbol]
	return p, ok
}

func (c *QuoteCache) SetPrice(symbol string, price domain.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[symbol] = price
}

func (c *QuoteCache) Name(symbol string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.names[symbol]
	return n, ok
}

func (c *QuoteCache) SetName(symbol, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[symbol] = name
}
