package application

import (
	"strings"
	"sync"
	"time"

	"github.com/minmo-hq/offrampd/pkg/minmo"
)

// DefaultRateTTL is how long a fetched exchange rate stays fresh.
const DefaultRateTTL = 30 * time.Second

// RateSource is the slice of the swap service the cache fetches from.
type RateSource interface {
	GetFxRate(base, target minmo.Currency) (*minmo.FxRateResponse, error)
}

// RateCache memoizes FX rates per currency pair with a fixed TTL. It is
// constructed explicitly and injected where rate lookups are needed.
type RateCache struct {
	source RateSource
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	rates map[string]cachedRate
}

type cachedRate struct {
	rate      minmo.FxRateResponse
	fetchedAt time.Time
}

func NewRateCache(source RateSource, ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}
	return &RateCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		rates:  make(map[string]cachedRate),
	}
}

// GetRate returns the cached rate for the pair when still fresh,
// otherwise fetches and caches a new one.
func (c *RateCache) GetRate(base, target minmo.Currency) (*minmo.FxRateResponse, error) {
	key := cacheKey(base, target)

	c.mu.Lock()
	cached, ok := c.rates[key]
	c.mu.Unlock()

	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		rate := cached.rate
		return &rate, nil
	}

	return c.Refresh(base, target)
}

// Refresh fetches the pair unconditionally and updates the cache.
func (c *RateCache) Refresh(base, target minmo.Currency) (*minmo.FxRateResponse, error) {
	rate, err := c.source.GetFxRate(base, target)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rates[cacheKey(base, target)] = cachedRate{rate: *rate, fetchedAt: c.now()}
	c.mu.Unlock()

	return rate, nil
}

func (c *RateCache) Clear() {
	c.mu.Lock()
	c.rates = make(map[string]cachedRate)
	c.mu.Unlock()
}

func cacheKey(base, target minmo.Currency) string {
	return strings.ToUpper(string(base) + "-" + string(target))
}
