package market

import (
	"context"
	"strconv"
	"sync"
)

// ScanCache memoizes port lookups for the duration of one scan so concurrent
// per-candidate subtasks never fetch the same quote twice. Negative results
// are cached too: a symbol with no quote stays quoteless for the whole scan.
// Create a fresh cache per scan; it is never reused across scans.
type ScanCache struct {
	next Data

	mu      sync.Mutex
	spot    map[string]cached[float64]
	funding map[string]cached[Funding]
	p2p     map[string]cached[float64]
	history map[string][]float64
}

type cached[T any] struct {
	value T
	ok    bool
}

func NewScanCache(next Data) *ScanCache {
	return &ScanCache{
		next:    next,
		spot:    map[string]cached[float64]{},
		funding: map[string]cached[Funding]{},
		p2p:     map[string]cached[float64]{},
		history: map[string][]float64{},
	}
}

func (c *ScanCache) SpotPrice(ctx context.Context, symbol string) (float64, bool) {
	c.mu.Lock()
	if hit, ok := c.spot[symbol]; ok {
		c.mu.Unlock()
		return hit.value, hit.ok
	}
	c.mu.Unlock()

	v, ok := c.next.SpotPrice(ctx, symbol)

	c.mu.Lock()
	c.spot[symbol] = cached[float64]{value: v, ok: ok}
	c.mu.Unlock()
	return v, ok
}

func (c *ScanCache) FundingRate(ctx context.Context, symbol string) (Funding, bool) {
	c.mu.Lock()
	if hit, ok := c.funding[symbol]; ok {
		c.mu.Unlock()
		return hit.value, hit.ok
	}
	c.mu.Unlock()

	v, ok := c.next.FundingRate(ctx, symbol)

	c.mu.Lock()
	c.funding[symbol] = cached[Funding]{value: v, ok: ok}
	c.mu.Unlock()
	return v, ok
}

func (c *ScanCache) BestP2PPrice(ctx context.Context, asset, fiat string, side P2PSide) (float64, bool) {
	key := asset + ":" + fiat + ":" + string(side)
	c.mu.Lock()
	if hit, ok := c.p2p[key]; ok {
		c.mu.Unlock()
		return hit.value, hit.ok
	}
	c.mu.Unlock()

	v, ok := c.next.BestP2PPrice(ctx, asset, fiat, side)

	c.mu.Lock()
	c.p2p[key] = cached[float64]{value: v, ok: ok}
	c.mu.Unlock()
	return v, ok
}

func (c *ScanCache) HistoricalPrices(ctx context.Context, symbol string, days int) []float64 {
	key := symbol + ":" + strconv.Itoa(days)
	c.mu.Lock()
	if hit, ok := c.history[key]; ok {
		c.mu.Unlock()
		return hit
	}
	c.mu.Unlock()

	v := c.next.HistoricalPrices(ctx, symbol, days)

	c.mu.Lock()
	c.history[key] = v
	c.mu.Unlock()
	return v
}
