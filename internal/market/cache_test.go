package market

import (
	"context"
	"testing"
)

type countingData struct {
	spotCalls    int
	fundingCalls int
	p2pCalls     int
	historyCalls int

	spot map[string]float64
}

func (c *countingData) SpotPrice(_ context.Context, symbol string) (float64, bool) {
	c.spotCalls++
	v, ok := c.spot[symbol]
	return v, ok
}

func (c *countingData) FundingRate(_ context.Context, _ string) (Funding, bool) {
	c.fundingCalls++
	return Funding{Rate: 0.0001, MarkPrice: 100}, true
}

func (c *countingData) BestP2PPrice(_ context.Context, _, _ string, _ P2PSide) (float64, bool) {
	c.p2pCalls++
	return 0, false
}

func (c *countingData) HistoricalPrices(_ context.Context, _ string, _ int) []float64 {
	c.historyCalls++
	return []float64{1, 2, 3}
}

func TestScanCacheMemoizes(t *testing.T) {
	ctx := context.Background()
	next := &countingData{spot: map[string]float64{"BTCUSDT": 100}}
	cache := NewScanCache(next)

	for i := 0; i < 3; i++ {
		if v, ok := cache.SpotPrice(ctx, "BTCUSDT"); !ok || v != 100 {
			t.Fatalf("spot = %v/%v", v, ok)
		}
		cache.FundingRate(ctx, "BTCUSDT")
		cache.HistoricalPrices(ctx, "BTCUSDT", 30)
	}
	if next.spotCalls != 1 || next.fundingCalls != 1 || next.historyCalls != 1 {
		t.Fatalf("expected single upstream calls, got spot=%d funding=%d history=%d",
			next.spotCalls, next.fundingCalls, next.historyCalls)
	}
}

func TestScanCacheCachesNegativeResults(t *testing.T) {
	ctx := context.Background()
	next := &countingData{}
	cache := NewScanCache(next)

	for i := 0; i < 3; i++ {
		if _, ok := cache.BestP2PPrice(ctx, "BTC", "USD", P2PSell); ok {
			t.Fatalf("expected a miss")
		}
		if _, ok := cache.SpotPrice(ctx, "NOPE"); ok {
			t.Fatalf("expected a miss")
		}
	}
	if next.p2pCalls != 1 || next.spotCalls != 1 {
		t.Fatalf("negative results not cached: p2p=%d spot=%d", next.p2pCalls, next.spotCalls)
	}
}

func TestScanCacheKeysHistoryByWindow(t *testing.T) {
	ctx := context.Background()
	next := &countingData{}
	cache := NewScanCache(next)

	cache.HistoricalPrices(ctx, "BTCUSDT", 30)
	cache.HistoricalPrices(ctx, "BTCUSDT", 60)
	cache.HistoricalPrices(ctx, "BTCUSDT", 30)
	if next.historyCalls != 2 {
		t.Fatalf("expected one call per window, got %d", next.historyCalls)
	}
}

func TestScanCacheKeysP2PBySide(t *testing.T) {
	ctx := context.Background()
	next := &countingData{}
	cache := NewScanCache(next)

	cache.BestP2PPrice(ctx, "BTC", "USD", P2PBuy)
	cache.BestP2PPrice(ctx, "BTC", "USD", P2PSell)
	cache.BestP2PPrice(ctx, "BTC", "USD", P2PBuy)
	if next.p2pCalls != 2 {
		t.Fatalf("expected one call per side, got %d", next.p2pCalls)
	}
}
