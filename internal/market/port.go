// Package market provides the price/market data port consumed by the strategy
// scanners, plus the Binance adapters implementing it. "No data" is a normal,
// typed outcome: lookups return a second boolean instead of an error so that
// callers skip the candidate rather than unwind the scan.
package market

import (
	"context"
	"time"
)

// P2PSide is the taker side of a peer-to-peer conversion.
type P2PSide string

const (
	P2PBuy  P2PSide = "BUY"
	P2PSell P2PSide = "SELL"
)

// Funding is a perpetual-futures funding snapshot.
type Funding struct {
	Rate            float64
	MarkPrice       float64
	NextFundingTime time.Time
}

// Data is the price/market data port. Implementations must treat upstream
// failures and empty payloads identically: (zero, false).
type Data interface {
	// SpotPrice returns the last spot price for a symbol like "BTCUSDT".
	SpotPrice(ctx context.Context, symbol string) (float64, bool)

	// FundingRate returns the current funding snapshot for a perpetual.
	FundingRate(ctx context.Context, symbol string) (Funding, bool)

	// BestP2PPrice returns the best advertised P2P price for converting
	// between an asset and a fiat currency on the given side.
	BestP2PPrice(ctx context.Context, asset, fiat string, side P2PSide) (float64, bool)

	// HistoricalPrices returns up to days daily closes in chronological
	// order. An empty slice means the series is unavailable.
	HistoricalPrices(ctx context.Context, symbol string, days int) []float64
}
