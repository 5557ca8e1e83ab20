package strategy

import (
	"context"

	"arbscan/internal/market"
)

// stubData is an in-memory market.Data used across the scanner tests.
type stubData struct {
	spot    map[string]float64
	funding map[string]market.Funding
	p2p     map[string]float64
	history map[string][]float64

	panicOnSpot bool
}

func (s *stubData) SpotPrice(_ context.Context, symbol string) (float64, bool) {
	if s.panicOnSpot {
		panic("spot feed down")
	}
	v, ok := s.spot[symbol]
	return v, ok
}

func (s *stubData) FundingRate(_ context.Context, symbol string) (market.Funding, bool) {
	v, ok := s.funding[symbol]
	return v, ok
}

func (s *stubData) BestP2PPrice(_ context.Context, asset, fiat string, side market.P2PSide) (float64, bool) {
	v, ok := s.p2p[asset+":"+fiat+":"+string(side)]
	return v, ok
}

func (s *stubData) HistoricalPrices(_ context.Context, symbol string, _ int) []float64 {
	return s.history[symbol]
}
