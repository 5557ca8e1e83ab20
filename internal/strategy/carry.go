package strategy

import (
	"context"
	"math"

	"arbscan/internal/config"
	"arbscan/internal/market"
	"arbscan/internal/models"
)

// carrySnapshot is the shared spot/futures view both carry scanners start from.
type carrySnapshot struct {
	symbol  string
	spot    float64
	funding market.Funding

	basis    float64
	basisPct float64

	direction models.CarryDirection
	apyPct    float64
}

// takeCarrySnapshot fetches and derives the basis view for one perpetual.
// Returns false when either quote is missing or the basis is outside the
// configured sanity band.
func takeCarrySnapshot(ctx context.Context, data market.Data, cfg config.CarryConfig, symbol string) (carrySnapshot, bool) {
	spot, ok := data.SpotPrice(ctx, symbol)
	if !ok || spot <= 0 {
		return carrySnapshot{}, false
	}
	funding, ok := data.FundingRate(ctx, symbol)
	if !ok || funding.MarkPrice <= 0 {
		return carrySnapshot{}, false
	}

	basis := spot - funding.MarkPrice
	basisPct := basis / spot * 100
	abs := absFloat(basisPct)
	if abs < cfg.MinBasisPct || abs > cfg.MaxBasisPct {
		return carrySnapshot{}, false
	}

	snap := carrySnapshot{
		symbol:   symbol,
		spot:     spot,
		funding:  funding,
		basis:    basis,
		basisPct: basisPct,
		apyPct:   fundingAPYPct(funding.Rate, cfg.FundingPeriodsPerDay),
	}
	// Futures above spot: collect convergence and funding on the short leg.
	if funding.MarkPrice > spot {
		snap.direction = models.DirectionLongSpotShortFutures
	} else {
		snap.direction = models.DirectionLongFutures
	}
	return snap, true
}

// fundingAPYPct annualizes a periodic funding rate, compounding daily.
func fundingAPYPct(rate float64, periodsPerDay int) float64 {
	if periodsPerDay <= 0 {
		periodsPerDay = 3
	}
	daily := rate * float64(periodsPerDay)
	return (math.Pow(1+daily, 365) - 1) * 100
}

// fundingReturnPct pro-rates funding flow over the holding period. The short
// futures leg collects positive rates; a long futures leg pays them.
func fundingReturnPct(snap carrySnapshot, cfg config.CarryConfig) float64 {
	periods := float64(cfg.FundingPeriodsPerDay)
	if periods <= 0 {
		periods = 3
	}
	flow := snap.funding.Rate * periods * cfg.HoldingPeriodDays * 100
	if snap.direction == models.DirectionLongFutures {
		return -flow
	}
	return flow
}

// convergenceReturnPct applies the configured partial-convergence assumption
// to the basis magnitude.
func convergenceReturnPct(snap carrySnapshot, cfg config.CarryConfig) float64 {
	return absFloat(snap.basisPct) * cfg.ConvergenceAssumption
}

// carryFeesPct is the round-trip fee drag for the legs the direction requires.
func carryFeesPct(direction models.CarryDirection, cfg config.CarryConfig) float64 {
	if direction == models.DirectionLongFutures {
		return 2 * cfg.FuturesFeePct
	}
	return 2*cfg.SpotFeePct + 2*cfg.FuturesFeePct
}

// carryRiskLevel grades basis magnitude and whether funding flow agrees with
// the chosen direction.
func carryRiskLevel(snap carrySnapshot) string {
	agrees := (snap.direction == models.DirectionLongSpotShortFutures && snap.funding.Rate > 0) ||
		(snap.direction == models.DirectionLongFutures && snap.funding.Rate < 0)
	abs := absFloat(snap.basisPct)
	switch {
	case abs < 1.0 && agrees:
		return "LOW"
	case abs < 2.5:
		return "MEDIUM"
	default:
		return "HIGH"
	}
}
