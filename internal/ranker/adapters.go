package ranker

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arbscan/internal/config"
	"arbscan/internal/models"
	"arbscan/internal/strategy"
)

// Adapters map each strategy's native result into the unified opportunity
// schema. They are pure aside from id/timestamp generation, and every bounded
// score leaves them already clamped.

func opportunityFromPath(p models.ArbitragePath, cfg config.TriangleConfig) models.Opportunity {
	sharpe, sortino, riskAdj := ratioProxies(p.ROIPercentage, p.RiskScore)
	hops := p.Hops()

	plan := make([]string, 0, len(p.Steps))
	for i, step := range p.Steps {
		plan = append(plan, fmt.Sprintf("%d. %s %s for %s at %.8f", i+1, step.Side, step.From, step.To, step.Price))
	}

	symbols := append([]string{}, p.Path[:len(p.Path)-1]...)

	pathCopy := p
	return models.Opportunity{
		ID:        uuid.NewString(),
		Strategy:  models.StrategyTriangle,
		Timestamp: time.Now().UTC(),

		ExpectedReturnPct: p.ROIPercentage,
		ExpectedReturnUSD: p.ProfitAmount,

		RiskScore:  p.RiskScore,
		Confidence: models.ClampScore(0.5*p.LiquidityScore + 0.5*(100-p.RiskScore)),

		SharpeRatio:        sharpe,
		SortinoRatio:       sortino,
		RiskAdjustedReturn: riskAdj,

		RequiredCapitalUSD: decimal.NewFromFloat(cfg.AmountUSD),
		ExecutionTimeSec:   5 * float64(hops),

		ComplexityScore: models.ClampScore(20 * float64(hops)),
		LiquidityScore:  p.LiquidityScore,

		MaxPositionSizeUSD: decimal.NewFromFloat(cfg.AmountUSD * (1 + 4*p.LiquidityScore/100)),

		OpportunityScore: p.OpportunityScore,
		Priority:         priorityFor(p.OpportunityScore),
		Recommendation:   recommendationFor(p.OpportunityScore, p.RiskScore),

		Details:       models.Details{Triangle: &pathCopy},
		ExecutionPlan: plan,
		Symbols:       symbols,
		Tags:          []string{"triangular", "p2p"},
	}
}

func opportunityFromPair(sig models.PairSignal, cfg config.StatisticalConfig) models.Opportunity {
	absZ := sig.ZScore
	if absZ < 0 {
		absZ = -absZ
	}
	// Expected reversion toward the mean, half a percent per standard
	// deviation of displacement.
	retPct := 0.5 * absZ

	risk := models.ClampScore(40 + 20*(1-absFloat(sig.Correlation)) + sig.CointegrationPValue*100)
	sharpe, sortino, riskAdj := ratioProxies(retPct, risk)
	score := compositeScore(retPct, 75, risk, sig.Confidence)

	leg1, leg2 := strategy.LegSizes(cfg.PositionSizeUSD, sig.HedgeRatio)
	var plan []string
	switch sig.SignalType {
	case models.SignalShortSpread:
		plan = []string{
			fmt.Sprintf("1. SHORT %s for %.2f USD", sig.Asset2, leg2),
			fmt.Sprintf("2. LONG %s for %.2f USD", sig.Asset1, leg1),
			"3. Exit both legs when the spread z-score reverts toward 0",
		}
	case models.SignalLongSpread:
		plan = []string{
			fmt.Sprintf("1. LONG %s for %.2f USD", sig.Asset2, leg2),
			fmt.Sprintf("2. SHORT %s for %.2f USD", sig.Asset1, leg1),
			"3. Exit both legs when the spread z-score reverts toward 0",
		}
	}

	sigCopy := sig
	return models.Opportunity{
		ID:        uuid.NewString(),
		Strategy:  models.StrategyStatistical,
		Timestamp: time.Now().UTC(),

		ExpectedReturnPct: retPct,
		ExpectedReturnUSD: decimal.NewFromFloat(cfg.PositionSizeUSD * retPct / 100),

		RiskScore:  risk,
		Confidence: sig.Confidence,

		SharpeRatio:        sharpe,
		SortinoRatio:       sortino,
		RiskAdjustedReturn: riskAdj,

		RequiredCapitalUSD: decimal.NewFromFloat(cfg.PositionSizeUSD),
		ExecutionTimeSec:   30,

		ComplexityScore: 50,
		LiquidityScore:  75,

		MaxPositionSizeUSD: decimal.NewFromFloat(cfg.MaxPositionSizeUSD),

		OpportunityScore: score,
		Priority:         priorityFor(score),
		Recommendation:   recommendationFor(score, risk),

		Details:       models.Details{Pair: &sigCopy},
		ExecutionPlan: plan,
		Symbols:       []string{sig.Asset1, sig.Asset2},
		Tags:          []string{"pairs", "mean-reversion"},
	}
}

func opportunityFromFunding(d models.FundingDetails, cfg config.CarryConfig) models.Opportunity {
	risk := riskLevelScore(d.RiskLevel)
	sharpe, sortino, riskAdj := ratioProxies(d.NetReturnPct, risk)
	confidence := models.ClampScore(100 - risk - 10)
	score := compositeScore(d.NetReturnPct, 90, risk, confidence)

	plan := []string{
		fmt.Sprintf("1. BUY %.2f USD of %s spot", cfg.PositionSizeUSD/2, d.Symbol),
		fmt.Sprintf("2. SHORT %.2f USD of %s perpetual", cfg.PositionSizeUSD/2, d.Symbol),
		fmt.Sprintf("3. Collect funding for %.1f days (%.2f%% APY)", d.HoldingPeriodDays, d.FundingAPY),
		"4. Unwind both legs together",
	}

	dCopy := d
	return models.Opportunity{
		ID:        uuid.NewString(),
		Strategy:  models.StrategyFundingRate,
		Timestamp: time.Now().UTC(),

		ExpectedReturnPct: d.NetReturnPct,
		ExpectedReturnUSD: decimal.NewFromFloat(cfg.PositionSizeUSD * d.NetReturnPct / 100),

		RiskScore:  risk,
		Confidence: confidence,

		SharpeRatio:        sharpe,
		SortinoRatio:       sortino,
		RiskAdjustedReturn: riskAdj,

		RequiredCapitalUSD: decimal.NewFromFloat(cfg.PositionSizeUSD),
		ExecutionTimeSec:   60,

		ComplexityScore: 40,
		LiquidityScore:  90,

		MaxPositionSizeUSD: decimal.NewFromFloat(cfg.MaxPositionSizeUSD),

		OpportunityScore: score,
		Priority:         priorityFor(score),
		Recommendation:   recommendationFor(score, risk),

		Details:       models.Details{Funding: &dCopy},
		ExecutionPlan: plan,
		Symbols:       []string{d.Symbol},
		Tags:          []string{"carry", "funding"},
	}
}

func opportunityFromBasis(d models.BasisDetails, cfg config.CarryConfig) models.Opportunity {
	risk := riskLevelScore(d.RiskLevel)
	sharpe, sortino, riskAdj := ratioProxies(d.NetReturnPct, risk)
	confidence := models.ClampScore(100 - risk - 15)
	score := compositeScore(d.NetReturnPct, 85, risk, confidence)

	var plan []string
	if d.Direction == models.DirectionLongSpotShortFutures {
		plan = []string{
			fmt.Sprintf("1. BUY %.2f USD of %s spot", cfg.PositionSizeUSD/2, d.Symbol),
			fmt.Sprintf("2. SHORT %.2f USD of %s perpetual", cfg.PositionSizeUSD/2, d.Symbol),
			fmt.Sprintf("3. Hold %.1f days while the basis converges", d.HoldingPeriodDays),
		}
	} else {
		plan = []string{
			fmt.Sprintf("1. LONG %.2f USD of %s perpetual below spot", cfg.PositionSizeUSD, d.Symbol),
			fmt.Sprintf("2. Hold %.1f days while the discount closes", d.HoldingPeriodDays),
		}
	}

	dCopy := d
	return models.Opportunity{
		ID:        uuid.NewString(),
		Strategy:  models.StrategyDeltaNeutral,
		Timestamp: time.Now().UTC(),

		ExpectedReturnPct: d.NetReturnPct,
		ExpectedReturnUSD: decimal.NewFromFloat(cfg.PositionSizeUSD * d.NetReturnPct / 100),

		RiskScore:  risk,
		Confidence: confidence,

		SharpeRatio:        sharpe,
		SortinoRatio:       sortino,
		RiskAdjustedReturn: riskAdj,

		RequiredCapitalUSD: decimal.NewFromFloat(cfg.PositionSizeUSD),
		ExecutionTimeSec:   60,

		ComplexityScore: 45,
		LiquidityScore:  85,

		MaxPositionSizeUSD: decimal.NewFromFloat(cfg.MaxPositionSizeUSD),

		OpportunityScore: score,
		Priority:         priorityFor(score),
		Recommendation:   recommendationFor(score, risk),

		Details:       models.Details{Basis: &dCopy},
		ExecutionPlan: plan,
		Symbols:       []string{d.Symbol},
		Tags:          []string{"carry", "delta-neutral"},
	}
}

// compositeScore blends return 50%, liquidity 25%, inverse risk 15% and
// confidence 10% into the ranking key. Returns are scaled so 5% saturates.
func compositeScore(retPct, liquidity, risk, confidence float64) float64 {
	retScore := models.ClampScore(retPct * 20)
	return models.ClampScore(0.50*retScore + 0.25*liquidity + 0.15*(100-risk) + 0.10*confidence)
}

// ratioProxies derives Sharpe/Sortino stand-ins from the risk score, which
// plays the role of a 0-10 volatility once rescaled.
func ratioProxies(retPct, riskScore float64) (sharpe, sortino, riskAdjusted float64) {
	vol := riskScore / 10
	if vol <= 0 {
		vol = 0.1
	}
	sharpe = retPct / vol
	sortino = sharpe * 1.25
	if riskScore <= 0 {
		riskScore = 1
	}
	riskAdjusted = retPct / riskScore
	return sharpe, sortino, riskAdjusted
}

func riskLevelScore(level string) float64 {
	switch level {
	case "LOW":
		return 20
	case "MEDIUM":
		return 45
	default:
		return 70
	}
}

func priorityFor(score float64) models.Priority {
	switch {
	case score >= 70:
		return models.PriorityHigh
	case score >= 40:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func recommendationFor(score, risk float64) models.Recommendation {
	switch {
	case score >= 60 && risk <= 50:
		return models.RecommendationBuy
	case score >= 40:
		return models.RecommendationHold
	default:
		return models.RecommendationAvoid
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
