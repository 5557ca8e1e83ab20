package risk

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"arbscan/internal/config"
	"arbscan/internal/models"
)

func riskTestConfig() config.RiskConfig {
	return config.RiskConfig{
		BaseVolatility: map[string]float64{
			"FUNDING_RATE":  5.0,
			"STATISTICAL":   12.0,
			"DELTA_NEUTRAL": 8.0,
			"TRIANGLE":      15.0,
		},
		DefaultCorrelation:      0.3,
		TargetVolatilityPct:     10.0,
		KellyFloor:              0.05,
		KellyCap:                0.25,
		MaxCapitalFraction:      0.4,
		MaxPortfolioVaRPct:      15.0,
		MaxStrategyAllocPct:     60.0,
		MinDiversificationRatio: 1.05,
		MaxConcentrationScore:   80.0,
		CrashShockPct:           20.0,
		LiquidityShockPct:       5.0,
		FundingReversalShockPct: 10.0,
	}
}

func testOpportunity(id string, strat models.Strategy, retPct, risk, confidence float64) models.Opportunity {
	return models.Opportunity{
		ID:                 id,
		Strategy:           strat,
		ExpectedReturnPct:  retPct,
		RiskScore:          risk,
		Confidence:         confidence,
		MaxPositionSizeUSD: decimal.NewFromInt(100000),
	}
}

func TestDiversificationRatioMixedStrategies(t *testing.T) {
	m := NewManager(riskTestConfig(), nil, nil)
	opps := []models.Opportunity{
		testOpportunity("a", models.StrategyTriangle, 2, 30, 70),
		testOpportunity("b", models.StrategyFundingRate, 1, 20, 80),
	}
	metrics := m.AssessPortfolio(opps, map[string]float64{"a": 5000, "b": 5000})
	if metrics.DiversificationRatio <= 1 {
		t.Fatalf("diversification ratio = %v, want > 1 with correlation < 1", metrics.DiversificationRatio)
	}
	if metrics.PortfolioVolatilityPct <= 0 {
		t.Fatalf("expected positive portfolio volatility")
	}
}

func TestDiversificationRatioSingleStrategy(t *testing.T) {
	m := NewManager(riskTestConfig(), nil, nil)
	opps := []models.Opportunity{
		testOpportunity("a", models.StrategyTriangle, 2, 30, 70),
		testOpportunity("b", models.StrategyTriangle, 1, 30, 70),
	}
	metrics := m.AssessPortfolio(opps, map[string]float64{"a": 5000, "b": 5000})
	if math.Abs(metrics.DiversificationRatio-1) > 1e-9 {
		t.Fatalf("same-strategy book diversification ratio = %v, want 1", metrics.DiversificationRatio)
	}
}

func TestConcentrationScoreExtremes(t *testing.T) {
	m := NewManager(riskTestConfig(), nil, nil)

	single := m.AssessPortfolio(
		[]models.Opportunity{testOpportunity("a", models.StrategyTriangle, 2, 30, 70)},
		map[string]float64{"a": 10000},
	)
	if single.ConcentrationRiskScore != 100 {
		t.Fatalf("single position concentration = %v, want 100", single.ConcentrationRiskScore)
	}

	equal := m.AssessPortfolio(
		[]models.Opportunity{
			testOpportunity("a", models.StrategyTriangle, 2, 30, 70),
			testOpportunity("b", models.StrategyFundingRate, 1, 20, 80),
			testOpportunity("c", models.StrategyStatistical, 1.5, 40, 60),
			testOpportunity("d", models.StrategyDeltaNeutral, 1, 25, 75),
		},
		map[string]float64{"a": 2500, "b": 2500, "c": 2500, "d": 2500},
	)
	if equal.ConcentrationRiskScore > 1e-9 {
		t.Fatalf("equal weights concentration = %v, want 0", equal.ConcentrationRiskScore)
	}
}

func TestStressTestsFundingReversalScope(t *testing.T) {
	m := NewManager(riskTestConfig(), nil, nil)
	opps := []models.Opportunity{
		testOpportunity("a", models.StrategyTriangle, 2, 30, 70),
		testOpportunity("b", models.StrategyFundingRate, 1, 20, 80),
	}
	metrics := m.AssessPortfolio(opps, map[string]float64{"a": 5000, "b": 5000})

	reversal, ok := metrics.StressTestResults["funding_reversal"]
	if !ok {
		t.Fatalf("funding reversal scenario missing")
	}
	// Only half the book is funding-type.
	if math.Abs(reversal-5.0) > 1e-9 {
		t.Fatalf("funding reversal loss = %v, want 5.0", reversal)
	}
	if metrics.WorstCaseScenario == "" {
		t.Fatalf("worst case scenario not reported")
	}
	if metrics.WorstCaseLossPct < reversal {
		t.Fatalf("worst case %v below a known scenario %v", metrics.WorstCaseLossPct, reversal)
	}
}

func TestAssessPortfolioEmpty(t *testing.T) {
	m := NewManager(riskTestConfig(), nil, nil)
	metrics := m.AssessPortfolio(nil, nil)
	if metrics.PortfolioVolatilityPct != 0 || metrics.PortfolioVaR95 != 0 {
		t.Fatalf("empty portfolio should have zero metrics, got %+v", metrics)
	}
}

func TestKellyFractionClamped(t *testing.T) {
	m := NewManager(riskTestConfig(), nil, nil)

	aggressive := testOpportunity("a", models.StrategyTriangle, 500, 10, 99)
	if got := m.kellyFraction(aggressive); got != 0.25 {
		t.Fatalf("aggressive kelly = %v, want the 0.25 cap", got)
	}

	hopeless := testOpportunity("b", models.StrategyTriangle, 0.1, 90, 5)
	if got := m.kellyFraction(hopeless); got != 0.05 {
		t.Fatalf("hopeless kelly = %v, want the 0.05 floor", got)
	}
}

func TestPositionSizeCaps(t *testing.T) {
	m := NewManager(riskTestConfig(), nil, nil)

	opp := testOpportunity("a", models.StrategyTriangle, 500, 10, 99)
	size, _ := m.PositionSize(opp, 10000, 10).Float64()
	// Kelly cap 0.25 at a neutral vol scalar.
	if math.Abs(size-2500) > 1e-6 {
		t.Fatalf("size = %v, want 2500", size)
	}

	// Liquidity ceiling wins when tighter.
	opp.MaxPositionSizeUSD = decimal.NewFromInt(1000)
	size, _ = m.PositionSize(opp, 10000, 10).Float64()
	if math.Abs(size-1000) > 1e-6 {
		t.Fatalf("size = %v, want the 1000 liquidity ceiling", size)
	}

	// Low current volatility scales up, bounded by 2x and the capital cap.
	opp.MaxPositionSizeUSD = decimal.NewFromInt(100000)
	size, _ = m.PositionSize(opp, 10000, 1).Float64()
	if math.Abs(size-4000) > 1e-6 {
		t.Fatalf("size = %v, want the 40%% capital cap", size)
	}

	if got := m.PositionSize(opp, 0, 10); !got.IsZero() {
		t.Fatalf("zero capital should size zero, got %v", got)
	}
}

func TestCheckLimitsViolations(t *testing.T) {
	m := NewManager(riskTestConfig(), nil, nil)

	clean := models.PortfolioRiskMetrics{
		PortfolioVaR95:         10,
		DiversificationRatio:   1.2,
		ConcentrationRiskScore: 30,
	}
	report := m.CheckLimits(clean, map[models.Strategy]float64{models.StrategyTriangle: 50})
	if !report.Compliant || len(report.Violations) != 0 {
		t.Fatalf("expected compliance, got %+v", report.Violations)
	}

	dirty := models.PortfolioRiskMetrics{
		PortfolioVaR95:         20,
		DiversificationRatio:   1.0,
		ConcentrationRiskScore: 95,
	}
	report = m.CheckLimits(dirty, map[models.Strategy]float64{models.StrategyFundingRate: 80})
	if report.Compliant {
		t.Fatalf("expected violations")
	}
	if len(report.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %d", len(report.Violations))
	}
	var criticals int
	for _, v := range report.Violations {
		if v.Severity == models.SeverityCritical {
			criticals++
		}
	}
	if criticals != 2 {
		t.Fatalf("expected VaR and concentration criticals, got %d", criticals)
	}
}

func TestStaticCorrelationModel(t *testing.T) {
	m := NewStaticCorrelationModel(0.3)
	if got := m.Correlation(models.StrategyTriangle, models.StrategyTriangle); got != 1 {
		t.Fatalf("self correlation = %v, want 1", got)
	}
	ab := m.Correlation(models.StrategyFundingRate, models.StrategyDeltaNeutral)
	ba := m.Correlation(models.StrategyDeltaNeutral, models.StrategyFundingRate)
	if ab != ba {
		t.Fatalf("correlation not symmetric: %v vs %v", ab, ba)
	}
	if ab != 0.80 {
		t.Fatalf("carry pair correlation = %v, want 0.80", ab)
	}
	if got := m.Correlation("X", "Y"); got != 0.3 {
		t.Fatalf("unknown pair correlation = %v, want the default", got)
	}
}

func TestVarLossFloor(t *testing.T) {
	if got := varLoss(100, 1, z95); got != 0 {
		t.Fatalf("large return should floor VaR at 0, got %v", got)
	}
	got := varLoss(1, 10, z95)
	if math.Abs(got-(z95*10-1)) > 1e-9 {
		t.Fatalf("varLoss = %v, want %v", got, z95*10-1)
	}
}
