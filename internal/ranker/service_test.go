package ranker

import (
	"context"
	"math"
	"testing"

	"arbscan/internal/config"
	"arbscan/internal/market"
	"arbscan/internal/models"
	"arbscan/internal/strategy"
)

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

func testConfig() config.Config {
	return config.Config{
		Triangle: config.TriangleConfig{
			Fiats:         []string{"USD"},
			Assets:        []string{"USDT", "BTC"},
			SpotSymbols:   []string{"BTCUSDT"},
			StartCurrency: "USD",
			MaxSteps:      4,
			MinROIPct:     1.0,
			MaxROIPct:     10.0,
			AmountUSD:     1000,
		},
		Statistical: config.StatisticalConfig{
			Pairs:              []string{"AAAUSDT/BBBUSDT"},
			LookbackDays:       40,
			MinSamples:         20,
			MinCorrelation:     0.7,
			MaxCointPValue:     0.05,
			EntryZScore:        2.0,
			PositionSizeUSD:    1000,
			MaxPositionSizeUSD: 10000,
		},
		Carry: config.CarryConfig{
			Symbols:               []string{"ETHUSDT"},
			MinBasisPct:           0.1,
			MaxBasisPct:           5.0,
			FundingPeriodsPerDay:  3,
			HoldingPeriodDays:     7,
			ConvergenceAssumption: 0.5,
			SpotFeePct:            0.1,
			FuturesFeePct:         0.04,
			PositionSizeUSD:       1000,
			MaxPositionSizeUSD:    25000,
		},
		Scan: config.ScanConfig{
			MinReturnPct: 0.1,
			MaxRiskScore: 100,
			CapitalUSD:   10000,
			MaxPositions: 5,
		},
		Risk: config.RiskConfig{DefaultCorrelation: 0.3},
	}
}

// fullStubData feeds every scanner at least one opportunity.
func fullStubData() *stubData {
	n := 40
	p1 := make([]float64, n)
	p2 := make([]float64, n)
	for i := 0; i < n; i++ {
		p1[i] = 100 + float64(i%5)*2
		spread := 1.0
		if i%2 == 1 {
			spread = -1.0
		}
		if i == n-1 {
			spread = -5.0
		}
		p2[i] = 1.5*p1[i] + spread
	}
	return &stubData{
		spot: map[string]float64{
			"BTCUSDT": 500,
			"ETHUSDT": 100,
		},
		funding: map[string]market.Funding{
			"ETHUSDT": {Rate: 0.0001, MarkPrice: 101},
		},
		p2p: map[string]float64{
			"USDT:USD:BUY": 1.0,
			"BTC:USD:SELL": 525,
		},
		history: map[string][]float64{"AAAUSDT": p1, "BBBUSDT": p2},
	}
}

func newTestService(cfg config.Config, data market.Data) *Service {
	return NewService(cfg,
		strategy.NewTriangleScanner(cfg.Triangle, data, nil),
		strategy.NewStatScanner(cfg.Statistical, data, nil),
		strategy.NewFundingScanner(cfg.Carry, data, nil),
		strategy.NewBasisScanner(cfg.Carry, data, nil),
		nil,
	)
}

func TestScanProducesAllStrategies(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, fullStubData())

	opps := svc.Scan(context.Background(), svc.DefaultFilter())
	seen := map[models.Strategy]bool{}
	for _, opp := range opps {
		seen[opp.Strategy] = true
		kind, ok := opp.Details.Kind()
		if !ok || kind != opp.Strategy {
			t.Fatalf("details variant %v does not match strategy %v", kind, opp.Strategy)
		}
	}
	for _, strat := range models.AllStrategies {
		if !seen[strat] {
			t.Fatalf("strategy %v missing from scan", strat)
		}
	}
}

func TestScanScoresBoundedAndSorted(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, fullStubData())

	opps := svc.Scan(context.Background(), svc.DefaultFilter())
	if len(opps) == 0 {
		t.Fatalf("expected opportunities")
	}
	for i, opp := range opps {
		for name, v := range map[string]float64{
			"opportunity_score": opp.OpportunityScore,
			"risk_score":        opp.RiskScore,
			"confidence":        opp.Confidence,
			"liquidity_score":   opp.LiquidityScore,
			"complexity_score":  opp.ComplexityScore,
		} {
			if v < 0 || v > 100 {
				t.Fatalf("%s = %v out of [0,100]", name, v)
			}
		}
		if i > 0 && opps[i-1].OpportunityScore < opp.OpportunityScore {
			t.Fatalf("scan not sorted descending at %d", i)
		}
		if len(opp.Symbols) == 0 {
			t.Fatalf("opportunity %s has no symbols", opp.ID)
		}
	}
}

func TestScanDeterministicOrder(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, fullStubData())

	first := svc.Scan(context.Background(), svc.DefaultFilter())
	second := svc.Scan(context.Background(), svc.DefaultFilter())
	if len(first) != len(second) {
		t.Fatalf("scan sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Strategy != second[i].Strategy || first[i].OpportunityScore != second[i].OpportunityScore {
			t.Fatalf("order diverged at %d: %v/%v vs %v/%v",
				i, first[i].Strategy, first[i].OpportunityScore, second[i].Strategy, second[i].OpportunityScore)
		}
	}
}

func TestScanSurvivesScannerFailure(t *testing.T) {
	cfg := testConfig()
	data := fullStubData()
	data.panicOnSpot = true
	svc := newTestService(cfg, data)

	// Spot-dependent scanners blow up; the statistical scanner only needs
	// history and must still deliver.
	opps := svc.Scan(context.Background(), svc.DefaultFilter())
	if len(opps) == 0 {
		t.Fatalf("expected surviving opportunities")
	}
	for _, opp := range opps {
		if opp.Strategy != models.StrategyStatistical {
			t.Fatalf("unexpected strategy %v from a dead feed", opp.Strategy)
		}
	}
}

func TestOptimizePortfolioWeightsSum(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, fullStubData())

	alloc := svc.OptimizePortfolio(context.Background(), 10000, 5, 0.1)
	if !alloc.Success {
		t.Fatalf("expected a successful allocation: %s", alloc.Message)
	}
	if len(alloc.Allocations) == 0 {
		t.Fatalf("expected allocations")
	}
	var sum float64
	var capitalSum float64
	for _, entry := range alloc.Allocations {
		sum += entry.WeightPct
		v, _ := entry.AllocatedCapital.Float64()
		capitalSum += v
	}
	if math.Abs(sum-100) > 1e-6 {
		t.Fatalf("weights sum to %v, want 100", sum)
	}
	if math.Abs(capitalSum-10000) > 1e-3 {
		t.Fatalf("capital sums to %v, want 10000", capitalSum)
	}
	if alloc.DiversificationScore <= 0 || alloc.DiversificationScore > 100 {
		t.Fatalf("diversification score %v out of range", alloc.DiversificationScore)
	}
}

func TestOptimizePortfolioEmpty(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, &stubData{})

	alloc := svc.OptimizePortfolio(context.Background(), 10000, 5, 0.1)
	if alloc.Success {
		t.Fatalf("expected failure with no opportunities")
	}
	if alloc.Message != "NO OPPORTUNITIES FOUND" {
		t.Fatalf("message = %q", alloc.Message)
	}
	if len(alloc.Allocations) != 0 {
		t.Fatalf("expected no allocations")
	}
}

func TestBestRankingMethods(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, fullStubData())
	filter := svc.DefaultFilter()

	byScore := svc.Best(context.Background(), "score", filter)
	byReturn := svc.Best(context.Background(), "return", filter)
	byRiskAdj := svc.Best(context.Background(), "risk_adjusted", filter)
	if byScore == nil || byReturn == nil || byRiskAdj == nil {
		t.Fatalf("expected a best opportunity for every method")
	}

	all := svc.Scan(context.Background(), filter)
	for _, opp := range all {
		if opp.ExpectedReturnPct > byReturn.ExpectedReturnPct {
			t.Fatalf("best-by-return missed %v > %v", opp.ExpectedReturnPct, byReturn.ExpectedReturnPct)
		}
		if opp.RiskAdjustedReturn > byRiskAdj.RiskAdjustedReturn {
			t.Fatalf("best-by-risk-adjusted missed %v > %v", opp.RiskAdjustedReturn, byRiskAdj.RiskAdjustedReturn)
		}
	}
}

func TestBestEmptyScan(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, &stubData{})
	if best := svc.Best(context.Background(), "score", svc.DefaultFilter()); best != nil {
		t.Fatalf("expected nil best on an empty scan, got %+v", best)
	}
}

func TestCompareStrategiesAggregates(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, fullStubData())

	stats := svc.CompareStrategies(context.Background(), 10000)
	if len(stats) == 0 {
		t.Fatalf("expected per-strategy stats")
	}
	for strat, s := range stats {
		if s.Count <= 0 {
			t.Fatalf("strategy %v has zero count", strat)
		}
		if s.BestReturnPct < s.AvgReturnPct-1e-9 && s.Count == 1 {
			t.Fatalf("strategy %v best below average", strat)
		}
		if s.BestOpportunityID == "" {
			t.Fatalf("strategy %v missing best id", strat)
		}
	}
}

func TestScanFilterThresholds(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(cfg, fullStubData())

	strict := svc.Scan(context.Background(), Filter{MinReturnPct: 1000, MaxRiskScore: 100, CapitalUSD: 10000})
	if len(strict) != 0 {
		t.Fatalf("impossible return floor should filter everything, got %d", len(strict))
	}
	poor := svc.Scan(context.Background(), Filter{MinReturnPct: 0.1, MaxRiskScore: 100, CapitalUSD: 1})
	if len(poor) != 0 {
		t.Fatalf("capital below every requirement should filter everything, got %d", len(poor))
	}
}
