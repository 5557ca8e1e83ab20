// Package ranker fans out the strategy scanners, normalizes their native
// results into opportunities and exposes the ranking, comparison and naive
// allocation operations.
package ranker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/internal/config"
	"arbscan/internal/models"
	"arbscan/internal/strategy"
)

// Filter holds the caller-supplied scan thresholds.
type Filter struct {
	MinReturnPct float64
	MaxRiskScore float64
	CapitalUSD   float64
}

// Service orchestrates the four scanners. Scanners are injected once at
// construction; every Scan call is independent and side-effect free.
type Service struct {
	cfg config.Config

	triangle *strategy.TriangleScanner
	pairs    *strategy.StatScanner
	funding  *strategy.FundingScanner
	basis    *strategy.BasisScanner

	logger *zap.Logger
}

func NewService(cfg config.Config, triangle *strategy.TriangleScanner, pairs *strategy.StatScanner,
	funding *strategy.FundingScanner, basis *strategy.BasisScanner, logger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		triangle: triangle,
		pairs:    pairs,
		funding:  funding,
		basis:    basis,
		logger:   logger,
	}
}

// DefaultFilter is the configured scan filter, used when the caller supplies
// no thresholds.
func (s *Service) DefaultFilter() Filter {
	return Filter{
		MinReturnPct: s.cfg.Scan.MinReturnPct,
		MaxRiskScore: s.cfg.Scan.MaxRiskScore,
		CapitalUSD:   s.cfg.Scan.CapitalUSD,
	}
}

// Scan runs every scanner concurrently, converts native results into the
// unified schema, filters by the caller's thresholds and sorts descending by
// opportunity score. A panicking scanner contributes zero opportunities.
func (s *Service) Scan(ctx context.Context, filter Filter) []models.Opportunity {
	if s.cfg.Scan.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Scan.Timeout)
		defer cancel()
	}

	// Fixed slot order keeps ranking ties deterministic regardless of
	// scanner completion order.
	slots := make([][]models.Opportunity, 4)

	var wg sync.WaitGroup
	run := func(slot int, name string, scan func() []models.Opportunity) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil && s.logger != nil {
					s.logger.Error("scanner failed", zap.String("scanner", name), zap.Any("panic", r))
				}
			}()
			slots[slot] = scan()
		}()
	}

	run(0, "triangle", func() []models.Opportunity {
		out := make([]models.Opportunity, 0)
		for _, p := range s.triangle.Scan(ctx) {
			out = append(out, opportunityFromPath(p, s.cfg.Triangle))
		}
		return out
	})
	run(1, "statistical", func() []models.Opportunity {
		out := make([]models.Opportunity, 0)
		for _, sig := range s.pairs.Scan(ctx) {
			out = append(out, opportunityFromPair(sig, s.cfg.Statistical))
		}
		return out
	})
	run(2, "funding", func() []models.Opportunity {
		out := make([]models.Opportunity, 0)
		for _, d := range s.funding.Scan(ctx) {
			out = append(out, opportunityFromFunding(d, s.cfg.Carry))
		}
		return out
	})
	run(3, "basis", func() []models.Opportunity {
		out := make([]models.Opportunity, 0)
		for _, d := range s.basis.Scan(ctx) {
			out = append(out, opportunityFromBasis(d, s.cfg.Carry))
		}
		return out
	})
	wg.Wait()

	var all []models.Opportunity
	for _, slot := range slots {
		all = append(all, slot...)
	}

	filtered := all[:0]
	capital := decimal.NewFromFloat(filter.CapitalUSD)
	for _, opp := range all {
		if opp.ExpectedReturnPct < filter.MinReturnPct {
			continue
		}
		if filter.MaxRiskScore > 0 && opp.RiskScore > filter.MaxRiskScore {
			continue
		}
		if filter.CapitalUSD > 0 && opp.RequiredCapitalUSD.GreaterThan(capital) {
			continue
		}
		filtered = append(filtered, opp)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].OpportunityScore > filtered[j].OpportunityScore
	})
	return filtered
}

// Best returns the top opportunity under the chosen ranking method: "return",
// "risk_adjusted" or the default composite score. Nil when the scan is empty.
func (s *Service) Best(ctx context.Context, method string, filter Filter) *models.Opportunity {
	opps := s.Scan(ctx, filter)
	if len(opps) == 0 {
		return nil
	}
	key := func(o models.Opportunity) float64 { return o.OpportunityScore }
	switch method {
	case "return":
		key = func(o models.Opportunity) float64 { return o.ExpectedReturnPct }
	case "risk_adjusted":
		key = func(o models.Opportunity) float64 { return o.RiskAdjustedReturn }
	}
	best := opps[0]
	for _, o := range opps[1:] {
		if key(o) > key(best) {
			best = o
		}
	}
	return &best
}

// OptimizePortfolio picks the top maxPositions opportunities and allocates
// capital proportionally to score*(100-risk). Weights always sum to 100 when
// any allocation is made.
func (s *Service) OptimizePortfolio(ctx context.Context, capital float64, maxPositions int, minReturnPct float64) models.PortfolioAllocation {
	if maxPositions <= 0 {
		maxPositions = s.cfg.Scan.MaxPositions
	}
	if capital <= 0 {
		capital = s.cfg.Scan.CapitalUSD
	}

	opps := s.Scan(ctx, Filter{
		MinReturnPct: minReturnPct,
		MaxRiskScore: s.cfg.Scan.MaxRiskScore,
		CapitalUSD:   capital,
	})
	if len(opps) > maxPositions {
		opps = opps[:maxPositions]
	}

	alloc := models.PortfolioAllocation{
		TotalCapital: decimal.NewFromFloat(capital),
		GeneratedAt:  time.Now().UTC(),
	}
	if len(opps) == 0 {
		alloc.Message = "NO OPPORTUNITIES FOUND"
		return alloc
	}

	weights := make([]float64, len(opps))
	var weightSum float64
	for i, opp := range opps {
		weights[i] = opp.OpportunityScore * (100 - opp.RiskScore)
		weightSum += weights[i]
	}
	if weightSum <= 0 {
		// Degenerate scores collapse to equal weighting.
		for i := range weights {
			weights[i] = 1
		}
		weightSum = float64(len(weights))
	}

	var retPct, riskScore float64
	used := map[models.Strategy]bool{}
	for i, opp := range opps {
		w := weights[i] / weightSum
		alloc.Allocations = append(alloc.Allocations, models.AllocationEntry{
			Strategy:          opp.Strategy,
			OpportunityID:     opp.ID,
			AllocatedCapital:  decimal.NewFromFloat(capital * w),
			WeightPct:         w * 100,
			ExpectedReturnPct: opp.ExpectedReturnPct,
		})
		retPct += w * opp.ExpectedReturnPct
		riskScore += w * opp.RiskScore
		used[opp.Strategy] = true
	}

	alloc.Success = true
	alloc.PortfolioReturnPct = retPct
	alloc.PortfolioRiskScore = riskScore
	if riskScore > 0 {
		alloc.SharpeProxy = retPct / riskScore
	}
	alloc.DiversificationScore = float64(len(used)) / float64(len(models.AllStrategies)) * 100
	return alloc
}

// CompareStrategies groups a scan by strategy and reports aggregates.
func (s *Service) CompareStrategies(ctx context.Context, capital float64) map[models.Strategy]models.StrategyStats {
	filter := s.DefaultFilter()
	if capital > 0 {
		filter.CapitalUSD = capital
	}
	opps := s.Scan(ctx, filter)

	out := map[models.Strategy]models.StrategyStats{}
	for _, opp := range opps {
		stats := out[opp.Strategy]
		stats.Count++
		stats.AvgReturnPct += opp.ExpectedReturnPct
		stats.AvgRiskScore += opp.RiskScore
		stats.AvgConfidence += opp.Confidence
		stats.AvgScore += opp.OpportunityScore
		stats.TotalCapitalUSD = stats.TotalCapitalUSD.Add(opp.RequiredCapitalUSD)
		if opp.ExpectedReturnPct > stats.BestReturnPct {
			stats.BestReturnPct = opp.ExpectedReturnPct
			stats.BestOpportunityID = opp.ID
		}
		out[opp.Strategy] = stats
	}
	for strat, stats := range out {
		n := float64(stats.Count)
		stats.AvgReturnPct /= n
		stats.AvgRiskScore /= n
		stats.AvgConfidence /= n
		stats.AvgScore /= n
		out[strat] = stats
	}
	return out
}

// FindPaths exposes the cycle finder directly for the triangle endpoint.
func (s *Service) FindPaths(ctx context.Context, start string, minROI float64, maxSteps int, amount float64) []models.ArbitragePath {
	if start == "" {
		start = s.cfg.Triangle.StartCurrency
	}
	if maxSteps <= 0 {
		maxSteps = s.cfg.Triangle.MaxSteps
	}
	if amount <= 0 {
		amount = s.cfg.Triangle.AmountUSD
	}
	return s.triangle.FindPaths(ctx, start, minROI, maxSteps, amount)
}

// AnalyzePair exposes the pair analyzer directly for the pairs endpoint.
func (s *Service) AnalyzePair(ctx context.Context, sym1, sym2 string, lookbackDays int) *models.PairSignal {
	return s.pairs.AnalyzePair(ctx, sym1, sym2, lookbackDays)
}
