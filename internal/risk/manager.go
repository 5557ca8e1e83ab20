package risk

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/internal/config"
	"arbscan/internal/models"
)

const (
	z95 = 1.645
	z99 = 2.326
)

// crashSensitivity scales the market-crash shock per strategy; hedged carry
// books lose far less than directional legs in a drawdown.
var crashSensitivity = map[models.Strategy]float64{
	models.StrategyFundingRate:  0.2,
	models.StrategyDeltaNeutral: 0.2,
	models.StrategyStatistical:  0.5,
	models.StrategyTriangle:     0.3,
}

// Manager evaluates portfolio risk and sizes positions. It holds no state
// between calls beyond its configuration and correlation model.
type Manager struct {
	cfg    config.RiskConfig
	corr   CorrelationModel
	logger *zap.Logger
}

func NewManager(cfg config.RiskConfig, corr CorrelationModel, logger *zap.Logger) *Manager {
	if corr == nil {
		corr = NewStaticCorrelationModel(cfg.DefaultCorrelation)
	}
	return &Manager{cfg: cfg, corr: corr, logger: logger}
}

func (m *Manager) volatility(s models.Strategy) float64 {
	if v, ok := m.cfg.BaseVolatility[string(s)]; ok && v > 0 {
		return v
	}
	return 10
}

// position is one weighted line of the assessed portfolio.
type position struct {
	opp    models.Opportunity
	weight float64
}

// AssessPortfolio computes variance, VaR, concentration, diversification,
// risk parity and stress metrics for the given opportunities and their
// allocated capital (USD keyed by opportunity id). Opportunities with no or
// non-positive allocation are ignored.
func (m *Manager) AssessPortfolio(opps []models.Opportunity, allocations map[string]float64) models.PortfolioRiskMetrics {
	var total float64
	for _, opp := range opps {
		if a := allocations[opp.ID]; a > 0 {
			total += a
		}
	}
	if total <= 0 {
		return models.PortfolioRiskMetrics{}
	}

	positions := make([]position, 0, len(opps))
	for _, opp := range opps {
		a := allocations[opp.ID]
		if a <= 0 {
			continue
		}
		positions = append(positions, position{opp: opp, weight: a / total})
	}

	// Quadratic form over per-strategy base volatilities.
	var portVariance, weightedRet, weightedVol float64
	for i := range positions {
		wi := positions[i].weight
		si := positions[i].opp.Strategy
		vi := m.volatility(si)
		weightedRet += wi * positions[i].opp.ExpectedReturnPct
		weightedVol += wi * vi
		for j := range positions {
			wj := positions[j].weight
			vj := m.volatility(positions[j].opp.Strategy)
			portVariance += wi * wj * vi * vj * m.corr.Correlation(si, positions[j].opp.Strategy)
		}
	}
	portVol := math.Sqrt(math.Max(portVariance, 0))

	metrics := models.PortfolioRiskMetrics{
		PortfolioVolatilityPct: portVol,
		PortfolioVaR95:         varLoss(weightedRet, portVol, z95),
		PortfolioVaR99:         varLoss(weightedRet, portVol, z99),
		ConcentrationRiskScore: concentrationScore(positions),
		RiskParityScore:        riskParityScore(positions, m, portVol),
		CorrelationMatrix:      m.matrix(positions),
	}

	if portVol > 0 {
		metrics.DiversificationRatio = weightedVol / portVol
	} else {
		metrics.DiversificationRatio = 1
	}

	metrics.StressTestResults = m.stressTests(positions)
	for name, loss := range metrics.StressTestResults {
		if loss > metrics.WorstCaseLossPct {
			metrics.WorstCaseLossPct = loss
			metrics.WorstCaseScenario = name
		}
	}
	return metrics
}

// varLoss is the parametric loss magnitude at the given z, floored at zero.
func varLoss(ret, vol, z float64) float64 {
	loss := z*vol - ret
	if loss < 0 {
		return 0
	}
	return loss
}

// concentrationScore is the Herfindahl index normalized to [0,100]: 0 means
// equal weights, 100 a single position.
func concentrationScore(positions []position) float64 {
	n := float64(len(positions))
	if n <= 1 {
		return 100
	}
	var hhi float64
	for _, p := range positions {
		hhi += p.weight * p.weight
	}
	return models.ClampScore((hhi - 1/n) / (1 - 1/n) * 100)
}

// riskParityScore penalizes dispersion of the per-position risk contribution
// via its coefficient of variation. 100 means perfectly balanced.
func riskParityScore(positions []position, m *Manager, portVol float64) float64 {
	if len(positions) <= 1 || portVol <= 0 {
		return 100
	}
	contribs := make([]float64, len(positions))
	var sum float64
	for i, p := range positions {
		contribs[i] = p.weight * m.volatility(p.opp.Strategy) / portVol
		sum += contribs[i]
	}
	avg := sum / float64(len(contribs))
	if avg <= 0 {
		return 100
	}
	var ss float64
	for _, c := range contribs {
		d := c - avg
		ss += d * d
	}
	cv := math.Sqrt(ss/float64(len(contribs))) / avg
	return models.ClampScore(100 - cv*100)
}

func (m *Manager) matrix(positions []position) map[models.Strategy]map[models.Strategy]float64 {
	present := map[models.Strategy]bool{}
	for _, p := range positions {
		present[p.opp.Strategy] = true
	}
	out := map[models.Strategy]map[models.Strategy]float64{}
	for a := range present {
		out[a] = map[models.Strategy]float64{}
		for b := range present {
			out[a][b] = m.corr.Correlation(a, b)
		}
	}
	return out
}

// stressTests applies fixed shock assumptions and reports portfolio loss per
// scenario in percent. The funding reversal hits only funding-type positions.
func (m *Manager) stressTests(positions []position) map[string]float64 {
	var crashLoss, fundingWeight float64
	for _, p := range positions {
		sens, ok := crashSensitivity[p.opp.Strategy]
		if !ok {
			sens = 0.5
		}
		crashLoss += p.weight * sens * m.cfg.CrashShockPct
		if p.opp.Strategy == models.StrategyFundingRate || p.opp.Strategy == models.StrategyDeltaNeutral {
			fundingWeight += p.weight
		}
	}
	return map[string]float64{
		"market_crash":     crashLoss,
		"liquidity_crisis": m.cfg.LiquidityShockPct,
		"funding_reversal": fundingWeight * m.cfg.FundingReversalShockPct,
	}
}

// PositionSize combines a half-Kelly fraction with a volatility-target
// scalar, then caps by the opportunity's own liquidity ceiling and the
// per-position share of capital.
func (m *Manager) PositionSize(opp models.Opportunity, availableCapital, currentVolPct float64) decimal.Decimal {
	if availableCapital <= 0 {
		return decimal.Zero
	}

	fraction := m.kellyFraction(opp)

	scalar := 1.0
	if currentVolPct > 0 && m.cfg.TargetVolatilityPct > 0 {
		scalar = m.cfg.TargetVolatilityPct / currentVolPct
		if scalar < 0.5 {
			scalar = 0.5
		}
		if scalar > 2.0 {
			scalar = 2.0
		}
	}

	size := availableCapital * fraction * scalar

	if limit := m.cfg.MaxCapitalFraction * availableCapital; m.cfg.MaxCapitalFraction > 0 && size > limit {
		size = limit
	}
	if ceiling, _ := opp.MaxPositionSizeUSD.Float64(); ceiling > 0 && size > ceiling {
		size = ceiling
	}
	return decimal.NewFromFloat(size)
}

// kellyFraction derives a half-Kelly capital fraction from the opportunity's
// confidence, expected return and risk score, clamped to the configured band.
func (m *Manager) kellyFraction(opp models.Opportunity) float64 {
	winProb := opp.Confidence / 100
	lossPct := opp.RiskScore / 10
	if lossPct <= 0 {
		lossPct = 1
	}
	payoff := opp.ExpectedReturnPct / lossPct
	if payoff <= 0 {
		payoff = 0.1
	}
	kelly := winProb - (1-winProb)/payoff
	half := kelly / 2

	floor, ceil := m.cfg.KellyFloor, m.cfg.KellyCap
	if floor <= 0 {
		floor = 0.05
	}
	if ceil <= 0 {
		ceil = 0.25
	}
	if half < floor {
		return floor
	}
	if half > ceil {
		return ceil
	}
	return half
}

// StrategyWeights aggregates allocation weight per strategy in percent.
func StrategyWeights(opps []models.Opportunity, allocations map[string]float64) map[models.Strategy]float64 {
	var total float64
	for _, opp := range opps {
		if a := allocations[opp.ID]; a > 0 {
			total += a
		}
	}
	if total <= 0 {
		return nil
	}
	out := map[models.Strategy]float64{}
	for _, opp := range opps {
		if a := allocations[opp.ID]; a > 0 {
			out[opp.Strategy] += a / total * 100
		}
	}
	return out
}

// CheckLimits compares computed metrics and per-strategy weights against the
// configured limits. A nil weights map skips the allocation check.
func (m *Manager) CheckLimits(metrics models.PortfolioRiskMetrics, strategyWeightsPct map[models.Strategy]float64) models.RiskReport {
	var violations []models.RiskViolation

	if m.cfg.MaxPortfolioVaRPct > 0 && metrics.PortfolioVaR95 > m.cfg.MaxPortfolioVaRPct {
		violations = append(violations, models.RiskViolation{
			Limit:    "max_portfolio_var",
			Value:    metrics.PortfolioVaR95,
			Max:      m.cfg.MaxPortfolioVaRPct,
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("portfolio VaR95 %.2f%% exceeds limit %.2f%%", metrics.PortfolioVaR95, m.cfg.MaxPortfolioVaRPct),
		})
	}
	for strat, weight := range strategyWeightsPct {
		if m.cfg.MaxStrategyAllocPct > 0 && weight > m.cfg.MaxStrategyAllocPct {
			violations = append(violations, models.RiskViolation{
				Limit:    "max_strategy_allocation",
				Value:    weight,
				Max:      m.cfg.MaxStrategyAllocPct,
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("strategy %s holds %.2f%% of capital, limit %.2f%%", strat, weight, m.cfg.MaxStrategyAllocPct),
			})
		}
	}
	if m.cfg.MinDiversificationRatio > 0 && metrics.DiversificationRatio > 0 &&
		metrics.DiversificationRatio < m.cfg.MinDiversificationRatio {
		violations = append(violations, models.RiskViolation{
			Limit:    "min_diversification_ratio",
			Value:    metrics.DiversificationRatio,
			Max:      m.cfg.MinDiversificationRatio,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("diversification ratio %.3f below minimum %.3f", metrics.DiversificationRatio, m.cfg.MinDiversificationRatio),
		})
	}
	if m.cfg.MaxConcentrationScore > 0 && metrics.ConcentrationRiskScore > m.cfg.MaxConcentrationScore {
		severity := models.SeverityWarning
		if metrics.ConcentrationRiskScore > 90 {
			severity = models.SeverityCritical
		}
		violations = append(violations, models.RiskViolation{
			Limit:    "max_concentration",
			Value:    metrics.ConcentrationRiskScore,
			Max:      m.cfg.MaxConcentrationScore,
			Severity: severity,
			Message:  fmt.Sprintf("concentration score %.2f exceeds limit %.2f", metrics.ConcentrationRiskScore, m.cfg.MaxConcentrationScore),
		})
	}

	return models.RiskReport{Compliant: len(violations) == 0, Violations: violations}
}
