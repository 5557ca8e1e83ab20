// Package risk computes portfolio-level variance, VaR, concentration and
// stress metrics over a selected opportunity set, and sizes positions with a
// half-Kelly/volatility-target rule.
package risk

import "arbscan/internal/models"

// CorrelationModel supplies pairwise strategy correlations. The static table
// below is swappable for an empirically estimated model without touching the
// variance math.
type CorrelationModel interface {
	Correlation(a, b models.Strategy) float64
}

// StaticCorrelationModel is a fixed pairwise estimate table with a default
// for unknown pairs. Same-strategy correlation is always 1.
type StaticCorrelationModel struct {
	pairs       map[string]float64
	defaultCorr float64
}

func NewStaticCorrelationModel(defaultCorr float64) *StaticCorrelationModel {
	m := &StaticCorrelationModel{
		pairs:       map[string]float64{},
		defaultCorr: defaultCorr,
	}
	// Both carry strategies ride the same basis, everything else is loosely
	// related at best.
	m.set(models.StrategyFundingRate, models.StrategyDeltaNeutral, 0.80)
	m.set(models.StrategyFundingRate, models.StrategyStatistical, 0.20)
	m.set(models.StrategyFundingRate, models.StrategyTriangle, 0.10)
	m.set(models.StrategyStatistical, models.StrategyDeltaNeutral, 0.25)
	m.set(models.StrategyStatistical, models.StrategyTriangle, 0.30)
	m.set(models.StrategyDeltaNeutral, models.StrategyTriangle, 0.15)
	return m
}

func (m *StaticCorrelationModel) set(a, b models.Strategy, corr float64) {
	m.pairs[pairKey(a, b)] = corr
}

func (m *StaticCorrelationModel) Correlation(a, b models.Strategy) float64 {
	if a == b {
		return 1
	}
	if corr, ok := m.pairs[pairKey(a, b)]; ok {
		return corr
	}
	return m.defaultCorr
}

func pairKey(a, b models.Strategy) string {
	if a > b {
		a, b = b, a
	}
	return string(a) + "|" + string(b)
}
