package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationEntry assigns part of the capital to one opportunity.
type AllocationEntry struct {
	Strategy          Strategy        `json:"strategy"`
	OpportunityID     string          `json:"opportunity_id"`
	AllocatedCapital  decimal.Decimal `json:"allocated_capital_usd"`
	WeightPct         float64         `json:"weight_pct"`
	ExpectedReturnPct float64         `json:"expected_return"`
}

// PortfolioAllocation is the output of the naive optimizer. When Allocations
// is non-empty the weights sum to 100 (within floating tolerance).
type PortfolioAllocation struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message,omitempty"`
	TotalCapital decimal.Decimal `json:"total_capital_usd"`

	Allocations []AllocationEntry `json:"allocations"`

	PortfolioReturnPct   float64 `json:"portfolio_return_pct"`
	PortfolioRiskScore   float64 `json:"portfolio_risk_score"`
	SharpeProxy          float64 `json:"sharpe_proxy"`
	DiversificationScore float64 `json:"diversification_score"`

	GeneratedAt time.Time `json:"generated_at"`
}

// StrategyStats summarizes one strategy's opportunities in a comparison run.
type StrategyStats struct {
	Count             int             `json:"count"`
	AvgReturnPct      float64         `json:"avg_return_pct"`
	BestReturnPct     float64         `json:"best_return_pct"`
	AvgRiskScore      float64         `json:"avg_risk_score"`
	AvgConfidence     float64         `json:"avg_confidence"`
	AvgScore          float64         `json:"avg_score"`
	TotalCapitalUSD   decimal.Decimal `json:"total_capital_usd"`
	BestOpportunityID string          `json:"best_opportunity_id,omitempty"`
}

// PortfolioRiskMetrics is the portfolio-level risk assessment.
type PortfolioRiskMetrics struct {
	PortfolioVaR95         float64 `json:"portfolio_var_95"`
	PortfolioVaR99         float64 `json:"portfolio_var_99"`
	PortfolioVolatilityPct float64 `json:"portfolio_volatility_pct"`

	// ConcentrationRiskScore is a normalized Herfindahl index on position
	// weights: 0 perfectly diversified, 100 single position.
	ConcentrationRiskScore float64 `json:"concentration_risk_score"`
	DiversificationRatio   float64 `json:"diversification_ratio"`

	CorrelationMatrix map[Strategy]map[Strategy]float64 `json:"correlation_matrix"`

	RiskParityScore float64 `json:"risk_parity_score"`

	StressTestResults map[string]float64 `json:"stress_test_results"`
	WorstCaseScenario string             `json:"worst_case_scenario,omitempty"`
	WorstCaseLossPct  float64            `json:"worst_case_loss_pct"`
}

// ViolationSeverity grades a risk-limit breach.
type ViolationSeverity string

const (
	SeverityWarning  ViolationSeverity = "WARNING"
	SeverityCritical ViolationSeverity = "CRITICAL"
)

// RiskViolation is one breached limit in a compliance check.
type RiskViolation struct {
	Limit    string            `json:"limit"`
	Value    float64           `json:"value"`
	Max      float64           `json:"max"`
	Severity ViolationSeverity `json:"severity"`
	Message  string            `json:"message"`
}

// RiskReport is the result of checking metrics against configured limits.
type RiskReport struct {
	Compliant  bool            `json:"compliant"`
	Violations []RiskViolation `json:"violations"`
}
