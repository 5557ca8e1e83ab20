package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Opportunity is the normalized output of all strategy scanners. Instances are
// immutable once produced; every bounded score is clamped to [0,100] by the
// producing adapter.
type Opportunity struct {
	ID        string    `json:"id"`
	Strategy  Strategy  `json:"strategy"`
	Timestamp time.Time `json:"timestamp"`

	ExpectedReturnPct float64         `json:"expected_return_pct"`
	ExpectedReturnUSD decimal.Decimal `json:"expected_return_usd"`

	// RiskScore is 0-100, lower is safer.
	RiskScore  float64 `json:"risk_score"`
	Confidence float64 `json:"confidence"`

	SharpeRatio        float64 `json:"sharpe_ratio"`
	SortinoRatio       float64 `json:"sortino_ratio"`
	RiskAdjustedReturn float64 `json:"risk_adjusted_return"`

	RequiredCapitalUSD decimal.Decimal `json:"required_capital_usd"`
	ExecutionTimeSec   float64         `json:"execution_time_estimate_s"`

	ComplexityScore float64 `json:"complexity_score"`
	LiquidityScore  float64 `json:"liquidity_score"`

	MaxPositionSizeUSD decimal.Decimal `json:"max_position_size_usd"`

	// OpportunityScore is the composite 0-100 ranking key, higher is better.
	OpportunityScore float64        `json:"opportunity_score"`
	Priority         Priority       `json:"priority"`
	Recommendation   Recommendation `json:"recommendation"`

	Details       Details  `json:"details"`
	ExecutionPlan []string `json:"execution_plan,omitempty"`
	Symbols       []string `json:"symbols"`
	Tags          []string `json:"tags,omitempty"`
}

// Details is the strategy-specific payload: exactly one variant is set,
// matching the Strategy tag of the owning opportunity.
type Details struct {
	Triangle *ArbitragePath  `json:"triangle,omitempty"`
	Pair     *PairSignal     `json:"statistical,omitempty"`
	Funding  *FundingDetails `json:"funding_rate,omitempty"`
	Basis    *BasisDetails   `json:"delta_neutral,omitempty"`
}

// Kind reports which variant is populated. It is the read-only view the
// ranker uses; callers that need strategy fields switch on the result.
func (d Details) Kind() (Strategy, bool) {
	switch {
	case d.Triangle != nil:
		return StrategyTriangle, true
	case d.Pair != nil:
		return StrategyStatistical, true
	case d.Funding != nil:
		return StrategyFundingRate, true
	case d.Basis != nil:
		return StrategyDeltaNeutral, true
	}
	return "", false
}

// ClampScore bounds a score to [0,100].
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
