package models

import "time"

// CarryDirection is how a basis/funding position is legged.
type CarryDirection string

const (
	// Contango: collect basis convergence plus funding.
	DirectionLongSpotShortFutures CarryDirection = "LONG_SPOT_SHORT_FUTURES"
	// Backwardation: futures trade under spot.
	DirectionLongFutures CarryDirection = "LONG_FUTURES"
)

// FundingDetails is the native result of the funding-rate analyzer.
type FundingDetails struct {
	Symbol    string  `json:"symbol"`
	SpotPrice float64 `json:"spot_price"`
	MarkPrice float64 `json:"mark_price"`

	// Basis is spot minus futures mark.
	Basis    float64 `json:"basis"`
	BasisPct float64 `json:"basis_pct"`

	FundingRate     float64   `json:"funding_rate"`
	FundingAPY      float64   `json:"funding_apy"`
	NextFundingTime time.Time `json:"next_funding_time"`

	Direction         CarryDirection `json:"direction"`
	HoldingPeriodDays float64        `json:"holding_period_days"`

	FundingReturnPct     float64 `json:"funding_return_pct"`
	ConvergenceReturnPct float64 `json:"convergence_return_pct"`
	FeesPct              float64 `json:"fees_pct"`
	NetReturnPct         float64 `json:"net_return_pct"`

	RiskLevel string `json:"risk_level"`
}

// BasisDetails is the native result of the delta-neutral basis analyzer.
// It carries the same snapshot shape as FundingDetails but is produced by a
// strategy that targets basis convergence first and funding second.
type BasisDetails struct {
	Symbol    string  `json:"symbol"`
	SpotPrice float64 `json:"spot_price"`
	MarkPrice float64 `json:"mark_price"`

	Basis    float64 `json:"basis"`
	BasisPct float64 `json:"basis_pct"`

	FundingRate float64 `json:"funding_rate"`
	FundingAPY  float64 `json:"funding_apy"`

	Direction         CarryDirection `json:"direction"`
	HoldingPeriodDays float64        `json:"holding_period_days"`

	ConvergenceReturnPct float64 `json:"convergence_return_pct"`
	FundingReturnPct     float64 `json:"funding_return_pct"`
	FeesPct              float64 `json:"fees_pct"`
	NetReturnPct         float64 `json:"net_return_pct"`

	RiskLevel string `json:"risk_level"`
}
