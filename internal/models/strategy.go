package models

// Strategy tags an opportunity with the scanner that produced it.
type Strategy string

const (
	StrategyFundingRate  Strategy = "FUNDING_RATE"
	StrategyStatistical  Strategy = "STATISTICAL"
	StrategyDeltaNeutral Strategy = "DELTA_NEUTRAL"
	StrategyTriangle     Strategy = "TRIANGLE"
)

// AllStrategies is the full strategy universe, used by the diversification score
// (distinct strategies used / total strategy types).
var AllStrategies = []Strategy{
	StrategyFundingRate,
	StrategyStatistical,
	StrategyDeltaNeutral,
	StrategyTriangle,
}

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

type Recommendation string

const (
	RecommendationBuy   Recommendation = "BUY"
	RecommendationHold  Recommendation = "HOLD"
	RecommendationAvoid Recommendation = "AVOID"
)

// SignalType is the statistical pair entry signal.
type SignalType string

const (
	SignalLongSpread  SignalType = "LONG_SPREAD"
	SignalShortSpread SignalType = "SHORT_SPREAD"
	SignalNeutral     SignalType = "NEUTRAL"
)
