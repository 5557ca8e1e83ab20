package models

// PairSignal is the statistical-arbitrage analysis result for one asset pair.
type PairSignal struct {
	Asset1 string `json:"asset_1"`
	Asset2 string `json:"asset_2"`

	CurrentSpread float64 `json:"current_spread"`
	MeanSpread    float64 `json:"mean_spread"`
	StdSpread     float64 `json:"std_spread"`
	// ZScore is (current-mean)/std, 0 when the spread has no variance.
	ZScore float64 `json:"z_score"`

	Correlation         float64 `json:"correlation"`
	IsCointegrated      bool    `json:"is_cointegrated"`
	CointegrationPValue float64 `json:"cointegration_pvalue"`
	// HedgeRatio is the regression slope of asset_2 on asset_1.
	HedgeRatio float64 `json:"hedge_ratio"`

	SignalType SignalType `json:"signal_type"`
	Confidence float64    `json:"confidence"`

	SampleSize int `json:"sample_size"`
}
