package models

import "github.com/shopspring/decimal"

// TradeSide is the direction of one hop in a conversion cycle.
type TradeSide string

const (
	TradeBuy  TradeSide = "BUY"
	TradeSell TradeSide = "SELL"
)

// TradeStep is one priced hop of an arbitrage cycle.
type TradeStep struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Side   TradeSide `json:"side"`
	Price  float64   `json:"price"`
	Input  float64   `json:"input_amount"`
	Output float64   `json:"output_amount"`
}

// ArbitragePath is a closed conversion walk: Path[0] == Path[len-1],
// at least three nodes, no intermediate repeats. Created per scan,
// never persisted as-is.
type ArbitragePath struct {
	Path  []string    `json:"path"`
	Steps []TradeStep `json:"steps"`

	ROIPercentage    float64         `json:"roi_percentage"`
	ProfitAmount     decimal.Decimal `json:"profit_amount"`
	LiquidityScore   float64         `json:"liquidity_score"`
	RiskScore        float64         `json:"risk_score"`
	OpportunityScore float64         `json:"opportunity_score"`
}

// IsClosed reports whether the path forms a valid cycle shape.
func (p ArbitragePath) IsClosed() bool {
	return len(p.Path) >= 4 && p.Path[0] == p.Path[len(p.Path)-1]
}

// Hops is the number of trades in the cycle.
func (p ArbitragePath) Hops() int {
	if len(p.Path) < 2 {
		return 0
	}
	return len(p.Path) - 1
}
