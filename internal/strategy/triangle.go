// Package strategy contains the four opportunity scanners: triangular cycle
// arbitrage, statistical pairs, funding-rate carry and delta-neutral basis.
// Scanners are constructed once and injected into the ranker; each Scan call
// builds a fresh per-scan price cache and returns strategy-native results.
package strategy

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arbscan/internal/config"
	"arbscan/internal/market"
	"arbscan/internal/models"
)

// majorAssets are treated as deep-liquidity legs by the liquidity heuristic.
var majorAssets = map[string]bool{
	"USDT": true, "USDC": true, "BTC": true, "ETH": true, "BNB": true,
}

// TriangleScanner enumerates profitable closed conversion cycles over a graph
// of fiat and asset currencies. Fiat legs are priced off the P2P book, asset
// legs off configured spot markets.
type TriangleScanner struct {
	cfg    config.TriangleConfig
	data   market.Data
	logger *zap.Logger

	fiats map[string]bool
	// symbols maps "FROM>TO" to the spot symbol and whether the hop sells
	// the base (true) or buys it with the quote (false).
	symbols   map[string]spotEdge
	neighbors map[string][]string
}

type spotEdge struct {
	symbol string
	sell   bool
}

func NewTriangleScanner(cfg config.TriangleConfig, data market.Data, logger *zap.Logger) *TriangleScanner {
	s := &TriangleScanner{
		cfg:       cfg,
		data:      data,
		logger:    logger,
		fiats:     map[string]bool{},
		symbols:   map[string]spotEdge{},
		neighbors: map[string][]string{},
	}
	s.buildGraph()
	return s
}

func (s *TriangleScanner) buildGraph() {
	assets := map[string]bool{}
	for _, a := range s.cfg.Assets {
		assets[strings.ToUpper(a)] = true
	}
	for _, f := range s.cfg.Fiats {
		s.fiats[strings.ToUpper(f)] = true
	}

	addEdge := func(from, to string) {
		for _, n := range s.neighbors[from] {
			if n == to {
				return
			}
		}
		s.neighbors[from] = append(s.neighbors[from], to)
	}

	// Every fiat converts to and from every asset through the P2P book;
	// quotes that do not exist are rejected at pricing time.
	for f := range s.fiats {
		for a := range assets {
			addEdge(f, a)
			addEdge(a, f)
		}
	}

	// Spot symbols are base+quote concatenations over the asset universe.
	for _, sym := range s.cfg.SpotSymbols {
		sym = strings.ToUpper(sym)
		for base := range assets {
			if !strings.HasPrefix(sym, base) {
				continue
			}
			quote := sym[len(base):]
			if !assets[quote] || quote == base {
				continue
			}
			s.symbols[base+">"+quote] = spotEdge{symbol: sym, sell: true}
			s.symbols[quote+">"+base] = spotEdge{symbol: sym, sell: false}
			addEdge(base, quote)
			addEdge(quote, base)
		}
	}
}

// Scan enumerates and prices cycles using the configured defaults.
func (s *TriangleScanner) Scan(ctx context.Context) []models.ArbitragePath {
	return s.FindPaths(ctx, s.cfg.StartCurrency, s.cfg.MinROIPct, s.cfg.MaxSteps, s.cfg.AmountUSD)
}

// FindPaths prices every closed cycle from start up to maxSteps hops and
// returns those whose ROI falls inside the configured band. A failure while
// pricing one cycle drops only that cycle.
func (s *TriangleScanner) FindPaths(ctx context.Context, start string, minROI float64, maxSteps int, amount float64) []models.ArbitragePath {
	start = strings.ToUpper(strings.TrimSpace(start))
	if start == "" || amount <= 0 {
		return nil
	}
	if maxSteps < 3 {
		maxSteps = 3
	}

	cycles := s.enumerate(start, maxSteps)
	if len(cycles) == 0 {
		return nil
	}

	cache := market.NewScanCache(s.data)
	results := make([]*models.ArbitragePath, len(cycles))

	var wg sync.WaitGroup
	for i, cycle := range cycles {
		wg.Add(1)
		go func(i int, cycle []string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil && s.logger != nil {
					s.logger.Error("cycle pricing panicked",
						zap.Strings("cycle", cycle), zap.Any("panic", r))
				}
			}()
			if p, ok := s.price(ctx, cache, cycle, amount, minROI); ok {
				results[i] = &p
			}
		}(i, cycle)
	}
	wg.Wait()

	out := make([]models.ArbitragePath, 0, len(cycles))
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// enumerate lists closed walks from start via DFS. No node repeats except the
// start closing the cycle, and a cycle needs at least three distinct nodes.
func (s *TriangleScanner) enumerate(start string, maxSteps int) [][]string {
	var cycles [][]string
	seen := map[string]bool{}

	var dfs func(node string, path []string, visited map[string]bool)
	dfs = func(node string, path []string, visited map[string]bool) {
		if len(path)-1 >= maxSteps {
			return
		}
		for _, next := range s.neighbors[node] {
			if next == start {
				if len(path) >= 3 {
					cycle := append(append([]string{}, path...), start)
					key := strings.Join(cycle, ">")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
				}
				continue
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			dfs(next, append(path, next), visited)
			delete(visited, next)
		}
	}

	dfs(start, []string{start}, map[string]bool{start: true})
	return cycles
}

func (s *TriangleScanner) price(ctx context.Context, data market.Data, cycle []string, amount, minROI float64) (models.ArbitragePath, bool) {
	steps := make([]models.TradeStep, 0, len(cycle)-1)
	current := amount
	for i := 0; i < len(cycle)-1; i++ {
		step, ok := s.priceHop(ctx, data, cycle[i], cycle[i+1], current)
		if !ok {
			return models.ArbitragePath{}, false
		}
		steps = append(steps, step)
		current = step.Output
	}

	roi := (current - amount) / amount * 100
	if roi < minROI {
		return models.ArbitragePath{}, false
	}
	if s.cfg.MaxROIPct > 0 && roi > s.cfg.MaxROIPct {
		// Implausible cycles are bad quotes, not free money.
		return models.ArbitragePath{}, false
	}

	p := models.ArbitragePath{
		Path:          append([]string{}, cycle...),
		Steps:         steps,
		ROIPercentage: roi,
		ProfitAmount:  decimal.NewFromFloat(current - amount),
	}
	s.score(&p)
	return p, true
}

func (s *TriangleScanner) priceHop(ctx context.Context, data market.Data, from, to string, input float64) (models.TradeStep, bool) {
	step := models.TradeStep{From: from, To: to, Input: input}
	switch {
	case s.fiats[from]:
		price, ok := data.BestP2PPrice(ctx, to, from, market.P2PBuy)
		if !ok || price <= 0 {
			return step, false
		}
		step.Side = models.TradeBuy
		step.Price = price
		step.Output = input / price
	case s.fiats[to]:
		price, ok := data.BestP2PPrice(ctx, from, to, market.P2PSell)
		if !ok || price <= 0 {
			return step, false
		}
		step.Side = models.TradeSell
		step.Price = price
		step.Output = input * price
	default:
		edge, ok := s.symbols[from+">"+to]
		if !ok {
			return step, false
		}
		price, ok := data.SpotPrice(ctx, edge.symbol)
		if !ok || price <= 0 {
			return step, false
		}
		step.Price = price
		if edge.sell {
			step.Side = models.TradeSell
			step.Output = input * price
		} else {
			step.Side = models.TradeBuy
			step.Output = input / price
		}
	}
	return step, true
}

// score fills the heuristic components: ROI 50%, liquidity 25%, inverse risk
// 15%, hop efficiency 10%.
func (s *TriangleScanner) score(p *models.ArbitragePath) {
	hops := p.Hops()

	maxROI := s.cfg.MaxROIPct
	if maxROI <= 0 {
		maxROI = 10
	}
	roiScore := models.ClampScore(p.ROIPercentage / maxROI * 100)

	liquidity := 100.0
	if hops > 3 {
		liquidity -= 15 * float64(hops-3)
	}
	for _, node := range p.Path[1 : len(p.Path)-1] {
		if !s.fiats[node] && !majorAssets[node] {
			liquidity -= 10
		}
	}
	p.LiquidityScore = models.ClampScore(liquidity)

	risk := 20.0
	if hops > 3 {
		risk += 10 * float64(hops-3)
	}
	if p.ROIPercentage > 0.8*maxROI {
		risk += 30
	}
	p.RiskScore = models.ClampScore(risk)

	hopBonus := models.ClampScore(100 - 20*float64(hops-3))

	p.OpportunityScore = models.ClampScore(
		0.50*roiScore + 0.25*p.LiquidityScore + 0.15*(100-p.RiskScore) + 0.10*hopBonus)
}
