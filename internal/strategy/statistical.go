package strategy

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"arbscan/internal/config"
	"arbscan/internal/market"
	"arbscan/internal/models"
)

// StatScanner runs mean-reversion analysis over a configured pair universe.
type StatScanner struct {
	cfg    config.StatisticalConfig
	data   market.Data
	logger *zap.Logger
}

func NewStatScanner(cfg config.StatisticalConfig, data market.Data, logger *zap.Logger) *StatScanner {
	return &StatScanner{cfg: cfg, data: data, logger: logger}
}

// Scan analyzes every configured pair concurrently and keeps the ones that
// pass the correlation and cointegration gates with a live entry signal.
func (s *StatScanner) Scan(ctx context.Context) []models.PairSignal {
	if len(s.cfg.Pairs) == 0 {
		return nil
	}
	cache := market.NewScanCache(s.data)
	results := make([]*models.PairSignal, len(s.cfg.Pairs))

	var wg sync.WaitGroup
	for i, pair := range s.cfg.Pairs {
		sym1, sym2, ok := splitPair(pair)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, sym1, sym2 string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil && s.logger != nil {
					s.logger.Error("pair analysis panicked",
						zap.String("pair", sym1+"/"+sym2), zap.Any("panic", r))
				}
			}()
			results[i] = s.analyze(ctx, cache, sym1, sym2, s.cfg.LookbackDays)
		}(i, sym1, sym2)
	}
	wg.Wait()

	out := make([]models.PairSignal, 0, len(results))
	for _, sig := range results {
		if sig == nil || sig.SignalType == models.SignalNeutral {
			continue
		}
		if sig.Correlation < s.cfg.MinCorrelation && sig.Correlation > -s.cfg.MinCorrelation {
			continue
		}
		if !sig.IsCointegrated {
			continue
		}
		out = append(out, *sig)
	}
	return out
}

// AnalyzePair runs the full analysis for one pair regardless of the universe
// gates. Returns nil when the aligned history is too short to say anything.
func (s *StatScanner) AnalyzePair(ctx context.Context, sym1, sym2 string, lookbackDays int) *models.PairSignal {
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.LookbackDays
	}
	return s.analyze(ctx, market.NewScanCache(s.data), sym1, sym2, lookbackDays)
}

func (s *StatScanner) analyze(ctx context.Context, data market.Data, sym1, sym2 string, lookbackDays int) *models.PairSignal {
	p1 := data.HistoricalPrices(ctx, sym1, lookbackDays)
	p2 := data.HistoricalPrices(ctx, sym2, lookbackDays)

	n := len(p1)
	if len(p2) < n {
		n = len(p2)
	}
	if n < s.cfg.MinSamples {
		return nil
	}
	p1 = p1[len(p1)-n:]
	p2 = p2[len(p2)-n:]

	varP1 := variance(p1)
	if varP1 == 0 {
		return nil
	}
	hedge := covariance(p1, p2) / varP1

	spread := make([]float64, n)
	for i := 0; i < n; i++ {
		spread[i] = p2[i] - hedge*p1[i]
	}

	meanSpread := mean(spread)
	stdSpread := stddev(spread)
	z := 0.0
	if stdSpread > 0 {
		z = (spread[n-1] - meanSpread) / stdSpread
	}

	pval, tested := engleGranger(spread)
	cointegrated := tested && pval <= s.cfg.MaxCointPValue

	sig := &models.PairSignal{
		Asset1:              sym1,
		Asset2:              sym2,
		CurrentSpread:       spread[n-1],
		MeanSpread:          meanSpread,
		StdSpread:           stdSpread,
		ZScore:              z,
		Correlation:         pearson(p1, p2),
		IsCointegrated:      cointegrated,
		CointegrationPValue: pval,
		HedgeRatio:          hedge,
		SignalType:          models.SignalNeutral,
		SampleSize:          n,
	}

	entry := s.cfg.EntryZScore
	if entry <= 0 {
		entry = 2.0
	}
	switch {
	case z > entry:
		sig.SignalType = models.SignalShortSpread
	case z < -entry:
		sig.SignalType = models.SignalLongSpread
	}

	sig.Confidence = pairConfidence(z, sig.Correlation, cointegrated, pval)
	return sig
}

// pairConfidence weights normalized |z| 40%, correlation strength 30% and
// cointegration strength 30% (zero when the pair is not cointegrated).
func pairConfidence(z, corr float64, cointegrated bool, pval float64) float64 {
	zStrength := clamp01(absFloat(z) / 4)
	corrStrength := clamp01(absFloat(corr))
	cointStrength := 0.0
	if cointegrated {
		cointStrength = clamp01(1 - pval)
	}
	return models.ClampScore((0.4*zStrength + 0.3*corrStrength + 0.3*cointStrength) * 100)
}

// LegSizes splits a position between the two legs proportional to the hedge
// ratio so dollar exposure roughly balances.
func LegSizes(positionUSD, hedgeRatio float64) (leg1, leg2 float64) {
	h := absFloat(hedgeRatio)
	if h == 0 {
		return positionUSD / 2, positionUSD / 2
	}
	leg1 = positionUSD * h / (1 + h)
	leg2 = positionUSD - leg1
	return leg1, leg2
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func splitPair(pair string) (string, string, bool) {
	parts := strings.SplitN(strings.TrimSpace(pair), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), true
}
