package strategy

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"arbscan/internal/config"
	"arbscan/internal/market"
	"arbscan/internal/models"
)

// FundingScanner hunts positive funding carry: long spot, short perpetual,
// collecting the periodic rate while the basis converges.
type FundingScanner struct {
	cfg    config.CarryConfig
	data   market.Data
	logger *zap.Logger
}

func NewFundingScanner(cfg config.CarryConfig, data market.Data, logger *zap.Logger) *FundingScanner {
	return &FundingScanner{cfg: cfg, data: data, logger: logger}
}

func (s *FundingScanner) Scan(ctx context.Context) []models.FundingDetails {
	if len(s.cfg.Symbols) == 0 {
		return nil
	}
	cache := market.NewScanCache(s.data)
	results := make([]*models.FundingDetails, len(s.cfg.Symbols))

	var wg sync.WaitGroup
	for i, symbol := range s.cfg.Symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil && s.logger != nil {
					s.logger.Error("funding analysis panicked",
						zap.String("symbol", symbol), zap.Any("panic", r))
				}
			}()
			results[i] = s.analyze(ctx, cache, symbol)
		}(i, symbol)
	}
	wg.Wait()

	out := make([]models.FundingDetails, 0, len(results))
	for _, d := range results {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func (s *FundingScanner) analyze(ctx context.Context, data market.Data, symbol string) *models.FundingDetails {
	snap, ok := takeCarrySnapshot(ctx, data, s.cfg, symbol)
	if !ok {
		return nil
	}
	// The funding strategy only legs in when the short side collects.
	if snap.direction != models.DirectionLongSpotShortFutures || snap.funding.Rate <= 0 {
		return nil
	}

	fundingRet := fundingReturnPct(snap, s.cfg)
	convergenceRet := convergenceReturnPct(snap, s.cfg)
	fees := carryFeesPct(snap.direction, s.cfg)
	net := fundingRet + convergenceRet - fees
	if net <= 0 {
		return nil
	}

	return &models.FundingDetails{
		Symbol:               snap.symbol,
		SpotPrice:            snap.spot,
		MarkPrice:            snap.funding.MarkPrice,
		Basis:                snap.basis,
		BasisPct:             snap.basisPct,
		FundingRate:          snap.funding.Rate,
		FundingAPY:           snap.apyPct,
		NextFundingTime:      snap.funding.NextFundingTime,
		Direction:            snap.direction,
		HoldingPeriodDays:    s.cfg.HoldingPeriodDays,
		FundingReturnPct:     fundingRet,
		ConvergenceReturnPct: convergenceRet,
		FeesPct:              fees,
		NetReturnPct:         net,
		RiskLevel:            carryRiskLevel(snap),
	}
}
