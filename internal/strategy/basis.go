package strategy

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"arbscan/internal/config"
	"arbscan/internal/market"
	"arbscan/internal/models"
)

// BasisScanner targets basis convergence first and treats funding flow as a
// secondary component. Unlike the funding scanner it trades both directions.
type BasisScanner struct {
	cfg    config.CarryConfig
	data   market.Data
	logger *zap.Logger
}

func NewBasisScanner(cfg config.CarryConfig, data market.Data, logger *zap.Logger) *BasisScanner {
	return &BasisScanner{cfg: cfg, data: data, logger: logger}
}

func (s *BasisScanner) Scan(ctx context.Context) []models.BasisDetails {
	if len(s.cfg.Symbols) == 0 {
		return nil
	}
	cache := market.NewScanCache(s.data)
	results := make([]*models.BasisDetails, len(s.cfg.Symbols))

	var wg sync.WaitGroup
	for i, symbol := range s.cfg.Symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil && s.logger != nil {
					s.logger.Error("basis analysis panicked",
						zap.String("symbol", symbol), zap.Any("panic", r))
				}
			}()
			results[i] = s.analyze(ctx, cache, symbol)
		}(i, symbol)
	}
	wg.Wait()

	out := make([]models.BasisDetails, 0, len(results))
	for _, d := range results {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func (s *BasisScanner) analyze(ctx context.Context, data market.Data, symbol string) *models.BasisDetails {
	snap, ok := takeCarrySnapshot(ctx, data, s.cfg, symbol)
	if !ok {
		return nil
	}

	convergenceRet := convergenceReturnPct(snap, s.cfg)
	fundingRet := fundingReturnPct(snap, s.cfg)
	fees := carryFeesPct(snap.direction, s.cfg)
	net := convergenceRet + fundingRet - fees
	if net <= 0 {
		return nil
	}

	return &models.BasisDetails{
		Symbol:               snap.symbol,
		SpotPrice:            snap.spot,
		MarkPrice:            snap.funding.MarkPrice,
		Basis:                snap.basis,
		BasisPct:             snap.basisPct,
		FundingRate:          snap.funding.Rate,
		FundingAPY:           snap.apyPct,
		Direction:            snap.direction,
		HoldingPeriodDays:    s.cfg.HoldingPeriodDays,
		ConvergenceReturnPct: convergenceRet,
		FundingReturnPct:     fundingRet,
		FeesPct:              fees,
		NetReturnPct:         net,
		RiskLevel:            carryRiskLevel(snap),
	}
}
