package strategy

import (
	"context"
	"math"
	"testing"

	"arbscan/internal/config"
	"arbscan/internal/models"
)

func statTestConfig() config.StatisticalConfig {
	return config.StatisticalConfig{
		Pairs:              []string{"AAAUSDT/BBBUSDT"},
		LookbackDays:       40,
		MinSamples:         20,
		MinCorrelation:     0.7,
		MaxCointPValue:     0.05,
		EntryZScore:        2.0,
		PositionSizeUSD:    1000,
		MaxPositionSizeUSD: 10000,
	}
}

// divergedPairSeries builds two tightly coupled series whose spread
// oscillates around zero until a large final displacement.
func divergedPairSeries(n int) (p1, p2 []float64) {
	p1 = make([]float64, n)
	p2 = make([]float64, n)
	for i := 0; i < n; i++ {
		p1[i] = 100 + float64(i%5)*2
		spread := 1.0
		if i%2 == 1 {
			spread = -1.0
		}
		if i == n-1 {
			spread = 5.0
		}
		p2[i] = 1.5*p1[i] + spread
	}
	return p1, p2
}

func TestAnalyzePairZeroVarianceSpread(t *testing.T) {
	n := 30
	p1 := make([]float64, n)
	p2 := make([]float64, n)
	for i := 0; i < n; i++ {
		p1[i] = 100 + float64(i%7)
		p2[i] = 2 * p1[i]
	}
	data := &stubData{history: map[string][]float64{"AAAUSDT": p1, "BBBUSDT": p2}}
	s := NewStatScanner(statTestConfig(), data, nil)

	sig := s.AnalyzePair(context.Background(), "AAAUSDT", "BBBUSDT", 30)
	if sig == nil {
		t.Fatalf("expected a signal")
	}
	if sig.ZScore != 0 {
		t.Fatalf("z-score = %v, want 0 for a flat spread", sig.ZScore)
	}
	if sig.SignalType != models.SignalNeutral {
		t.Fatalf("signal = %v, want NEUTRAL", sig.SignalType)
	}
	if math.Abs(sig.HedgeRatio-2.0) > 1e-9 {
		t.Fatalf("hedge ratio = %v, want 2.0", sig.HedgeRatio)
	}
}

func TestAnalyzePairShortSpreadSignal(t *testing.T) {
	p1, p2 := divergedPairSeries(40)
	data := &stubData{history: map[string][]float64{"AAAUSDT": p1, "BBBUSDT": p2}}
	s := NewStatScanner(statTestConfig(), data, nil)

	sig := s.AnalyzePair(context.Background(), "AAAUSDT", "BBBUSDT", 40)
	if sig == nil {
		t.Fatalf("expected a signal")
	}
	if sig.ZScore <= 2.0 {
		t.Fatalf("z-score = %v, want > 2 after the divergence", sig.ZScore)
	}
	if sig.SignalType != models.SignalShortSpread {
		t.Fatalf("signal = %v, want SHORT_SPREAD", sig.SignalType)
	}
	if sig.Correlation < 0.9 {
		t.Fatalf("correlation = %v, want coupled series", sig.Correlation)
	}
	if sig.Confidence <= 50 {
		t.Fatalf("confidence = %v, want upper half", sig.Confidence)
	}
	if sig.SampleSize != 40 {
		t.Fatalf("sample size = %d, want 40", sig.SampleSize)
	}
}

func TestAnalyzePairInsufficientHistory(t *testing.T) {
	data := &stubData{history: map[string][]float64{
		"AAAUSDT": {100, 101, 102},
		"BBBUSDT": {200, 201, 202},
	}}
	s := NewStatScanner(statTestConfig(), data, nil)
	if sig := s.AnalyzePair(context.Background(), "AAAUSDT", "BBBUSDT", 30); sig != nil {
		t.Fatalf("expected nil for a short series, got %+v", sig)
	}
}

func TestScanFiltersNeutralPairs(t *testing.T) {
	n := 30
	p1 := make([]float64, n)
	p2 := make([]float64, n)
	for i := 0; i < n; i++ {
		p1[i] = 100 + float64(i%7)
		p2[i] = 2 * p1[i]
	}
	data := &stubData{history: map[string][]float64{"AAAUSDT": p1, "BBBUSDT": p2}}
	s := NewStatScanner(statTestConfig(), data, nil)
	if got := s.Scan(context.Background()); len(got) != 0 {
		t.Fatalf("expected no actionable signals, got %d", len(got))
	}
}

func TestPairConfidenceWeights(t *testing.T) {
	got := pairConfidence(2.5, 0.95, true, 0.01)
	// 0.4*0.625 + 0.3*0.95 + 0.3*0.99, in percent.
	want := (0.4*0.625 + 0.3*0.95 + 0.3*0.99) * 100
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", got, want)
	}
	if uncointegrated := pairConfidence(2.5, 0.95, false, 0.5); uncointegrated >= got {
		t.Fatalf("cointegration should raise confidence: %v >= %v", uncointegrated, got)
	}
}

func TestLegSizesBalance(t *testing.T) {
	leg1, leg2 := LegSizes(1000, 1.0)
	if math.Abs(leg1-500) > 1e-9 || math.Abs(leg2-500) > 1e-9 {
		t.Fatalf("unit hedge should split evenly, got %v/%v", leg1, leg2)
	}
	leg1, leg2 = LegSizes(1000, 3.0)
	if math.Abs(leg1+leg2-1000) > 1e-9 {
		t.Fatalf("legs must sum to the position, got %v", leg1+leg2)
	}
	if leg1 <= leg2 {
		t.Fatalf("hedge ratio 3 should weight leg1 heavier: %v vs %v", leg1, leg2)
	}
}

func TestMackinnonInterpolation(t *testing.T) {
	tests := []struct {
		tStat float64
		want  float64
	}{
		{-4.0, 0.005},
		{-3.43, 0.01},
		{-2.86, 0.05},
		{-2.57, 0.10},
	}
	for _, tt := range tests {
		if got := mackinnonPValue(tt.tStat); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("p(%v) = %v, want %v", tt.tStat, got, tt.want)
		}
	}
	mid := mackinnonPValue(-3.0)
	if mid <= 0.01 || mid >= 0.05 {
		t.Fatalf("p(-3.0) = %v, want between the 1%% and 5%% points", mid)
	}
	if p := mackinnonPValue(1.0); p > 0.99 {
		t.Fatalf("p-value %v above 0.99", p)
	}
}

func TestPearsonFlatSeries(t *testing.T) {
	flat := []float64{5, 5, 5, 5}
	varying := []float64{1, 2, 3, 4}
	if got := pearson(flat, varying); got != 0 {
		t.Fatalf("correlation with a flat series = %v, want 0", got)
	}
	if got := pearson(varying, varying); math.Abs(got-1) > 1e-9 {
		t.Fatalf("self correlation = %v, want 1", got)
	}
}
