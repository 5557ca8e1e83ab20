package strategy

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the sample variance (n-1 denominator).
func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return ss / float64(len(xs)-1)
}

func stddev(xs []float64) float64 {
	return math.Sqrt(variance(xs))
}

func covariance(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var s float64
	for i := 0; i < n; i++ {
		s += (xs[i] - mx) * (ys[i] - my)
	}
	return s / float64(n-1)
}

// pearson returns the correlation coefficient, 0 when either series is flat.
func pearson(xs, ys []float64) float64 {
	sx, sy := stddev(xs), stddev(ys)
	if sx == 0 || sy == 0 {
		return 0
	}
	return covariance(xs, ys) / (sx * sy)
}

// adfTStat runs the Dickey-Fuller regression dy_t = a + g*y_{t-1} + e and
// returns the t-statistic of g. A strongly negative value rejects a unit root.
func adfTStat(series []float64) (float64, bool) {
	n := len(series)
	if n < 10 {
		return 0, false
	}
	dy := make([]float64, n-1)
	lag := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dy[i-1] = series[i] - series[i-1]
		lag[i-1] = series[i-1]
	}

	mx, my := mean(lag), mean(dy)
	var sxx, sxy float64
	for i := range lag {
		dx := lag[i] - mx
		sxx += dx * dx
		sxy += dx * (dy[i] - my)
	}
	if sxx == 0 {
		return 0, false
	}
	gamma := sxy / sxx
	alpha := my - gamma*mx

	var sse float64
	for i := range lag {
		r := dy[i] - alpha - gamma*lag[i]
		sse += r * r
	}
	dof := float64(len(lag) - 2)
	if dof <= 0 {
		return 0, false
	}
	se := math.Sqrt(sse / dof / sxx)
	if se == 0 {
		return 0, false
	}
	return gamma / se, true
}

// mackinnonPValue maps a Dickey-Fuller t-statistic to an approximate p-value
// by linear interpolation between the tabulated 1%/5%/10% critical values.
func mackinnonPValue(tStat float64) float64 {
	crit := []struct{ stat, p float64 }{
		{-3.43, 0.01},
		{-2.86, 0.05},
		{-2.57, 0.10},
	}
	if tStat <= crit[0].stat {
		return 0.005
	}
	for i := 1; i < len(crit); i++ {
		if tStat <= crit[i].stat {
			lo, hi := crit[i-1], crit[i]
			frac := (tStat - lo.stat) / (hi.stat - lo.stat)
			return lo.p + frac*(hi.p-lo.p)
		}
	}
	last := crit[len(crit)-1]
	prev := crit[len(crit)-2]
	slope := (last.p - prev.p) / (last.stat - prev.stat)
	p := last.p + (tStat-last.stat)*slope
	if p > 0.99 {
		p = 0.99
	}
	return p
}

// engleGranger tests whether the spread series is stationary and returns the
// approximate cointegration p-value.
func engleGranger(spread []float64) (float64, bool) {
	t, ok := adfTStat(spread)
	if !ok {
		return 0, false
	}
	return mackinnonPValue(t), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
