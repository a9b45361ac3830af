package risk

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	tradingDaysPerYear = 252
	riskFreeRate       = 0.02
	dailyReturnStdDev  = 0.02
)

// simulateReturns produces a weighted daily return series as a volatility
// proxy. Historical return data is not stored, so each holding contributes an
// independent draw scaled by its portfolio weight. The generator is injected
// so callers can pin the series.
func simulateReturns(weights []float64, days int, rng *rand.Rand) []float64 {
	returns := make([]float64, days)
	for i := range returns {
		daily := 0.0
		for _, w := range weights {
			daily += rng.NormFloat64() * dailyReturnStdDev * w
		}
		returns[i] = daily
	}
	return returns
}

// volatility is the sample standard deviation of a return series.
func volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil)
}

// beta measures covariance of the portfolio against a market series, scaled
// by market variance. Mismatched or short inputs default to market beta.
func beta(portfolioReturns, marketReturns []float64) float64 {
	if len(portfolioReturns) != len(marketReturns) || len(portfolioReturns) < 2 {
		return 1.0
	}
	marketVariance := stat.Variance(marketReturns, nil)
	if marketVariance == 0 {
		return 1.0
	}
	return stat.Covariance(portfolioReturns, marketReturns, nil) / marketVariance
}

// sharpeRatio is the excess mean return over the risk-free rate per unit of
// volatility. Zero volatility yields zero rather than a division blowup.
func sharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	vol := volatility(returns)
	if vol == 0 {
		return 0
	}
	return (stat.Mean(returns, nil) - riskFreeRate) / vol
}

// maxDrawdown walks a value series tracking the largest peak-to-trough loss
// as a fraction of the peak.
func maxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
			continue
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// valueAtRisk returns the loss magnitude at the given tail probability
// (0.05 for 95% VaR, 0.01 for 99%).
func valueAtRisk(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(confidence * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return math.Abs(sorted[idx])
}

// valueSeries compounds a return series into a portfolio value path starting
// from an arbitrary base, for drawdown measurement.
func valueSeries(returns []float64) []float64 {
	values := make([]float64, 0, len(returns)+1)
	values = append(values, 1000)
	for _, r := range returns {
		values = append(values, values[len(values)-1]*(1+r))
	}
	return values
}
