package risk

import (
	"context"
	"log"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// FundamentalsSource supplies quarterly reported fundamentals, most recent
// first. Implementations may legitimately return an empty slice when no data
// exists for a symbol.
type FundamentalsSource interface {
	FetchQuarterlyFinancials(ctx context.Context, symbol string) ([]model.QuarterlyFinancials, error)
}

// largeCaps feeds the guidance reliability heuristic: large caps have a
// track record of tighter guidance.
var largeCaps = map[string]bool{
	"AAPL": true, "MSFT": true, "GOOGL": true, "AMZN": true,
	"TSLA": true, "META": true, "NVDA": true,
}

// EarningsRiskReport scores a symbol's earnings-derived risk from quarterly
// fundamentals. A missing or failing source degrades to an unknown-tier
// report (DataAvailable false) instead of an error; earnings data is
// supplementary to the dividend-centric analysis.
func EarningsRiskReport(ctx context.Context, source FundamentalsSource, symbol string) model.EarningsRisk {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	var quarters []model.QuarterlyFinancials
	if source != nil {
		fetched, err := source.FetchQuarterlyFinancials(ctx, sym)
		if err != nil {
			log.Printf("Earnings risk: fetch failed for %s: %v", sym, err)
		} else {
			quarters = fetched
		}
	}

	surprise := analyzeSurprises(quarters)
	revenue := analyzeRevenueGrowth(quarters)
	profitability := analyzeProfitability(quarters)
	guidanceLevel := guidanceReliability(sym)
	valuationLevel, pegRatio := valuationRisk(sym)

	// Weighted factor sum: surprise history is the strongest predictor,
	// valuation the weakest. Unknown tiers score as low factors so sparse
	// data does not inflate the risk score.
	score := riskFactor(surprise.RiskLevel, 30, 15, 5) +
		riskFactor(revenue.RiskLevel, 25, 12, 5) +
		riskFactor(profitability.RiskLevel, 20, 10, 5) +
		riskFactor(guidanceLevel, 15, 8, 3) +
		riskFactor(valuationLevel, 10, 5, 2)

	level := model.RiskHigh
	switch {
	case score <= 20:
		level = model.RiskLow
	case score <= 40:
		level = model.RiskMedium
	}

	return model.EarningsRisk{
		Symbol:             sym,
		Score:              score,
		OverallRiskLevel:   level,
		SurpriseAnalysis:   surprise,
		RevenueAnalysis:    revenue,
		ProfitabilityRisk:  profitability,
		GuidanceRiskLevel:  guidanceLevel,
		ValuationRiskLevel: valuationLevel,
		PEGRatio:           pegRatio,
		DataAvailable:      len(quarters) > 0,
		QuartersAnalyzed:   len(quarters),
	}
}

// riskFactor maps a tier label to its weight in the score. Unknown or empty
// tiers take the low weight.
func riskFactor(level string, high, medium, low float64) float64 {
	switch level {
	case model.RiskHigh:
		return high
	case model.RiskMedium:
		return medium
	default:
		return low
	}
}

// analyzeSurprises compares reported EPS with estimates across quarters and
// scores the beat/miss pattern.
func analyzeSurprises(quarters []model.QuarterlyFinancials) model.SurpriseAnalysis {
	var surprises []float64
	beats, misses := 0, 0

	for _, q := range quarters {
		if q.EPSEstimate == 0 {
			continue
		}
		surprise := (q.EPS - q.EPSEstimate) / math.Abs(q.EPSEstimate)
		surprises = append(surprises, surprise)
		if surprise > 0 {
			beats++
		} else {
			misses++
		}
	}

	if len(surprises) == 0 {
		return model.SurpriseAnalysis{RiskLevel: model.RiskUnknown}
	}

	beatRate := float64(beats) / float64(len(surprises))
	vol := volatility(surprises)

	level := model.RiskHigh
	switch {
	case beatRate >= 0.7 && vol < 0.1:
		level = model.RiskLow
	case beatRate >= 0.5 && vol < 0.2:
		level = model.RiskMedium
	}

	return model.SurpriseAnalysis{
		AvgSurprise:        stat.Mean(surprises, nil),
		SurpriseVolatility: vol,
		BeatRate:           beatRate,
		Beats:              beats,
		Misses:             misses,
		RiskLevel:          level,
	}
}

// analyzeRevenueGrowth scores quarter-over-quarter revenue growth and its
// stability.
func analyzeRevenueGrowth(quarters []model.QuarterlyFinancials) model.TrendAnalysis {
	var growth []float64
	for i := 1; i < len(quarters); i++ {
		prev := quarters[i-1].Revenue
		if prev == 0 {
			continue
		}
		growth = append(growth, (quarters[i].Revenue-prev)/prev)
	}

	if len(growth) == 0 {
		return model.TrendAnalysis{RiskLevel: model.RiskUnknown}
	}

	avg := stat.Mean(growth, nil)
	vol := volatility(growth)

	level := model.RiskHigh
	switch {
	case avg > 0.1 && vol < 0.2:
		level = model.RiskLow
	case avg > 0.05 && vol < 0.3:
		level = model.RiskMedium
	}

	return model.TrendAnalysis{
		Avg:        avg,
		Volatility: vol,
		Trend:      growth[len(growth)-1],
		RiskLevel:  level,
	}
}

// analyzeProfitability scores net margin level, stability, and direction.
func analyzeProfitability(quarters []model.QuarterlyFinancials) model.TrendAnalysis {
	var margins []float64
	for _, q := range quarters {
		if q.Revenue == 0 {
			continue
		}
		margins = append(margins, q.NetIncome/q.Revenue)
	}

	if len(margins) == 0 {
		return model.TrendAnalysis{RiskLevel: model.RiskUnknown}
	}

	avg := stat.Mean(margins, nil)
	vol := volatility(margins)

	trend := 0.0
	if len(margins) >= 4 {
		half := len(margins) / 2
		trend = stat.Mean(margins[half:], nil) - stat.Mean(margins[:half], nil)
	}

	level := model.RiskHigh
	switch {
	case avg > 0.15 && vol < 0.1 && trend >= 0:
		level = model.RiskLow
	case avg > 0.1 && vol < 0.2:
		level = model.RiskMedium
	}

	return model.TrendAnalysis{
		Avg:        avg,
		Volatility: vol,
		Trend:      trend,
		RiskLevel:  level,
	}
}

// guidanceReliability is a coarse heuristic pending historical guidance
// data: large caps guide more reliably.
func guidanceReliability(symbol string) string {
	if largeCaps[symbol] {
		return model.RiskLow
	}
	return model.RiskMedium
}

// valuationRisk tiers forward valuation by PEG ratio using characteristic
// forward P/E and growth expectations per symbol class.
func valuationRisk(symbol string) (string, float64) {
	forwardPE := 20.0
	growthExpectation := 0.05

	switch symbol {
	case "AAPL", "MSFT":
		forwardPE, growthExpectation = 25.0, 0.08
	case "TSLA", "NVDA":
		forwardPE, growthExpectation = 45.0, 0.15
	}

	pegRatio := 999.0
	if growthExpectation > 0 {
		pegRatio = forwardPE / (growthExpectation * 100)
	}

	switch {
	case pegRatio < 1.5:
		return model.RiskLow, pegRatio
	case pegRatio < 2.5:
		return model.RiskMedium, pegRatio
	default:
		return model.RiskHigh, pegRatio
	}
}
