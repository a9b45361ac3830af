// Package risk computes portfolio risk reports: concentration measures,
// dividend sustainability per symbol, a simulated volatility proxy, earnings
// risk, and a composite 0-100 score with deterministic recommendations.
package risk

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/dividendlab/cashflow-backend/internal/apperrors"
	"github.com/dividendlab/cashflow-backend/internal/model"
	"github.com/dividendlab/cashflow-backend/internal/repository"
)

// fallbackPrice values a holding when neither a market price nor a cost
// basis is available.
const fallbackPrice = 100.0

// trailingPayments bounds the dividend history window per symbol.
const trailingPayments = 12

// PriceBatcher resolves current prices for many symbols at once. Symbols
// absent from the result map could not be priced in time.
type PriceBatcher interface {
	BatchResolve(ctx context.Context, symbols []string) map[string]float64
}

// Analyzer generates risk reports for portfolios.
type Analyzer struct {
	holdingRepo  *repository.HoldingRepository
	eventRepo    *repository.DividendEventRepository
	prices       PriceBatcher
	fundamentals FundamentalsSource
	newRand      func() *rand.Rand
}

// NewAnalyzer creates a risk Analyzer. fundamentals may be nil, in which
// case earnings risk degrades to unknown tiers.
func NewAnalyzer(
	holdingRepo *repository.HoldingRepository,
	eventRepo *repository.DividendEventRepository,
	prices PriceBatcher,
	fundamentals FundamentalsSource,
) *Analyzer {
	return &Analyzer{
		holdingRepo:  holdingRepo,
		eventRepo:    eventRepo,
		prices:       prices,
		fundamentals: fundamentals,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// GenerateRiskReport builds the full report for a portfolio. A portfolio
// with zero open holdings returns apperrors.ErrNoHoldings so callers can
// distinguish "nothing to analyze" from a genuinely low-risk portfolio.
func (a *Analyzer) GenerateRiskReport(ctx context.Context, portfolioID string) (model.RiskReport, error) {
	holdings, err := a.holdingRepo.ListOpenByPortfolio(ctx, portfolioID)
	if err != nil {
		return model.RiskReport{}, fmt.Errorf("failed to load holdings: %w", err)
	}
	if len(holdings) == 0 {
		return model.RiskReport{}, fmt.Errorf("portfolio %s: %w", portfolioID, apperrors.ErrNoHoldings)
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, strings.ToUpper(h.Symbol))
	}
	prices := a.prices.BatchResolve(ctx, symbols)

	details, portfolioValue := valueHoldings(holdings, prices)
	concentration := concentrationRisk(details)

	weights := make([]float64, len(details))
	for i, d := range details {
		weights[i] = d.Weight
	}

	// Historical return data is not persisted; a weighted synthetic series
	// stands in as the volatility proxy and feeds the supplementary market
	// metrics.
	returns := simulateReturns(weights, tradingDaysPerYear, a.newRand())
	vol := volatility(returns)

	dividendRisks, err := a.dividendRisks(ctx, holdings)
	if err != nil {
		return model.RiskReport{}, err
	}

	earningsRisks := make(map[string]model.EarningsRisk, len(holdings))
	totalEarningsRisk := 0.0
	totalShares := 0.0
	for _, h := range holdings {
		sym := strings.ToUpper(h.Symbol)
		report := EarningsRiskReport(ctx, a.fundamentals, sym)
		earningsRisks[sym] = report
		totalEarningsRisk += report.Score * h.Shares
		totalShares += h.Shares
	}
	avgEarningsRisk := 50.0
	if totalShares > 0 {
		avgEarningsRisk = totalEarningsRisk / totalShares
	}

	score := compositeScore(vol, concentration, dividendRisks, avgEarningsRisk)

	log.Printf("Risk: portfolio %s scored %.1f (%s) across %d holdings",
		portfolioID, score, riskLevel(score), len(holdings))

	return model.RiskReport{
		PortfolioID:      portfolioID,
		PortfolioValue:   portfolioValue,
		NumHoldings:      len(holdings),
		RiskScore:        score,
		OverallRiskLevel: riskLevel(score),
		Volatility:       vol,
		Beta:             beta(returns, returns),
		SharpeRatio:      sharpeRatio(returns),
		MaxDrawdown:      maxDrawdown(valueSeries(returns)),
		VaR95:            valueAtRisk(returns, 0.05),
		VaR99:            valueAtRisk(returns, 0.01),
		Concentration:    concentration,
		DividendRisks:    dividendRisks,
		EarningsRisks:    earningsRisks,
		AvgEarningsRisk:  avgEarningsRisk,
		Holdings:         details,
		Recommendations:  recommendations(vol, concentration, dividendRisks, earningsRisks, score),
	}, nil
}

// valueHoldings prices each holding (resolved price, then cost basis, then
// fallback) and computes portfolio weights.
func valueHoldings(holdings []model.Holding, prices map[string]float64) ([]model.RiskHoldingDetail, float64) {
	details := make([]model.RiskHoldingDetail, 0, len(holdings))
	total := 0.0

	for _, h := range holdings {
		sym := strings.ToUpper(h.Symbol)
		price, ok := prices[sym]
		if !ok || price <= 0 {
			price = h.AvgPrice
		}
		if price <= 0 {
			price = fallbackPrice
		}
		value := h.Shares * price
		total += value
		details = append(details, model.RiskHoldingDetail{
			Symbol: sym,
			Shares: h.Shares,
			Price:  price,
			Value:  value,
		})
	}

	if total > 0 {
		for i := range details {
			details[i].Weight = details[i].Value / total
		}
	}

	return details, total
}

// concentrationRisk computes the Herfindahl index, max and top-5 weights,
// and the top-10 holdings by weight.
func concentrationRisk(details []model.RiskHoldingDetail) model.ConcentrationRisk {
	byWeight := make([]model.HoldingWeight, len(details))
	hhi := 0.0
	maxWeight := 0.0

	for i, d := range details {
		byWeight[i] = model.HoldingWeight{Symbol: d.Symbol, Weight: d.Weight}
		hhi += d.Weight * d.Weight
		if d.Weight > maxWeight {
			maxWeight = d.Weight
		}
	}

	sort.Slice(byWeight, func(i, j int) bool { return byWeight[i].Weight > byWeight[j].Weight })

	top5 := 0.0
	for i, w := range byWeight {
		if i >= 5 {
			break
		}
		top5 += w.Weight
	}

	top := byWeight
	if len(top) > 10 {
		top = top[:10]
	}

	return model.ConcentrationRisk{
		HerfindahlIndex: hhi,
		MaxWeight:       maxWeight,
		Top5Weight:      top5,
		NumHoldings:     len(details),
		TopHoldings:     top,
	}
}

// dividendRisks scores dividend sustainability for each holding's symbol
// from its trailing payment amounts.
func (a *Analyzer) dividendRisks(ctx context.Context, holdings []model.Holding) (map[string]model.DividendRisk, error) {
	risks := make(map[string]model.DividendRisk, len(holdings))

	for _, h := range holdings {
		sym := strings.ToUpper(h.Symbol)
		if _, done := risks[sym]; done {
			continue
		}

		events, err := a.eventRepo.ListRecentEventsForSymbol(ctx, sym, trailingPayments)
		if err != nil {
			return nil, fmt.Errorf("failed to load dividend history for %s: %w", sym, err)
		}

		risks[sym] = SustainabilityScore(events)
	}

	return risks, nil
}

// SustainabilityScore rates one symbol's dividend sustainability on a 0-100
// scale. Base 50; amount volatility deducts up to 30 points; the growth
// trend between the older and newer half of the window moves it up to 20
// points either way. No history at all is Unknown, not zero.
func SustainabilityScore(events []model.DividendEvent) model.DividendRisk {
	if len(events) == 0 {
		return model.DividendRisk{RiskLevel: model.RiskUnknown}
	}

	amounts := make([]float64, len(events))
	for i, e := range events {
		amounts[i] = e.Amount
	}

	vol := volatility(amounts)

	trend := 0.0
	if len(amounts) >= 4 {
		half := len(amounts) / 2
		firstHalf := stat.Mean(amounts[:half], nil)
		secondHalf := stat.Mean(amounts[half:], nil)
		if firstHalf > 0 {
			trend = (secondHalf - firstHalf) / firstHalf
		}
	}

	score := 50.0
	if vol > 0 {
		score -= min(vol*100, 30)
	}
	if trend > 0 {
		score += min(trend*50, 20)
	} else {
		score += max(trend*50, -20)
	}
	score = clamp(score, 0, 100)

	recent := amounts
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return model.DividendRisk{
		SustainabilityScore: score,
		Volatility:          vol,
		GrowthTrend:         trend,
		RiskLevel:           riskLevel(score),
		RecentAmounts:       recent,
	}
}

// compositeScore folds the volatility, concentration, dividend, and
// earnings tiers into one 0-100 score where higher means lower risk.
func compositeScore(
	vol float64,
	concentration model.ConcentrationRisk,
	dividendRisks map[string]model.DividendRisk,
	avgEarningsRisk float64,
) float64 {
	score := 50.0

	switch {
	case vol > 0.03:
		score -= 20
	case vol > 0.02:
		score -= 10
	}

	switch {
	case concentration.MaxWeight > 0.5:
		score -= 15
	case concentration.MaxWeight > 0.3:
		score -= 8
	}

	if len(dividendRisks) > 0 {
		sum := 0.0
		for _, r := range dividendRisks {
			sum += r.SustainabilityScore
		}
		avg := sum / float64(len(dividendRisks))
		score += (avg - 50) / 5
	}

	switch {
	case avgEarningsRisk > 60:
		score -= 15
	case avgEarningsRisk > 40:
		score -= 8
	default:
		score -= 3
	}

	return clamp(score, 0, 100)
}

// riskLevel maps a 0-100 score (higher = safer) to its label.
func riskLevel(score float64) string {
	switch {
	case score >= 70:
		return model.RiskLow
	case score >= 50:
		return model.RiskMedium
	case score >= 30:
		return model.RiskHigh
	default:
		return model.RiskVeryHigh
	}
}

// recommendations emits deterministic threshold-rule advice.
func recommendations(
	vol float64,
	concentration model.ConcentrationRisk,
	dividendRisks map[string]model.DividendRisk,
	earningsRisks map[string]model.EarningsRisk,
	score float64,
) []string {
	recs := []string{}

	if vol > 0.03 {
		recs = append(recs, "Consider reducing portfolio volatility by adding more stable assets")
	} else if vol < 0.01 {
		recs = append(recs, "Portfolio is very stable - consider adding growth opportunities")
	}

	if concentration.MaxWeight > 0.4 {
		recs = append(recs, "High concentration risk - consider diversifying holdings")
	} else if concentration.NumHoldings < 5 {
		recs = append(recs, "Low diversification - consider adding more holdings")
	}

	if flagged := symbolsAtLevel(dividendRisks, model.RiskHigh, model.RiskVeryHigh); len(flagged) > 0 {
		recs = append(recs, "Monitor dividend sustainability for: "+strings.Join(flagged, ", "))
	}

	highEarnings := []string{}
	surpriseRisks := []string{}
	for _, sym := range sortedKeys(earningsRisks) {
		report := earningsRisks[sym]
		if report.OverallRiskLevel == model.RiskHigh {
			highEarnings = append(highEarnings, sym)
		}
		if report.SurpriseAnalysis.RiskLevel == model.RiskHigh {
			surpriseRisks = append(surpriseRisks, sym)
		}
	}
	if len(highEarnings) > 0 {
		recs = append(recs, "High earnings risk detected for: "+strings.Join(highEarnings, ", "))
		recs = append(recs, "Consider monitoring upcoming earnings calls and guidance")
	}
	if len(surpriseRisks) > 0 {
		recs = append(recs, "Monitor earnings surprises for: "+strings.Join(surpriseRisks, ", "))
	}

	if score < 30 {
		recs = append(recs, "Portfolio has high risk - consider risk management strategies")
	} else if score > 80 {
		recs = append(recs, "Portfolio is very conservative - consider growth opportunities")
	}

	return recs
}

// symbolsAtLevel returns, sorted, the symbols whose dividend risk level is
// one of the given labels.
func symbolsAtLevel(risks map[string]model.DividendRisk, levels ...string) []string {
	flagged := []string{}
	for sym, r := range risks {
		for _, lvl := range levels {
			if r.RiskLevel == lvl {
				flagged = append(flagged, sym)
				break
			}
		}
	}
	sort.Strings(flagged)
	return flagged
}

func sortedKeys(m map[string]model.EarningsRisk) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
