// Package forecast projects monthly dividend income for a portfolio over a
// configurable horizon, applying per-symbol cadence, growth scenarios,
// reinvestment compounding, and recurring deposits.
package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dividendlab/cashflow-backend/internal/apperrors"
	"github.com/dividendlab/cashflow-backend/internal/model"
	"github.com/dividendlab/cashflow-backend/internal/pattern"
	"github.com/dividendlab/cashflow-backend/internal/repository"
)

// Growth scenario names.
const (
	ScenarioConservative = "conservative"
	ScenarioModerate     = "moderate"
	ScenarioOptimistic   = "optimistic"
	ScenarioPessimistic  = "pessimistic"
)

// scenarioOffsets are the fixed annualized growth adjustments per scenario,
// added on top of each symbol's own inferred growth rate.
var scenarioOffsets = map[string]float64{
	ScenarioConservative: 0.0,
	ScenarioModerate:     0.02,
	ScenarioOptimistic:   0.05,
	ScenarioPessimistic:  -0.05,
}

// fallbackReinvestPrice is the assumed share price for DRIP conversion when
// no market price can be resolved for a symbol.
const fallbackReinvestPrice = 150.0

// PriceResolver resolves a current price for DRIP share conversion. Absence
// is reported via ok=false and makes the engine fall back to cost basis or
// the assumed price, never to zero.
type PriceResolver interface {
	Resolve(ctx context.Context, symbol string) (float64, bool)
}

// Options configures one projection run.
type Options struct {
	Months           int
	AssumeReinvest   bool
	RecurringDeposit float64
	StartDate        time.Time // zero means the first of the current month
	GrowthScenario   string
}

// Engine projects monthly cashflow from holdings and inferred patterns.
type Engine struct {
	holdingRepo *repository.HoldingRepository
	analyzer    *pattern.Analyzer
	prices      PriceResolver
}

// NewEngine creates a forecast Engine.
func NewEngine(holdingRepo *repository.HoldingRepository, analyzer *pattern.Analyzer, prices PriceResolver) *Engine {
	return &Engine{
		holdingRepo: holdingRepo,
		analyzer:    analyzer,
		prices:      prices,
	}
}

// ForecastPortfolio loads a portfolio's open holdings, infers patterns for
// their symbols, and projects monthly income. A portfolio with no holdings
// yields an empty series, not an error.
func (e *Engine) ForecastPortfolio(ctx context.Context, portfolioID string, opts Options) (model.ForecastResult, error) {
	if opts.Months < 1 || opts.Months > 120 {
		return model.ForecastResult{}, apperrors.ErrInvalidForecastHorizon
	}
	if _, known := scenarioOffsets[opts.GrowthScenario]; !known {
		return model.ForecastResult{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownScenario, opts.GrowthScenario)
	}

	holdings, err := e.holdingRepo.ListOpenByPortfolio(ctx, portfolioID)
	if err != nil {
		return model.ForecastResult{}, fmt.Errorf("failed to load holdings: %w", err)
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}

	patterns, err := e.analyzer.AnalyzeSymbols(ctx, symbols)
	if err != nil {
		return model.ForecastResult{}, fmt.Errorf("failed to analyze patterns: %w", err)
	}

	reinvestPrices := make(map[string]float64, len(holdings))
	if opts.AssumeReinvest {
		for _, h := range holdings {
			reinvestPrices[h.Symbol] = e.reinvestPrice(ctx, h)
		}
	}

	return Project(holdings, patterns, reinvestPrices, opts), nil
}

// reinvestPrice picks the share price used for DRIP conversion: resolved
// market price, then cost basis, then the assumed fallback.
func (e *Engine) reinvestPrice(ctx context.Context, holding model.Holding) float64 {
	if price, ok := e.prices.Resolve(ctx, holding.Symbol); ok && price > 0 {
		return price
	}
	if holding.AvgPrice > 0 {
		return holding.AvgPrice
	}
	return fallbackReinvestPrice
}

// Project runs the projection math over already-loaded inputs.
//
// For each holding with a pattern, a base monthly amount is derived from the
// cadence: monthly pays the recent average every payment month, quarterly
// spreads it across the quarter, and irregular cadences annualize the
// recent average by frequency. Holdings without a pattern are excluded
// entirely rather than defaulting to a guessed cadence.
//
// Monetary values stay unrounded through the calculation; rounding to two
// decimals happens only at output assembly.
func Project(
	holdings []model.Holding,
	patterns map[string]model.DividendPattern,
	reinvestPrices map[string]float64,
	opts Options,
) model.ForecastResult {
	start := opts.StartDate
	if start.IsZero() {
		now := time.Now().UTC()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	buckets := make([]time.Time, opts.Months)
	for i := range buckets {
		buckets[i] = start.AddDate(0, i, 0)
	}

	cashFlow := make([]float64, opts.Months)
	scenarioOffset := scenarioOffsets[opts.GrowthScenario]

	for _, holding := range holdings {
		pat, found := patterns[holding.Symbol]
		if !found {
			continue
		}

		shares := holding.Shares
		baseMonthly := baseMonthlyAmount(pat, shares)
		totalGrowth := scenarioOffset + pat.GrowthRate

		payMonths := make(map[int]bool, len(pat.PaymentMonths))
		for _, m := range pat.PaymentMonths {
			payMonths[m] = true
		}

		for i, bucket := range buckets {
			if !payMonths[int(bucket.Month())] {
				continue
			}

			growthFactor := math.Pow(1+totalGrowth, float64(i)/12)
			dividendAmount := baseMonthly * growthFactor

			if opts.AssumeReinvest {
				price := reinvestPrices[holding.Symbol]
				if price <= 0 {
					price = fallbackReinvestPrice
				}
				// DRIP: the dividend buys more shares, compounding every
				// later payment through the increased share count.
				shares += dividendAmount / price
				baseMonthly = baseMonthlyAmount(pat, shares)
			}

			cashFlow[i] += dividendAmount
		}
	}

	// Recurring deposits land in every bucket regardless of dividend
	// activity.
	if opts.RecurringDeposit > 0 {
		for i := range cashFlow {
			cashFlow[i] += opts.RecurringDeposit
		}
	}

	series := make([]model.ForecastMonth, opts.Months)
	total := 0.0
	cumulative := 0.0

	for i, bucket := range buckets {
		cumulative += cashFlow[i]
		total += cashFlow[i]
		series[i] = model.ForecastMonth{
			Month:       bucket.Format("2006-01"),
			Income:      round2(cashFlow[i]),
			Cumulative:  round2(cumulative),
			HasDividend: cashFlow[i] > 0,
		}
	}

	return model.ForecastResult{
		Series:      series,
		Total:       round2(total),
		Scenarios:   scenarioTotals(total, opts.GrowthScenario),
		Patterns:    patternSummaries(holdings, patterns),
		Assumptions: model.ForecastAssumptions{
			Reinvest:         opts.AssumeReinvest,
			GrowthScenario:   opts.GrowthScenario,
			RecurringDeposit: opts.RecurringDeposit,
		},
	}
}

// baseMonthlyAmount derives the per-month dividend for a share count from
// the symbol's cadence.
func baseMonthlyAmount(pat model.DividendPattern, shares float64) float64 {
	switch {
	case pat.IsMonthly:
		return pat.RecentAvgAmount * shares
	case pat.IsQuarterly:
		return pat.RecentAvgAmount * shares / 3
	default:
		annual := pat.RecentAvgAmount * float64(pat.Frequency) * shares
		return annual / 12
	}
}

// scenarioTotals reports the projected total under every scenario. Totals
// for non-selected scenarios scale the realized total by the scenario's
// growth differential instead of re-running the simulation; this is a
// deliberate approximation for comparison, not a precise projection.
func scenarioTotals(total float64, selected string) map[string]float64 {
	out := make(map[string]float64, len(scenarioOffsets))
	for name, offset := range scenarioOffsets {
		if name == selected {
			out[name] = round2(total)
			continue
		}
		out[name] = round2(total * (1 + offset))
	}
	return out
}

// patternSummaries shapes the per-symbol pattern detail for the response,
// with the growth rate expressed in percent.
func patternSummaries(holdings []model.Holding, patterns map[string]model.DividendPattern) map[string]model.PatternSummary {
	out := make(map[string]model.PatternSummary)
	for _, holding := range holdings {
		pat, found := patterns[holding.Symbol]
		if !found {
			continue
		}
		out[holding.Symbol] = model.PatternSummary{
			Frequency:     pat.Frequency,
			PaymentMonths: pat.PaymentMonths,
			GrowthRate:    round1(pat.GrowthRate * 100),
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
