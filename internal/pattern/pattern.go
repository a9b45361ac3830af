// Package pattern infers a symbol's dividend payment cadence and growth
// trend from its sparse, irregular event history.
package pattern

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/dividendlab/cashflow-backend/internal/model"
	"github.com/dividendlab/cashflow-backend/internal/repository"
)

// Cadence classification and growth bounds.
const (
	monthlyThreshold = 10 // distinct payment months for a monthly classification
	quarterlyMonths  = 4
	maxGrowthRate    = 0.15
	trailingWindow   = 12 // events considered for the recent average
)

// Analyzer derives DividendPattern summaries from the persisted event store.
type Analyzer struct {
	eventRepo *repository.DividendEventRepository
}

// NewAnalyzer creates a pattern Analyzer backed by the event repository.
func NewAnalyzer(eventRepo *repository.DividendEventRepository) *Analyzer {
	return &Analyzer{eventRepo: eventRepo}
}

// AnalyzeSymbols infers a pattern for each symbol with at least one stored
// event. Symbols without history are absent from the returned map: callers
// must treat "no pattern" as insufficient data to forecast, which is distinct
// from a pattern whose growth happens to be zero.
func (a *Analyzer) AnalyzeSymbols(ctx context.Context, symbols []string) (map[string]model.DividendPattern, error) {
	patterns := make(map[string]model.DividendPattern, len(symbols))

	for _, symbol := range symbols {
		if _, done := patterns[symbol]; done {
			continue
		}

		events, err := a.eventRepo.ListEventsForSymbol(ctx, symbol)
		if err != nil {
			return nil, err
		}

		if pattern, ok := Analyze(symbol, events); ok {
			patterns[symbol] = pattern
		}
	}

	return patterns, nil
}

// Analyze infers the payment pattern from a symbol's events, which must be
// ordered by ex-date ascending (the repository's natural order). Events
// lacking an ex-date cannot contribute to cadence inference and are skipped.
// Returns ok=false when no usable events exist.
func Analyze(symbol string, events []model.DividendEvent) (model.DividendPattern, bool) {
	months := make(map[int]bool)
	amounts := make([]float64, 0, len(events))

	for _, event := range events {
		if event.ExDate.IsZero() {
			continue
		}
		months[int(event.ExDate.Month())] = true
		amounts = append(amounts, event.Amount)
	}

	if len(amounts) == 0 {
		return model.DividendPattern{}, false
	}

	paymentMonths := make([]int, 0, len(months))
	for month := range months {
		paymentMonths = append(paymentMonths, month)
	}
	sort.Ints(paymentMonths)

	return model.DividendPattern{
		Symbol:          symbol,
		PaymentMonths:   paymentMonths,
		Frequency:       len(paymentMonths),
		IsMonthly:       len(paymentMonths) >= monthlyThreshold,
		IsQuarterly:     len(paymentMonths) == quarterlyMonths,
		GrowthRate:      growthRate(amounts),
		RecentAvgAmount: recentAverage(amounts),
		TotalEvents:     len(amounts),
	}, true
}

// growthRate compares the mean of the second half of the amount sequence
// against the first half and clamps the result to [0, maxGrowthRate].
// Fewer than two events yield zero.
func growthRate(amounts []float64) float64 {
	if len(amounts) < 2 {
		return 0
	}

	mid := len(amounts) / 2
	firstHalf := stat.Mean(amounts[:mid], nil)
	secondHalf := stat.Mean(amounts[mid:], nil)

	if firstHalf <= 0 {
		return 0
	}

	growth := secondHalf/firstHalf - 1
	if growth < 0 {
		return 0
	}
	if growth > maxGrowthRate {
		return maxGrowthRate
	}
	return growth
}

// recentAverage returns the mean of the trailing window of amounts.
func recentAverage(amounts []float64) float64 {
	if len(amounts) == 0 {
		return 0
	}

	start := len(amounts) - trailingWindow
	if start < 0 {
		start = 0
	}
	return stat.Mean(amounts[start:], nil)
}
