package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/dividendlab/cashflow-backend/internal/model"
	"github.com/dividendlab/cashflow-backend/internal/pattern"
	"github.com/dividendlab/cashflow-backend/internal/repository"
	"github.com/dividendlab/cashflow-backend/internal/testutil"
)

// stubPrices resolves prices from a fixed map.
type stubPrices map[string]float64

func (s stubPrices) Resolve(_ context.Context, symbol string) (float64, bool) {
	price, ok := s[symbol]
	return price, ok
}

func quarterlyPattern(avg float64, growth float64) model.DividendPattern {
	return model.DividendPattern{
		Symbol:          "AAPL",
		PaymentMonths:   []int{2, 5, 8, 11},
		Frequency:       4,
		IsQuarterly:     true,
		GrowthRate:      growth,
		RecentAvgAmount: avg,
	}
}

func jan(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// WHY: the projection math is the product's headline number; the cadence
// spread, growth compounding, and DRIP rules must hold exactly.
func TestProject(t *testing.T) {
	holdings := []model.Holding{
		{ID: "h1", Symbol: "AAPL", Shares: 100, AvgPrice: 150},
	}

	t.Run("quarterly holding pays in its payment months", func(t *testing.T) {
		result := Project(holdings,
			map[string]model.DividendPattern{"AAPL": quarterlyPattern(0.25, 0)},
			nil,
			Options{Months: 12, StartDate: jan(2025), GrowthScenario: ScenarioConservative},
		)

		if len(result.Series) != 12 {
			t.Fatalf("Expected 12 buckets, got %d", len(result.Series))
		}

		// 0.25 * 100 shares / 3 per payment month.
		wantPerPayment := 8.33
		paymentMonths := map[string]bool{"2025-02": true, "2025-05": true, "2025-08": true, "2025-11": true}

		for _, bucket := range result.Series {
			if paymentMonths[bucket.Month] {
				if math.Abs(bucket.Income-wantPerPayment) > 0.01 {
					t.Errorf("Bucket %s: expected income ~%v, got %v", bucket.Month, wantPerPayment, bucket.Income)
				}
				if !bucket.HasDividend {
					t.Errorf("Bucket %s: expected HasDividend", bucket.Month)
				}
			} else {
				if bucket.Income != 0 {
					t.Errorf("Bucket %s: expected no income, got %v", bucket.Month, bucket.Income)
				}
			}
		}

		if math.Abs(result.Total-33.33) > 0.02 {
			t.Errorf("Expected total ~33.33, got %v", result.Total)
		}
	})

	t.Run("cumulative is a running sum", func(t *testing.T) {
		result := Project(holdings,
			map[string]model.DividendPattern{"AAPL": quarterlyPattern(0.25, 0)},
			nil,
			Options{Months: 12, StartDate: jan(2025), GrowthScenario: ScenarioConservative},
		)

		running := 0.0
		for _, bucket := range result.Series {
			running += bucket.Income
			if math.Abs(bucket.Cumulative-running) > 0.02 {
				t.Errorf("Bucket %s: expected cumulative ~%v, got %v", bucket.Month, running, bucket.Cumulative)
			}
		}
	})

	t.Run("growth compounds across the horizon", func(t *testing.T) {
		flat := Project(holdings,
			map[string]model.DividendPattern{"AAPL": quarterlyPattern(0.25, 0)},
			nil,
			Options{Months: 24, StartDate: jan(2025), GrowthScenario: ScenarioConservative},
		)
		growing := Project(holdings,
			map[string]model.DividendPattern{"AAPL": quarterlyPattern(0.25, 0.10)},
			nil,
			Options{Months: 24, StartDate: jan(2025), GrowthScenario: ScenarioConservative},
		)

		if growing.Total <= flat.Total {
			t.Errorf("Expected growth to raise the total: flat %v, growing %v", flat.Total, growing.Total)
		}

		// Later payments outgrow earlier ones.
		first, last := 0.0, 0.0
		for _, bucket := range growing.Series {
			if bucket.Income > 0 {
				if first == 0 {
					first = bucket.Income
				}
				last = bucket.Income
			}
		}
		if last <= first {
			t.Errorf("Expected later payments larger under growth: first %v, last %v", first, last)
		}
	})

	t.Run("reinvestment compounds share count", func(t *testing.T) {
		without := Project(holdings,
			map[string]model.DividendPattern{"AAPL": quarterlyPattern(0.25, 0)},
			nil,
			Options{Months: 24, StartDate: jan(2025), GrowthScenario: ScenarioConservative},
		)
		with := Project(holdings,
			map[string]model.DividendPattern{"AAPL": quarterlyPattern(0.25, 0)},
			map[string]float64{"AAPL": 150},
			Options{Months: 24, StartDate: jan(2025), AssumeReinvest: true, GrowthScenario: ScenarioConservative},
		)

		if with.Total <= without.Total {
			t.Errorf("Expected DRIP to raise the total: without %v, with %v", without.Total, with.Total)
		}
	})

	t.Run("recurring deposits land in every bucket", func(t *testing.T) {
		result := Project(nil, nil, nil,
			Options{Months: 6, StartDate: jan(2025), RecurringDeposit: 100, GrowthScenario: ScenarioConservative},
		)

		for _, bucket := range result.Series {
			if bucket.Income != 100 {
				t.Errorf("Bucket %s: expected deposit 100, got %v", bucket.Month, bucket.Income)
			}
		}
		if result.Total != 600 {
			t.Errorf("Expected total 600, got %v", result.Total)
		}
	})

	t.Run("holdings without a pattern contribute nothing", func(t *testing.T) {
		result := Project(holdings, map[string]model.DividendPattern{}, nil,
			Options{Months: 12, StartDate: jan(2025), GrowthScenario: ScenarioConservative},
		)

		if result.Total != 0 {
			t.Errorf("Expected zero total without patterns, got %v", result.Total)
		}
		if len(result.Patterns) != 0 {
			t.Errorf("Expected no pattern summaries, got %d", len(result.Patterns))
		}
	})

	t.Run("income is never negative under the pessimistic scenario", func(t *testing.T) {
		result := Project(holdings,
			map[string]model.DividendPattern{"AAPL": quarterlyPattern(0.25, 0)},
			nil,
			Options{Months: 60, StartDate: jan(2025), GrowthScenario: ScenarioPessimistic},
		)

		for _, bucket := range result.Series {
			if bucket.Income < 0 {
				t.Errorf("Bucket %s: negative income %v", bucket.Month, bucket.Income)
			}
		}
	})

	t.Run("scenario totals scale the realized total", func(t *testing.T) {
		result := Project(holdings,
			map[string]model.DividendPattern{"AAPL": quarterlyPattern(0.25, 0)},
			nil,
			Options{Months: 12, StartDate: jan(2025), GrowthScenario: ScenarioConservative},
		)

		if result.Scenarios[ScenarioConservative] != result.Total {
			t.Errorf("Expected selected scenario to equal the total, got %v vs %v",
				result.Scenarios[ScenarioConservative], result.Total)
		}
		if got := result.Scenarios[ScenarioModerate]; math.Abs(got-result.Total*1.02) > 0.02 {
			t.Errorf("Expected moderate ~%v, got %v", result.Total*1.02, got)
		}
		if got := result.Scenarios[ScenarioPessimistic]; math.Abs(got-result.Total*0.95) > 0.02 {
			t.Errorf("Expected pessimistic ~%v, got %v", result.Total*0.95, got)
		}
		if len(result.Scenarios) != 4 {
			t.Errorf("Expected all four scenario totals, got %d", len(result.Scenarios))
		}
	})
}

// WHY: the end-to-end path from stored events to projection is what the API
// serves; it must stitch repository, analyzer, and engine together.
func TestForecastPortfolio(t *testing.T) {
	ctx := context.Background()

	newEngine := func(t *testing.T) (*Engine, string) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		eventRepo := repository.NewDividendEventRepository(db)
		holdingRepo := repository.NewHoldingRepository(db)
		engine := NewEngine(holdingRepo, pattern.NewAnalyzer(eventRepo), stubPrices{})

		portfolio := testutil.NewPortfolio().Build(t, db)
		for _, year := range []int{2024, 2025} {
			for _, month := range []time.Month{time.February, time.May, time.August, time.November} {
				testutil.NewDividendEvent("AAPL").
					WithExDate(time.Date(year, month, 10, 0, 0, 0, 0, time.UTC)).
					WithAmount(0.25).
					Build(t, db)
			}
		}
		testutil.NewHolding(portfolio.ID).WithSymbol("AAPL").WithShares(100).Build(t, db)

		return engine, portfolio.ID
	}

	t.Run("projects a quarterly payer from stored history", func(t *testing.T) {
		engine, portfolioID := newEngine(t)

		result, err := engine.ForecastPortfolio(ctx, portfolioID, Options{
			Months:         12,
			StartDate:      jan(2026),
			GrowthScenario: ScenarioConservative,
		})
		if err != nil {
			t.Fatalf("ForecastPortfolio failed: %v", err)
		}

		if result.Total <= 0 {
			t.Errorf("Expected positive projected income, got %v", result.Total)
		}
		summary, found := result.Patterns["AAPL"]
		if !found {
			t.Fatal("Expected AAPL pattern summary")
		}
		if summary.Frequency != 4 {
			t.Errorf("Expected quarterly frequency, got %d", summary.Frequency)
		}
	})

	t.Run("rejects an out-of-range horizon", func(t *testing.T) {
		engine, portfolioID := newEngine(t)

		if _, err := engine.ForecastPortfolio(ctx, portfolioID, Options{
			Months:         0,
			GrowthScenario: ScenarioConservative,
		}); err == nil {
			t.Error("Expected error for zero-month horizon")
		}
		if _, err := engine.ForecastPortfolio(ctx, portfolioID, Options{
			Months:         121,
			GrowthScenario: ScenarioConservative,
		}); err == nil {
			t.Error("Expected error for a horizon beyond 120 months")
		}
	})

	t.Run("rejects an unknown scenario", func(t *testing.T) {
		engine, portfolioID := newEngine(t)

		if _, err := engine.ForecastPortfolio(ctx, portfolioID, Options{
			Months:         12,
			GrowthScenario: "reckless",
		}); err == nil {
			t.Error("Expected error for unknown scenario")
		}
	})
}
