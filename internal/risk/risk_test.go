package risk

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/dividendlab/cashflow-backend/internal/apperrors"
	"github.com/dividendlab/cashflow-backend/internal/model"
	"github.com/dividendlab/cashflow-backend/internal/repository"
	"github.com/dividendlab/cashflow-backend/internal/testutil"
)

// stubBatch resolves prices from a fixed map.
type stubBatch map[string]float64

func (s stubBatch) BatchResolve(_ context.Context, symbols []string) map[string]float64 {
	out := make(map[string]float64)
	for _, sym := range symbols {
		if price, ok := s[sym]; ok {
			out[sym] = price
		}
	}
	return out
}

func eventsWithAmounts(amounts ...float64) []model.DividendEvent {
	events := make([]model.DividendEvent, len(amounts))
	for i, amount := range amounts {
		events[i] = model.DividendEvent{Symbol: "AAPL", Amount: amount}
	}
	return events
}

func repeat(amount float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amount
	}
	return out
}

// WHY: the sustainability score drives user-facing risk labels; the base
// score, volatility deduction, and trend adjustment must follow the
// documented point rules.
func TestSustainabilityScore(t *testing.T) {
	t.Run("no history is unknown, not zero risk", func(t *testing.T) {
		risk := SustainabilityScore(nil)

		if risk.RiskLevel != model.RiskUnknown {
			t.Errorf("Expected level %q, got %q", model.RiskUnknown, risk.RiskLevel)
		}
	})

	t.Run("perfectly stable amounts score the base 50", func(t *testing.T) {
		risk := SustainabilityScore(eventsWithAmounts(repeat(0.25, 12)...))

		if risk.SustainabilityScore != 50 {
			t.Errorf("Expected score 50, got %v", risk.SustainabilityScore)
		}
		if risk.RiskLevel != model.RiskMedium {
			t.Errorf("Expected level %q, got %q", model.RiskMedium, risk.RiskLevel)
		}
		if risk.Volatility != 0 {
			t.Errorf("Expected zero volatility, got %v", risk.Volatility)
		}
	})

	t.Run("a growth trend raises the score", func(t *testing.T) {
		amounts := append(repeat(0.20, 6), repeat(0.30, 6)...)
		risk := SustainabilityScore(eventsWithAmounts(amounts...))

		if risk.SustainabilityScore <= 50 {
			t.Errorf("Expected score above 50 for a growing payer, got %v", risk.SustainabilityScore)
		}
		if risk.GrowthTrend <= 0 {
			t.Errorf("Expected positive trend, got %v", risk.GrowthTrend)
		}
	})

	t.Run("a cut trend lowers the score", func(t *testing.T) {
		amounts := append(repeat(0.30, 6), repeat(0.20, 6)...)
		risk := SustainabilityScore(eventsWithAmounts(amounts...))

		if risk.SustainabilityScore >= 50 {
			t.Errorf("Expected score below 50 after a cut, got %v", risk.SustainabilityScore)
		}
	})

	t.Run("erratic amounts deduct volatility points", func(t *testing.T) {
		stable := SustainabilityScore(eventsWithAmounts(repeat(0.30, 12)...))
		erratic := SustainabilityScore(eventsWithAmounts(0.10, 0.50, 0.10, 0.50, 0.10, 0.50, 0.10, 0.50, 0.10, 0.50, 0.10, 0.50))

		if erratic.SustainabilityScore >= stable.SustainabilityScore {
			t.Errorf("Expected erratic payer to score below stable one: %v vs %v",
				erratic.SustainabilityScore, stable.SustainabilityScore)
		}
	})

	t.Run("recent amounts are capped at five", func(t *testing.T) {
		risk := SustainabilityScore(eventsWithAmounts(repeat(0.25, 12)...))

		if len(risk.RecentAmounts) != 5 {
			t.Errorf("Expected 5 recent amounts, got %d", len(risk.RecentAmounts))
		}
	})
}

// WHY: weights feed every concentration measure downstream; pricing fallbacks
// must never zero out a holding's value.
func TestValueHoldings(t *testing.T) {
	t.Run("prefers resolved price over cost basis", func(t *testing.T) {
		details, total := valueHoldings(
			[]model.Holding{{Symbol: "AAPL", Shares: 10, AvgPrice: 150}},
			map[string]float64{"AAPL": 200},
		)

		if details[0].Price != 200 {
			t.Errorf("Expected resolved price 200, got %v", details[0].Price)
		}
		if total != 2000 {
			t.Errorf("Expected total 2000, got %v", total)
		}
	})

	t.Run("falls back to cost basis, then the assumed price", func(t *testing.T) {
		details, _ := valueHoldings(
			[]model.Holding{
				{Symbol: "MMM", Shares: 10, AvgPrice: 90},
				{Symbol: "XYZ", Shares: 10},
			},
			nil,
		)

		if details[0].Price != 90 {
			t.Errorf("Expected cost basis 90, got %v", details[0].Price)
		}
		if details[1].Price != fallbackPrice {
			t.Errorf("Expected fallback price %v, got %v", fallbackPrice, details[1].Price)
		}
	})

	t.Run("weights sum to one", func(t *testing.T) {
		details, _ := valueHoldings(
			[]model.Holding{
				{Symbol: "AAPL", Shares: 10, AvgPrice: 100},
				{Symbol: "MSFT", Shares: 30, AvgPrice: 100},
			},
			nil,
		)

		sum := 0.0
		for _, d := range details {
			sum += d.Weight
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("Expected weights summing to 1, got %v", sum)
		}
	})
}

func TestConcentrationRisk(t *testing.T) {
	t.Run("two equal holdings halve the index", func(t *testing.T) {
		c := concentrationRisk([]model.RiskHoldingDetail{
			{Symbol: "AAPL", Weight: 0.5},
			{Symbol: "MSFT", Weight: 0.5},
		})

		if math.Abs(c.HerfindahlIndex-0.5) > 1e-9 {
			t.Errorf("Expected HHI 0.5, got %v", c.HerfindahlIndex)
		}
		if c.MaxWeight != 0.5 {
			t.Errorf("Expected max weight 0.5, got %v", c.MaxWeight)
		}
		if math.Abs(c.Top5Weight-1.0) > 1e-9 {
			t.Errorf("Expected top-5 weight 1.0, got %v", c.Top5Weight)
		}
	})

	t.Run("a single holding maxes every measure", func(t *testing.T) {
		c := concentrationRisk([]model.RiskHoldingDetail{{Symbol: "AAPL", Weight: 1}})

		if c.HerfindahlIndex != 1 || c.MaxWeight != 1 {
			t.Errorf("Expected HHI and max weight of 1, got %v and %v", c.HerfindahlIndex, c.MaxWeight)
		}
	})

	t.Run("top holdings are capped at ten, heaviest first", func(t *testing.T) {
		details := make([]model.RiskHoldingDetail, 12)
		for i := range details {
			details[i] = model.RiskHoldingDetail{
				Symbol: string(rune('A' + i)),
				Weight: float64(i+1) / 78,
			}
		}

		c := concentrationRisk(details)

		if len(c.TopHoldings) != 10 {
			t.Fatalf("Expected 10 top holdings, got %d", len(c.TopHoldings))
		}
		if c.TopHoldings[0].Weight < c.TopHoldings[9].Weight {
			t.Error("Expected top holdings ordered by descending weight")
		}
	})
}

func TestRiskLevel(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{85, model.RiskLow},
		{70, model.RiskLow},
		{50, model.RiskMedium},
		{30, model.RiskHigh},
		{10, model.RiskVeryHigh},
	}

	for _, tc := range cases {
		if got := riskLevel(tc.score); got != tc.want {
			t.Errorf("riskLevel(%v): expected %q, got %q", tc.score, tc.want, got)
		}
	}
}

// WHY: the composite deductions are fixed threshold rules; each tier boundary
// must deduct exactly its documented points.
func TestCompositeScore(t *testing.T) {
	neutralDividends := map[string]model.DividendRisk{
		"AAPL": {SustainabilityScore: 50},
	}

	t.Run("calm portfolio only pays the low-earnings deduction", func(t *testing.T) {
		score := compositeScore(0.01, model.ConcentrationRisk{MaxWeight: 0.2}, neutralDividends, 30)

		if score != 47 {
			t.Errorf("Expected score 47, got %v", score)
		}
	})

	t.Run("high volatility deducts twenty points", func(t *testing.T) {
		calm := compositeScore(0.01, model.ConcentrationRisk{MaxWeight: 0.2}, neutralDividends, 30)
		rough := compositeScore(0.035, model.ConcentrationRisk{MaxWeight: 0.2}, neutralDividends, 30)

		if calm-rough != 20 {
			t.Errorf("Expected a 20 point volatility deduction, got %v", calm-rough)
		}
	})

	t.Run("concentration above half deducts fifteen points", func(t *testing.T) {
		spread := compositeScore(0.01, model.ConcentrationRisk{MaxWeight: 0.2}, neutralDividends, 30)
		heavy := compositeScore(0.01, model.ConcentrationRisk{MaxWeight: 0.6}, neutralDividends, 30)

		if spread-heavy != 15 {
			t.Errorf("Expected a 15 point concentration deduction, got %v", spread-heavy)
		}
	})

	t.Run("strong dividend sustainability adds points", func(t *testing.T) {
		strong := map[string]model.DividendRisk{"AAPL": {SustainabilityScore: 75}}
		score := compositeScore(0.01, model.ConcentrationRisk{MaxWeight: 0.2}, strong, 30)

		if score != 52 {
			t.Errorf("Expected score 52, got %v", score)
		}
	})

	t.Run("score is clamped to the 0-100 range", func(t *testing.T) {
		weak := map[string]model.DividendRisk{"AAPL": {SustainabilityScore: 0}}
		score := compositeScore(0.05, model.ConcentrationRisk{MaxWeight: 0.9}, weak, 90)

		if score < 0 {
			t.Errorf("Expected non-negative score, got %v", score)
		}
	})
}

func TestRecommendations(t *testing.T) {
	t.Run("heavy single position triggers diversification advice", func(t *testing.T) {
		recs := recommendations(0.02, model.ConcentrationRisk{MaxWeight: 0.5, NumHoldings: 8}, nil, nil, 50)

		if !slices.Contains(recs, "High concentration risk - consider diversifying holdings") {
			t.Errorf("Expected concentration advice, got %v", recs)
		}
	})

	t.Run("small calm portfolio gets growth and breadth advice", func(t *testing.T) {
		recs := recommendations(0.005, model.ConcentrationRisk{MaxWeight: 0.3, NumHoldings: 3}, nil, nil, 50)

		if !slices.Contains(recs, "Portfolio is very stable - consider adding growth opportunities") {
			t.Errorf("Expected stability advice, got %v", recs)
		}
		if !slices.Contains(recs, "Low diversification - consider adding more holdings") {
			t.Errorf("Expected breadth advice, got %v", recs)
		}
	})

	t.Run("flagged dividend payers are listed sorted", func(t *testing.T) {
		risks := map[string]model.DividendRisk{
			"MMM":  {RiskLevel: model.RiskHigh},
			"AAPL": {RiskLevel: model.RiskVeryHigh},
			"MSFT": {RiskLevel: model.RiskLow},
		}
		recs := recommendations(0.02, model.ConcentrationRisk{MaxWeight: 0.3, NumHoldings: 8}, risks, nil, 50)

		if !slices.Contains(recs, "Monitor dividend sustainability for: AAPL, MMM") {
			t.Errorf("Expected sorted dividend watch list, got %v", recs)
		}
	})
}

// WHY: the report endpoint stitches pricing, stored dividend history, and the
// synthetic return series together; the integration path must hold.
func TestGenerateRiskReport(t *testing.T) {
	ctx := context.Background()

	newTestAnalyzer := func(t *testing.T, prices stubBatch) (*Analyzer, string) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		analyzer := NewAnalyzer(
			repository.NewHoldingRepository(db),
			repository.NewDividendEventRepository(db),
			prices,
			nil,
		)
		analyzer.newRand = func() *rand.Rand { return rand.New(rand.NewSource(42)) }

		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("AAPL").WithShares(100).Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("MSFT").WithShares(50).Build(t, db)

		for i := 0; i < 8; i++ {
			testutil.NewDividendEvent("AAPL").
				WithExDate(time.Date(2024, time.Month(i+1), 10, 0, 0, 0, 0, time.UTC)).
				WithAmount(0.25).
				Build(t, db)
		}

		return analyzer, portfolio.ID
	}

	t.Run("empty portfolio is a distinct error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		analyzer := NewAnalyzer(
			repository.NewHoldingRepository(db),
			repository.NewDividendEventRepository(db),
			stubBatch{},
			nil,
		)
		portfolio := testutil.NewPortfolio().Build(t, db)

		_, err := analyzer.GenerateRiskReport(ctx, portfolio.ID)
		if !errors.Is(err, apperrors.ErrNoHoldings) {
			t.Errorf("Expected ErrNoHoldings, got %v", err)
		}
	})

	t.Run("values holdings and computes concentration", func(t *testing.T) {
		analyzer, portfolioID := newTestAnalyzer(t, stubBatch{"AAPL": 200, "MSFT": 400})

		report, err := analyzer.GenerateRiskReport(ctx, portfolioID)
		if err != nil {
			t.Fatalf("GenerateRiskReport failed: %v", err)
		}

		if report.PortfolioValue != 40000 {
			t.Errorf("Expected portfolio value 40000, got %v", report.PortfolioValue)
		}
		if report.NumHoldings != 2 {
			t.Errorf("Expected 2 holdings, got %d", report.NumHoldings)
		}
		if math.Abs(report.Concentration.HerfindahlIndex-0.5) > 1e-9 {
			t.Errorf("Expected HHI 0.5 for equal weights, got %v", report.Concentration.HerfindahlIndex)
		}
	})

	t.Run("scores dividend history where it exists", func(t *testing.T) {
		analyzer, portfolioID := newTestAnalyzer(t, stubBatch{"AAPL": 200, "MSFT": 400})

		report, err := analyzer.GenerateRiskReport(ctx, portfolioID)
		if err != nil {
			t.Fatalf("GenerateRiskReport failed: %v", err)
		}

		if report.DividendRisks["AAPL"].RiskLevel == model.RiskUnknown {
			t.Error("Expected a scored dividend risk for AAPL")
		}
		if report.DividendRisks["MSFT"].RiskLevel != model.RiskUnknown {
			t.Errorf("Expected unknown dividend risk for MSFT, got %q", report.DividendRisks["MSFT"].RiskLevel)
		}
	})

	t.Run("earnings risk degrades without a fundamentals source", func(t *testing.T) {
		analyzer, portfolioID := newTestAnalyzer(t, stubBatch{"AAPL": 200, "MSFT": 400})

		report, err := analyzer.GenerateRiskReport(ctx, portfolioID)
		if err != nil {
			t.Fatalf("GenerateRiskReport failed: %v", err)
		}

		for sym, earnings := range report.EarningsRisks {
			if earnings.DataAvailable {
				t.Errorf("Symbol %s: expected no earnings data without a source", sym)
			}
		}
	})

	t.Run("report score and level stay in range", func(t *testing.T) {
		analyzer, portfolioID := newTestAnalyzer(t, stubBatch{"AAPL": 200, "MSFT": 400})

		report, err := analyzer.GenerateRiskReport(ctx, portfolioID)
		if err != nil {
			t.Fatalf("GenerateRiskReport failed: %v", err)
		}

		if report.RiskScore < 0 || report.RiskScore > 100 {
			t.Errorf("Expected score in [0,100], got %v", report.RiskScore)
		}
		if report.OverallRiskLevel == "" {
			t.Error("Expected a risk level label")
		}
		if math.Abs(report.Beta-1.0) > 1e-9 {
			t.Errorf("Expected self-referential beta of 1, got %v", report.Beta)
		}
	})
}
