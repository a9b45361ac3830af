package dividend

import (
	"context"
	"testing"

	"github.com/dividendlab/cashflow-backend/internal/model"
	"github.com/dividendlab/cashflow-backend/internal/testutil"
)

// WHY: the calendar is the user-facing join of holdings and events; its
// status rule and skip conditions decide what income a user believes they
// received or will receive.
func TestBuildCalendar(t *testing.T) {
	ctx := context.Background()
	today := day(2025, 6, 1)

	t.Run("joins holdings with events and computes cash", func(t *testing.T) {
		svc, _, db := newTestService(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("AAPL").WithShares(100).Build(t, db)
		testutil.NewDividendEvent("AAPL").
			WithExDate(day(2025, 2, 10)).
			WithPayDate(day(2025, 2, 13)).
			WithAmount(0.25).
			Build(t, db)

		entries, err := svc.buildCalendar(ctx, portfolio.ID, today)
		if err != nil {
			t.Fatalf("buildCalendar failed: %v", err)
		}

		if len(entries) != 1 {
			t.Fatalf("Expected 1 entry, got %d", len(entries))
		}
		if entries[0].Cash != 25.0 {
			t.Errorf("Expected cash 25.0, got %v", entries[0].Cash)
		}
		if entries[0].Status != model.StatusPaid {
			t.Errorf("Expected status paid, got %s", entries[0].Status)
		}
	})

	t.Run("future pay date is upcoming", func(t *testing.T) {
		svc, _, db := newTestService(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("MSFT").Build(t, db)
		testutil.NewDividendEvent("MSFT").
			WithExDate(day(2025, 5, 15)).
			WithPayDate(day(2025, 6, 12)).
			WithAmount(0.83).
			Build(t, db)

		entries, err := svc.buildCalendar(ctx, portfolio.ID, today)
		if err != nil {
			t.Fatalf("buildCalendar failed: %v", err)
		}

		if entries[0].Status != model.StatusUpcoming {
			t.Errorf("Expected upcoming despite past ex date, got %s", entries[0].Status)
		}
	})

	t.Run("past ex date without pay date is paid", func(t *testing.T) {
		svc, _, db := newTestService(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("KO").Build(t, db)
		testutil.NewDividendEvent("KO").
			WithExDate(day(2025, 3, 14)).
			WithAmount(0.485).
			Build(t, db)

		entries, err := svc.buildCalendar(ctx, portfolio.ID, today)
		if err != nil {
			t.Fatalf("buildCalendar failed: %v", err)
		}

		if entries[0].Status != model.StatusPaid {
			t.Errorf("Expected paid via ex date fallback, got %s", entries[0].Status)
		}
	})

	t.Run("skips events lacking both dates or a positive amount", func(t *testing.T) {
		svc, _, db := newTestService(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("T").Build(t, db)
		testutil.NewDividendEvent("T").
			WithExDate(day(2025, 1, 9)).
			WithAmount(0).
			Build(t, db)
		testutil.NewDividendEvent("T").
			WithExDate(day(2025, 4, 9)).
			WithAmount(0.2775).
			Build(t, db)

		entries, err := svc.buildCalendar(ctx, portfolio.ID, today)
		if err != nil {
			t.Fatalf("buildCalendar failed: %v", err)
		}

		if len(entries) != 1 {
			t.Fatalf("Expected zero-amount event skipped, got %d entries", len(entries))
		}
		if entries[0].Amount != 0.2775 {
			t.Errorf("Expected the usable event, got amount %v", entries[0].Amount)
		}
	})

	t.Run("includes events before the purchase date", func(t *testing.T) {
		svc, _, db := newTestService(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		holding := testutil.NewHolding(portfolio.ID).WithSymbol("PG")
		holding.PurchaseDate = day(2025, 5, 1)
		holding.Build(t, db)
		testutil.NewDividendEvent("PG").
			WithExDate(day(2025, 1, 23)).
			WithAmount(1.0065).
			Build(t, db)

		entries, err := svc.buildCalendar(ctx, portfolio.ID, today)
		if err != nil {
			t.Fatalf("buildCalendar failed: %v", err)
		}

		if len(entries) != 1 {
			t.Errorf("Expected pre-purchase event included, got %d entries", len(entries))
		}
	})

	t.Run("empty holdings yield empty calendar", func(t *testing.T) {
		svc, _, db := newTestService(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		entries, err := svc.buildCalendar(ctx, portfolio.ID, today)
		if err != nil {
			t.Fatalf("buildCalendar failed: %v", err)
		}

		if entries == nil {
			t.Error("Expected empty slice, got nil")
		}
		if len(entries) != 0 {
			t.Errorf("Expected 0 entries, got %d", len(entries))
		}
	})

	t.Run("closed holdings are excluded", func(t *testing.T) {
		svc, _, db := newTestService(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("AAPL").WithShares(0).Build(t, db)
		testutil.NewDividendEvent("AAPL").
			WithExDate(day(2025, 2, 10)).
			WithAmount(0.25).
			Build(t, db)

		entries, err := svc.buildCalendar(ctx, portfolio.ID, today)
		if err != nil {
			t.Fatalf("buildCalendar failed: %v", err)
		}

		if len(entries) != 0 {
			t.Errorf("Expected closed holding excluded, got %d entries", len(entries))
		}
	})
}
