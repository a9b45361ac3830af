package dividend

import (
	"testing"
	"time"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WHY: the fusion engine is the trust boundary between inconsistent provider
// feeds and everything downstream; its dedup, fill-in, and distinctness rules
// decide what the system believes a dividend to be.
func TestFuse(t *testing.T) {
	t.Run("deduplicates same event across sources", func(t *testing.T) {
		polygon := []model.DividendEvent{
			{Symbol: "AAPL", ExDate: day(2025, 2, 10), PayDate: day(2025, 2, 13), Amount: 0.25, Source: "polygon"},
		}
		yahoo := []model.DividendEvent{
			{Symbol: "AAPL", ExDate: day(2025, 2, 10), Amount: 0.25, Source: "yahoo"},
		}

		fused := Fuse(polygon, yahoo)

		if len(fused) != 1 {
			t.Fatalf("Expected 1 fused event, got %d", len(fused))
		}
		if fused[0].Source != "polygon" {
			t.Errorf("Expected seed source polygon, got %s", fused[0].Source)
		}
	})

	t.Run("fills missing dates from lower priority source", func(t *testing.T) {
		polygon := []model.DividendEvent{
			{Symbol: "MSFT", ExDate: day(2025, 5, 15), Amount: 0.83, Source: "polygon"},
		}
		yahoo := []model.DividendEvent{
			{Symbol: "MSFT", ExDate: day(2025, 5, 15), PayDate: day(2025, 6, 12), RecordDate: day(2025, 5, 16), Amount: 0.83, Source: "yahoo"},
		}

		fused := Fuse(polygon, yahoo)

		if len(fused) != 1 {
			t.Fatalf("Expected 1 fused event, got %d", len(fused))
		}
		if !fused[0].PayDate.Equal(day(2025, 6, 12)) {
			t.Errorf("Expected pay date filled from yahoo, got %v", fused[0].PayDate)
		}
		if !fused[0].RecordDate.Equal(day(2025, 5, 16)) {
			t.Errorf("Expected record date filled from yahoo, got %v", fused[0].RecordDate)
		}
	})

	t.Run("never overwrites dates the seed already has", func(t *testing.T) {
		polygon := []model.DividendEvent{
			{Symbol: "KO", ExDate: day(2025, 3, 14), PayDate: day(2025, 4, 1), Amount: 0.485, Source: "polygon"},
		}
		yahoo := []model.DividendEvent{
			{Symbol: "KO", ExDate: day(2025, 3, 14), PayDate: day(2025, 4, 2), Amount: 0.485, Source: "yahoo"},
		}

		fused := Fuse(polygon, yahoo)

		if !fused[0].PayDate.Equal(day(2025, 4, 1)) {
			t.Errorf("Expected seed pay date preserved, got %v", fused[0].PayDate)
		}
	})

	t.Run("replaces zero seed amount with positive one", func(t *testing.T) {
		first := []model.DividendEvent{
			{Symbol: "T", ExDate: day(2025, 1, 9), Amount: 0, Source: "polygon"},
		}
		second := []model.DividendEvent{
			{Symbol: "T", ExDate: day(2025, 1, 9), Amount: 0.2775, Source: "yahoo"},
		}

		fused := Fuse(first, second)

		if len(fused) != 1 {
			t.Fatalf("Expected 1 fused event, got %d", len(fused))
		}
		if fused[0].Amount != 0.2775 {
			t.Errorf("Expected amount upgraded to 0.2775, got %v", fused[0].Amount)
		}
	})

	t.Run("keeps meaningfully different amounts distinct", func(t *testing.T) {
		polygon := []model.DividendEvent{
			{Symbol: "IBM", ExDate: day(2025, 2, 10), Amount: 1.67, Source: "polygon"},
		}
		yahoo := []model.DividendEvent{
			{Symbol: "IBM", ExDate: day(2025, 2, 10), Amount: 1.75, Source: "yahoo"},
		}

		fused := Fuse(polygon, yahoo)

		if len(fused) != 2 {
			t.Fatalf("Expected correction kept distinct, got %d events", len(fused))
		}
	})

	t.Run("retains events without ex date", func(t *testing.T) {
		yahoo := []model.DividendEvent{
			{Symbol: "VZ", PayDate: day(2025, 8, 1), Amount: 0.6775, Source: "yahoo"},
		}

		fused := Fuse(yahoo)

		if len(fused) != 1 {
			t.Fatalf("Expected pay-date-only event retained, got %d", len(fused))
		}
	})

	t.Run("normalizes symbol casing across sources", func(t *testing.T) {
		fused := Fuse(
			[]model.DividendEvent{{Symbol: "aapl", ExDate: day(2025, 2, 10), Amount: 0.25}},
			[]model.DividendEvent{{Symbol: "AAPL", ExDate: day(2025, 2, 10), Amount: 0.25}},
		)

		if len(fused) != 1 {
			t.Fatalf("Expected case-insensitive grouping, got %d events", len(fused))
		}
		if fused[0].Symbol != "AAPL" {
			t.Errorf("Expected uppercase symbol, got %s", fused[0].Symbol)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		lists := [][]model.DividendEvent{
			{
				{Symbol: "AAPL", ExDate: day(2025, 2, 10), Amount: 0.25, Source: "polygon"},
				{Symbol: "AAPL", ExDate: day(2025, 5, 12), Amount: 0.25, Source: "polygon"},
			},
			{
				{Symbol: "AAPL", ExDate: day(2025, 2, 10), PayDate: day(2025, 2, 13), Amount: 0.25, Source: "yahoo"},
			},
		}

		once := Fuse(lists...)
		twice := Fuse(once)

		if len(once) != len(twice) {
			t.Fatalf("Expected identical size after refusing, got %d then %d", len(once), len(twice))
		}
		for i := range once {
			if once[i] != twice[i] {
				t.Errorf("Event %d changed across fusions: %+v vs %+v", i, once[i], twice[i])
			}
		}
	})

	t.Run("empty inputs yield empty output", func(t *testing.T) {
		fused := Fuse([]model.DividendEvent{}, nil)

		if len(fused) != 0 {
			t.Errorf("Expected empty result, got %d events", len(fused))
		}
	})
}
