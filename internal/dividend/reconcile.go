package dividend

import (
	"context"
	"fmt"
	"strings"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// Reconcile idempotently applies a fused event list against persisted
// storage and returns the number of newly inserted rows.
//
// For each event the stored record is looked up by (symbol, ex_date, amount):
//   - found: missing pay_date/record_date are filled from the incoming event;
//     amount and source are never touched retroactively; not counted as an
//     insertion.
//   - not found: inserted as a new record and counted.
//
// The call is safe to repeat with overlapping inputs (at-least-once delivery
// from upstream polling) without creating duplicate rows, and data
// completeness never decreases: a date once filled is never nulled out by a
// later call.
func (s *Service) Reconcile(ctx context.Context, events []model.DividendEvent) (int, error) {
	inserted := 0

	for _, event := range events {
		event.Symbol = strings.ToUpper(event.Symbol)

		wasInserted, err := s.reconcileOne(ctx, event)
		if err != nil {
			return inserted, fmt.Errorf("failed to reconcile %s: %w", event.Symbol, err)
		}
		if wasInserted {
			inserted++
		}
	}

	return inserted, nil
}

// reconcileOne applies a single event under the symbol's reconciliation lock.
func (s *Service) reconcileOne(ctx context.Context, event model.DividendEvent) (bool, error) {
	unlock := s.lockSymbol(event.Symbol)
	defer unlock()

	existing, err := s.eventRepo.FindEvent(ctx, event.Symbol, event.ExDate, event.Amount)
	if err != nil {
		return false, err
	}

	if existing != nil {
		needsPayDate := existing.PayDate.IsZero() && !event.PayDate.IsZero()
		needsRecordDate := existing.RecordDate.IsZero() && !event.RecordDate.IsZero()

		if needsPayDate || needsRecordDate {
			if err := s.eventRepo.UpdateEventDates(ctx, existing.ID, event.PayDate, event.RecordDate); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	if _, err := s.eventRepo.InsertEvent(ctx, event); err != nil {
		return false, err
	}
	return true, nil
}
