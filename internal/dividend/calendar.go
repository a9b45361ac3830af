package dividend

import (
	"context"
	"fmt"
	"time"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// BuildCalendar produces the dated income ledger for a portfolio by joining
// its open holdings against the persisted event timeline.
//
// Entries are included regardless of whether the ex-date precedes the
// holding's purchase date: the calendar surfaces the full available history
// and future schedule rather than filtering by ownership window. An owner
// with no holdings gets an empty calendar, which is a valid state and not an
// error.
func (s *Service) BuildCalendar(ctx context.Context, portfolioID string) ([]model.IncomeCalendarEntry, error) {
	return s.buildCalendar(ctx, portfolioID, time.Now().UTC())
}

// buildCalendar is the testable core of BuildCalendar with an explicit
// "today" for status derivation.
func (s *Service) buildCalendar(ctx context.Context, portfolioID string, today time.Time) ([]model.IncomeCalendarEntry, error) {
	holdings, err := s.holdingRepo.ListOpenByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	entries := []model.IncomeCalendarEntry{}
	eventsBySymbol := make(map[string][]model.DividendEvent)

	for _, holding := range holdings {
		events, cached := eventsBySymbol[holding.Symbol]
		if !cached {
			events, err = s.eventRepo.ListEventsForSymbol(ctx, holding.Symbol)
			if err != nil {
				return nil, fmt.Errorf("failed to load events for %s: %w", holding.Symbol, err)
			}
			eventsBySymbol[holding.Symbol] = events
		}

		for _, event := range events {
			// Events lacking both dates or a positive amount cannot be
			// scheduled.
			if !event.HasUsableDate() || event.Amount <= 0 {
				continue
			}

			entries = append(entries, model.IncomeCalendarEntry{
				PortfolioID: holding.PortfolioID,
				Symbol:      event.Symbol,
				ExDate:      event.ExDate,
				PayDate:     event.PayDate,
				Amount:      event.Amount,
				Shares:      holding.Shares,
				Cash:        event.Amount * holding.Shares,
				Status:      entryStatus(event, today),
			})
		}
	}

	return entries, nil
}

// entryStatus derives the paid/upcoming status of a calendar entry: paid when
// the pay date has passed, or - for events without a pay date - when the
// ex-date has passed; upcoming otherwise.
func entryStatus(event model.DividendEvent, today time.Time) string {
	if !event.PayDate.IsZero() && !event.PayDate.After(today) {
		return model.StatusPaid
	}
	if event.PayDate.IsZero() && !event.ExDate.IsZero() && !event.ExDate.After(today) {
		return model.StatusPaid
	}
	return model.StatusUpcoming
}
