package dividend

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// FetchDividends fans out to every configured provider for one symbol and
// fuses the responses into a single deduplicated event list.
//
// Sources run concurrently, each under its own bounded timeout; a slow or
// failing source never blocks the others. A source that errors or times out
// contributes an empty list, and when every source comes back empty the
// result is a valid empty list, not an error, so downstream calendar and
// forecast views degrade to "no data" instead of failing.
func (s *Service) FetchDividends(ctx context.Context, symbol string) ([]model.DividendEvent, error) {
	lists := make([][]model.DividendEvent, len(s.sources))

	g, groupCtx := errgroup.WithContext(ctx)

	for i, source := range s.sources {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(groupCtx, s.fetchTimeout)
			defer cancel()

			events, err := source.FetchDividends(fetchCtx, symbol)
			if err != nil {
				log.Printf("dividend: %s failed for %s: %v", source.Name(), symbol, err)
				lists[i] = []model.DividendEvent{}
				return nil
			}
			lists[i] = events
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Fuse(lists...), nil
}

// RefreshSymbol fetches, fuses and reconciles dividends for one symbol and
// returns the number of newly stored events.
func (s *Service) RefreshSymbol(ctx context.Context, symbol string) (int, error) {
	events, err := s.FetchDividends(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return s.Reconcile(ctx, events)
}

// RefreshAllDividends refreshes every distinct owned symbol (shares > 0) and
// returns the number of symbols for which new events were stored.
//
// The operation is idempotent: invoking it N times with no new provider data
// leaves the stored state identical to a single invocation, which makes it
// safe for periodic scheduling with at-least-once semantics.
func (s *Service) RefreshAllDividends(ctx context.Context) (int, error) {
	symbols, err := s.holdingRepo.ListOwnedSymbols(ctx)
	if err != nil {
		return 0, err
	}

	symbolsUpdated := 0

	for _, symbol := range symbols {
		inserted, err := s.RefreshSymbol(ctx, symbol)
		if err != nil {
			// One symbol's failure must not abort the sweep.
			log.Printf("dividend: refresh failed for %s: %v", symbol, err)
			continue
		}
		if inserted > 0 {
			symbolsUpdated++
		}
	}

	return symbolsUpdated, nil
}
