// Package dividend implements the dividend reconciliation core: fusing event
// records from multiple unreliable sources into one canonical per-symbol
// timeline, idempotently persisting that timeline, and deriving the income
// calendar from it.
package dividend

import (
	"math"
	"strings"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// amountEpsilon bounds float comparison when deciding whether two records
// describe the same payment or a distinct correction.
const amountEpsilon = 1e-9

// Fuse merges normalized event lists from multiple providers into a single
// deduplicated list. Lists must be supplied in priority order, most trusted
// source first.
//
// Candidates are grouped by (symbol, ex-date). The first record seen for a
// group seeds it; every later record either fills the seed's missing pay and
// record dates, replaces a zero seed amount with its positive one, or - when
// its amount differs meaningfully from every variant already in the group -
// stays a distinct output record (corrections are separate events, not
// merge candidates).
//
// Records without an ex-date are retained as long as they carry an amount;
// pay-date-only records are still forecastable. Output order is unspecified
// and callers must not depend on it. Fusing the same inputs twice yields an
// identical output set.
func Fuse(lists ...[]model.DividendEvent) []model.DividendEvent {
	type groupKey struct {
		symbol string
		exDate string
	}

	variants := make(map[groupKey][]model.DividendEvent)
	order := make([]groupKey, 0)

	for _, list := range lists {
		for _, event := range list {
			event.Symbol = strings.ToUpper(event.Symbol)

			key := groupKey{symbol: event.Symbol, exDate: dayKey(event)}

			group, seen := variants[key]
			if !seen {
				variants[key] = []model.DividendEvent{event}
				order = append(order, key)
				continue
			}

			if merged := mergeIntoGroup(group, event); merged != nil {
				variants[key] = merged
			} else {
				variants[key] = append(group, event)
			}
		}
	}

	out := make([]model.DividendEvent, 0, len(order))
	for _, key := range order {
		out = append(out, variants[key]...)
	}

	return out
}

// mergeIntoGroup attempts to fold event into one of the group's existing
// variants. It returns the updated group on success and nil when the event
// is a distinct record that must stay separate.
func mergeIntoGroup(group []model.DividendEvent, event model.DividendEvent) []model.DividendEvent {
	// Same amount (or incoming zero): fill gaps on the matching variant.
	for i := range group {
		if sameAmount(group[i].Amount, event.Amount) || event.Amount <= 0 {
			fillDates(&group[i], event)
			return group
		}
	}

	// A positive incoming amount upgrades a zero-amount variant in place.
	for i := range group {
		if group[i].Amount <= 0 {
			group[i].Amount = event.Amount
			fillDates(&group[i], event)
			return group
		}
	}

	return nil
}

// fillDates copies non-null pay and record dates from src onto dst without
// overwriting anything dst already has. Amount, ex-date and source are never
// touched: the seed's provenance wins.
func fillDates(dst *model.DividendEvent, src model.DividendEvent) {
	if dst.PayDate.IsZero() && !src.PayDate.IsZero() {
		dst.PayDate = src.PayDate
	}
	if dst.RecordDate.IsZero() && !src.RecordDate.IsZero() {
		dst.RecordDate = src.RecordDate
	}
}

// sameAmount reports whether two amounts describe the same payment.
func sameAmount(a, b float64) bool {
	return math.Abs(a-b) < amountEpsilon
}

// dayKey renders an event's ex-date as a grouping key; absent ex-dates group
// under the empty key and are kept distinct by amount.
func dayKey(event model.DividendEvent) string {
	if event.ExDate.IsZero() {
		return ""
	}
	return event.ExDate.UTC().Format("2006-01-02")
}
