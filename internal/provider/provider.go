// Package provider implements the external dividend data sources and the
// normalization of their native payloads into canonical dividend events.
//
// Every source tolerates sparse data: missing pay or record dates normalize
// to zero times, malformed dates fail soft to zero times, and non-numeric or
// negative amounts coerce to zero so downstream consumers can exclude them.
// A parse failure on one record never aborts the remaining records in the
// same payload.
package provider

import (
	"context"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// Source is one external dividend data provider. FetchDividends returns the
// normalized events for a symbol; transient upstream failures surface as an
// error which the caller treats as an empty contribution, never as a fatal
// condition.
type Source interface {
	Name() string
	FetchDividends(ctx context.Context, symbol string) ([]model.DividendEvent, error)
}

// OrderByPriority returns sources sorted by the configured priority list,
// most trusted first. Sources absent from the priority list keep their
// relative order after the prioritized ones; priority names without a
// matching source are ignored.
func OrderByPriority(sources []Source, priority []string) []Source {
	ordered := make([]Source, 0, len(sources))
	used := make(map[string]bool, len(sources))

	for _, name := range priority {
		for _, s := range sources {
			if s.Name() == name && !used[name] {
				ordered = append(ordered, s)
				used[name] = true
			}
		}
	}
	for _, s := range sources {
		if !used[s.Name()] {
			ordered = append(ordered, s)
			used[s.Name()] = true
		}
	}

	return ordered
}
