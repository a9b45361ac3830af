// Package price resolves latest quotes for symbols from an ordered chain of
// external sources, with a short-lived in-process cache to soften free-plan
// rate limits. A symbol whose price cannot be resolved is reported absent;
// callers fall back to cost basis, never to zero.
package price

import (
	"context"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// Quoter is one external quote source.
type Quoter interface {
	Name() string
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}

// quote is the cached resolution result. Absence is cached too, so a symbol
// with no quote does not hammer every source on every request.
type quote struct {
	Price float64
	Found bool
}

// Resolver resolves latest prices through an ordered source chain.
type Resolver struct {
	sources      []Quoter
	cache        *gocache.Cache
	fetchTimeout time.Duration
	batchTimeout time.Duration
}

// NewResolver creates a price resolver. Sources are tried in order; the first
// positive price wins. Quotes are cached for ttl.
func NewResolver(sources []Quoter, ttl, fetchTimeout, batchTimeout time.Duration) *Resolver {
	return &Resolver{
		sources:      sources,
		cache:        gocache.New(ttl, 2*ttl),
		fetchTimeout: fetchTimeout,
		batchTimeout: batchTimeout,
	}
}

// Resolve returns the latest price for a symbol and whether one was found.
// Each source gets a bounded per-fetch timeout; a slow or failing source
// never blocks the rest of the chain beyond that budget.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (float64, bool) {
	if cached, hit := r.cache.Get(symbol); hit {
		q := cached.(quote)
		return q.Price, q.Found
	}

	for _, source := range r.sources {
		fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
		value, err := source.LatestPrice(fetchCtx, symbol)
		cancel()

		if err != nil {
			log.Printf("price: %s failed for %s: %v", source.Name(), symbol, err)
			continue
		}
		if value > 0 {
			r.cache.Set(symbol, quote{Price: value, Found: true}, gocache.DefaultExpiration)
			return value, true
		}
	}

	r.cache.Set(symbol, quote{}, gocache.DefaultExpiration)
	return 0, false
}

// BatchResolve resolves prices for many symbols concurrently under one
// overall deadline. Symbols whose resolution exceeds the deadline are
// recorded absent rather than extending the batch's total latency; the
// returned map contains entries only for resolved symbols.
func (r *Resolver) BatchResolve(ctx context.Context, symbols []string) map[string]float64 {
	batchCtx, cancel := context.WithTimeout(ctx, r.batchTimeout)
	defer cancel()

	results := make([]quote, len(symbols))

	g, groupCtx := errgroup.WithContext(batchCtx)
	g.SetLimit(8)

	for i, symbol := range symbols {
		g.Go(func() error {
			value, found := r.Resolve(groupCtx, symbol)
			results[i] = quote{Price: value, Found: found}
			return nil
		})
	}

	// Workers only record results, they never return errors.
	_ = g.Wait()

	out := make(map[string]float64, len(symbols))
	for i, symbol := range symbols {
		if results[i].Found {
			out[symbol] = results[i].Price
		}
	}

	return out
}
